// Package pkg provides the core libraries for the Pegboard grid-placement engine.
//
// # Overview
//
// Pegboard places rectangular, movable tiles on an integer grid - the core of
// dashboard-style editors. The pkg directory is organized into four main areas:
//
//  1. Geometry: [grid], [spatial] - grid math and collision queries
//  2. Board: [board], [place], [pack], [zorder] - items, placement, packing, stacking
//  3. Editing: [command], [interact], [schedule], [engine] - undoable edits, drag state, the facade
//  4. Infra: [errors], [registry], [store] - error codes, extensions, snapshot persistence
//
// # Architecture
//
// The typical data flow through Pegboard:
//
//	Pointer input / API call
//	         ↓
//	    [interact] package (press / move / release state machine)
//	         ↓
//	    [place] package (collision resolution, reflow)
//	         ↓
//	    [command] package (invertible commands, history)
//	         ↓
//	    [engine] package (events, snapshots)
//
// # Quick Start
//
// Create an engine, add an item, and drag it:
//
//	import (
//	    "github.com/kciter/pegboard-sub000/pkg/board"
//	    "github.com/kciter/pegboard-sub000/pkg/engine"
//	    "github.com/kciter/pegboard-sub000/pkg/interact"
//	)
//
//	eng, err := engine.New(engine.Options{})
//	if err != nil {
//	    return err
//	}
//	id, err := eng.AddItem(board.Item{Width: 2, Height: 2, Movable: true, Resizable: true})
//	if err != nil {
//	    return err
//	}
//	eng.Press(interact.Point{X: 34, Y: 26})
//	eng.Drag(interact.Point{X: 170, Y: 26})
//	if err := eng.Release(); err != nil {
//	    return err
//	}
//	_ = id
//
// [grid]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/grid
// [spatial]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/spatial
// [board]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/board
// [place]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/place
// [pack]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/pack
// [zorder]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/zorder
// [command]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/command
// [interact]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/interact
// [schedule]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/schedule
// [engine]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/engine
// [errors]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/errors
// [registry]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/registry
// [store]: https://pkg.go.dev/github.com/kciter/pegboard-sub000/pkg/store
package pkg
