package engine

import (
	"math"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/command"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/interact"
	"github.com/kciter/pegboard-sub000/pkg/registry"
)

// Press forwards a pointer-down to the interaction machine. It returns true
// when an interaction started, and announces it with interaction:active.
func (e *Engine) Press(pt interact.Point) bool {
	if !e.machine.Press(pt) {
		return false
	}
	e.emit(EventInteractionActive, nil)
	return true
}

// Drag forwards a pointer-move and returns the refreshed preview, or nil
// while idle.
func (e *Engine) Drag(pt interact.Point) *interact.Preview {
	return e.machine.Move(pt)
}

// Release forwards the pointer-up. A valid candidate is committed
// atomically - the dragged items and any reflow displacements land as one
// history entry; an invalid one is discarded and the board is untouched.
func (e *Engine) Release() error {
	commit, ok := e.machine.Release()
	e.emit(EventInteractionIdle, nil)
	if !ok {
		return nil
	}
	return e.applyCommit(commit)
}

// CancelInteraction aborts any in-progress drag without committing.
func (e *Engine) CancelInteraction() {
	if e.machine.State() == interact.StateIdle {
		return
	}
	e.machine.Cancel()
	e.emit(EventInteractionIdle, nil)
}

// InteractionState returns the machine's current state.
func (e *Engine) InteractionState() interact.State { return e.machine.State() }

// InteractionPreview returns the latest drag preview, or nil.
func (e *Engine) InteractionPreview() *interact.Preview { return e.machine.Preview() }

// applyCommit applies a released interaction: a lasso selection, or final
// rectangles plus reflow displacements as a single batch.
func (e *Engine) applyCommit(c interact.Commit) error {
	if c.Select != nil {
		return e.applySelection(c.Select)
	}
	if len(c.Items) == 0 {
		return nil
	}

	var cmds []command.Command
	for _, p := range c.Items {
		it, ok := e.items[p.ID]
		if !ok {
			return errors.New(errors.ErrCodeItemNotFound, "no item %q", p.ID)
		}
		if p.Rect == it.Rect() {
			continue
		}
		cmds = append(cmds, e.placeCommand(p.ID, p.Rect))
	}
	for _, d := range c.Reflow {
		cmds = append(cmds, e.moveCommand(d.ID, d.To))
	}
	if len(cmds) == 0 {
		return nil
	}
	label := "drag " + c.Items[0].ID
	return e.runner.Execute(&command.Batch{Label: label, Commands: cmds})
}

// placeCommand applies a full rectangle (position and size) to one item,
// emitting moved and resized events as appropriate.
func (e *Engine) placeCommand(id string, to grid.Rect) command.Command {
	var from grid.Rect
	apply := func(r grid.Rect) error {
		it, ok := e.items[id]
		if !ok {
			return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
		}
		oldPos, oldSize := it.Pos(), it.Dim()
		it.SetPos(r.Position)
		it.SetDim(r.Size)
		e.index.Move(id, r.Position, r.Size)
		if oldPos != r.Position {
			e.emit(EventItemMoved, ItemMovedEvent{Item: *it.Clone(), OldPosition: oldPos})
		}
		if oldSize != r.Size {
			e.emit(EventItemResized, ItemResizedEvent{Item: *it.Clone(), OldSize: oldSize})
		}
		return nil
	}
	return &command.Func{
		Label: "place " + id,
		Do: func() error {
			if it, ok := e.items[id]; ok {
				from = it.Rect()
			}
			return apply(to)
		},
		Revert: func() error { return apply(from) },
	}
}

// ====================================================================
// Cross-container drag hand-off (registry.DropHandler)
// ====================================================================

// Detach removes an item for a cross-container hand-off and returns it. The
// removal is a normal history entry on this engine.
func (e *Engine) Detach(id string) (board.Item, error) {
	it, ok := e.Item(id)
	if !ok {
		return board.Item{}, errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
	}
	if err := e.RemoveItem(id); err != nil {
		return board.Item{}, err
	}
	return it, nil
}

// Attach places a handed-off item near the container-relative drop point.
// The item keeps its identity, size, flags, and attributes; a taken ID or an
// unregistered type tag rejects the attach so the coordinator can restore
// the item to its source.
func (e *Engine) Attach(item board.Item, x, y float64) error {
	if _, exists := e.items[item.ID]; exists {
		return errors.New(errors.ErrCodeInvalidItem, "item %q already exists here", item.ID)
	}
	cx := int(math.Floor(x/e.cfg.PitchX())) + 1
	cy := int(math.Floor(y/e.cfg.PitchY())) + 1
	item.X, item.Y = cx, cy
	_, err := e.AddItem(item)
	return err
}

// Restore puts a detached item back at the position it still carries.
func (e *Engine) Restore(item board.Item) error {
	_, err := e.AddItem(item)
	return err
}

var _ registry.DropHandler = (*Engine)(nil)
var _ interact.Host = (*Engine)(nil)
