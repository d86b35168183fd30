// Package place resolves requested item placements against grid bounds,
// size constraints, and the spatial index, and computes the displacement of
// neighboring items when a move collides (reflow).
//
// The resolver never mutates anything: it answers "where may this rectangle
// go", falling back to the spiral free-slot search before surfacing
// NO_AVAILABLE_POSITION. Reflow results are advisory; only the engine
// commits them.
package place

import (
	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/spatial"
)

// Resolver validates and adjusts requested placements.
type Resolver struct {
	cfg   grid.Config
	index *spatial.Index
}

// NewResolver creates a resolver over the given grid and spatial index.
func NewResolver(cfg grid.Config, index *spatial.Index) *Resolver {
	return &Resolver{cfg: cfg, index: index}
}

// Config returns the grid configuration the resolver validates against.
func (r *Resolver) Config() grid.Config { return r.cfg }

// SetConfig swaps the grid configuration, e.g. after a grid:changed event.
func (r *Resolver) SetConfig(cfg grid.Config) { r.cfg = cfg }

// SetIndex swaps the spatial index, e.g. after a snapshot import rebuilds
// the board wholesale.
func (r *Resolver) SetIndex(index *spatial.Index) { r.index = index }

// ClampSize brings a requested size into the constrained range and then
// into the grid bounds, never below 1 in either dimension.
func (r *Resolver) ClampSize(size grid.Size, c board.Constraints) grid.Size {
	size = c.ClampSize(size)
	if size.Width > r.cfg.Columns {
		size.Width = r.cfg.Columns
	}
	if !r.cfg.IsUnbounded() && size.Height > r.cfg.Rows {
		size.Height = r.cfg.Rows
	}
	return size
}

// Resolve validates a requested placement and returns the final rectangle.
//
// The requested size is clamped first to the constraints, then to the grid.
// The requested position is accepted when it is in bounds and, unless
// overlap is allowed, free of collisions (excludeID is ignored during
// collision checks so an item can be resolved against its own footprint).
// Otherwise the nearest acceptable slot is found by spiral search. When the
// bounded search exhausts, NO_AVAILABLE_POSITION is returned.
func (r *Resolver) Resolve(req grid.Rect, c board.Constraints, excludeID string, allowOverlap bool) (grid.Rect, error) {
	size := r.ClampSize(req.Size, c)

	blocked := func(pos grid.Position, s grid.Size) bool {
		return r.index.HasCollision(pos, s, excludeID)
	}
	if allowOverlap {
		blocked = func(grid.Position, grid.Size) bool { return false }
	}

	if r.cfg.IsValidPosition(req.Position, size) && !blocked(req.Position, size) {
		return grid.Rect{Position: req.Position, Size: size}, nil
	}

	pos, ok := r.cfg.FindSlot(req.Position, size, r.index.MaxRow(), blocked)
	if !ok {
		return grid.Rect{}, errors.New(errors.ErrCodeNoAvailablePosition,
			"no available position for %dx%d near %s", size.Width, size.Height, req.Position)
	}
	return grid.Rect{Position: pos, Size: size}, nil
}

// IsFree reports whether a rectangle is in bounds and collision-free,
// ignoring the excluded item.
func (r *Resolver) IsFree(pos grid.Position, size grid.Size, excludeID string) bool {
	return r.cfg.IsValidPosition(pos, size) && !r.index.HasCollision(pos, size, excludeID)
}
