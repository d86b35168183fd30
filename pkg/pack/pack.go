// Package pack recomputes conflict-free layouts for a whole item collection
// under one of four packing strategies.
//
// Strategies operate on placement views ([board.Placed]) and return new
// placements without mutating their input. Items are processed in a stable
// (y, x, id) ascending order so that repeated runs on an already-packed,
// unchanged collection are idempotent. An item that cannot be improved keeps
// its original position; packing never errors over geometry.
package pack

import (
	"sort"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
)

// Strategy names a packing algorithm.
type Strategy string

// Packing strategies.
const (
	// TopLeft is row-major first-fit: each item lands on the first
	// non-colliding cell scanning rows top-down, columns left-right.
	TopLeft Strategy = "top-left"
	// Masonry balances column heights: each item picks the column run whose
	// current maximum height is smallest, ties broken leftmost.
	Masonry Strategy = "masonry"
	// ByRow keeps each item's row band and slides it as far left as
	// possible.
	ByRow Strategy = "by-row"
	// ByColumn keeps each item's column band and slides it as far up as
	// possible.
	ByColumn Strategy = "by-column"
)

// Strategies lists every known strategy, in presentation order.
func Strategies() []Strategy {
	return []Strategy{TopLeft, Masonry, ByRow, ByColumn}
}

// ValidStrategy reports whether s names a known strategy.
func ValidStrategy(s Strategy) bool {
	switch s {
	case TopLeft, Masonry, ByRow, ByColumn:
		return true
	}
	return false
}

// Pack computes a new conflict-free layout for items under the given
// strategy. The input is not mutated; the result holds every input item in
// input order of the stable (y, x, id) sort.
func Pack(cfg grid.Config, items []board.Placed, strategy Strategy) ([]board.Placed, error) {
	if !ValidStrategy(strategy) {
		return nil, errors.New(errors.ErrCodeInvalidStrategy, "unknown packing strategy %q", strategy)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGrid, err, "cannot pack")
	}

	ordered := make([]board.Placed, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.ID < b.ID
	})

	switch strategy {
	case TopLeft:
		return packTopLeft(cfg, ordered), nil
	case Masonry:
		return packMasonry(cfg, ordered), nil
	case ByRow:
		return packByRow(cfg, ordered), nil
	default:
		return packByColumn(cfg, ordered), nil
	}
}

// packTopLeft places each item at the first cell, scanning rows top-down and
// columns left-right, that does not collide with an already-placed proposal.
func packTopLeft(cfg grid.Config, ordered []board.Placed) []board.Placed {
	out := make([]board.Placed, 0, len(ordered))
	for _, it := range ordered {
		pos, ok := firstFit(cfg, it.Size, out)
		if !ok {
			pos = it.Position // no better slot; keep the original
		}
		out = append(out, board.Placed{ID: it.ID, Rect: grid.Rect{Position: pos, Size: it.Size}})
	}
	return out
}

// firstFit scans row-major for the first in-bounds slot clear of placed.
func firstFit(cfg grid.Config, size grid.Size, placed []board.Placed) (grid.Position, bool) {
	maxY := cfg.Rows - size.Height + 1
	if cfg.IsUnbounded() {
		// Row-major first-fit always terminates within the placed extent
		// plus one free band below it.
		maxY = 1
		for _, p := range placed {
			if end := p.EndY(); end+1 > maxY {
				maxY = end + 1
			}
		}
	}
	for y := 1; y <= maxY; y++ {
		for x := 1; x <= cfg.Columns-size.Width+1; x++ {
			pos := grid.Position{X: x, Y: y}
			if !collides(pos, size, placed) {
				return pos, true
			}
		}
	}
	return grid.Position{}, false
}

// packMasonry keeps a "next free y" counter per column. Each item scans the
// candidate start columns, picks the run whose maximum counter is smallest
// (leftmost on ties), and raises every covered counter to placedY + height.
func packMasonry(cfg grid.Config, ordered []board.Placed) []board.Placed {
	next := make([]int, cfg.Columns+1) // 1-indexed next free y per column
	for x := 1; x <= cfg.Columns; x++ {
		next[x] = 1
	}

	raise := func(startX, width, toY int) {
		for x := startX; x < startX+width; x++ {
			if next[x] < toY {
				next[x] = toY
			}
		}
	}

	out := make([]board.Placed, 0, len(ordered))
	for _, it := range ordered {
		bestX, bestY := 0, 0
		for x := 1; x <= cfg.Columns-it.Width+1; x++ {
			runMax := 0
			for c := x; c < x+it.Width; c++ {
				if next[c] > runMax {
					runMax = next[c]
				}
			}
			if bestX == 0 || runMax < bestY {
				bestX, bestY = x, runMax
			}
		}

		pos := grid.Position{X: bestX, Y: bestY}
		if bestX == 0 || !cfg.IsValidPosition(pos, it.Size) {
			// Does not fit the bounded grid; keep the original slot but
			// still account for its occupancy.
			pos = it.Position
			raise(pos.X, it.Width, pos.Y+it.Height)
			out = append(out, board.Placed{ID: it.ID, Rect: grid.Rect{Position: pos, Size: it.Size}})
			continue
		}
		raise(bestX, it.Width, bestY+it.Height)
		out = append(out, board.Placed{ID: it.ID, Rect: grid.Rect{Position: pos, Size: it.Size}})
	}
	return out
}

// packByRow keeps each item's y band fixed and slides it as far left as
// possible. Unlike the vertical slide, the (y, x, id) order does not shield
// a horizontal slide from later items: a tall item sliding left can reach
// the columns of an item in a lower row that has not been processed yet, so
// candidates are checked against the pending items' current rectangles too.
func packByRow(cfg grid.Config, ordered []board.Placed) []board.Placed {
	out := make([]board.Placed, 0, len(ordered))
	for i, it := range ordered {
		pending := ordered[i+1:]
		pos := it.Position
		for x := 1; x < it.X; x++ {
			candidate := grid.Position{X: x, Y: it.Y}
			if cfg.IsValidPosition(candidate, it.Size) &&
				!collides(candidate, it.Size, out) &&
				!collides(candidate, it.Size, pending) {
				pos = candidate
				break
			}
		}
		out = append(out, board.Placed{ID: it.ID, Rect: grid.Rect{Position: pos, Size: it.Size}})
	}
	return out
}

// packByColumn keeps each item's x band fixed and slides it as far up as
// possible. The (y, x, id) processing order guarantees a lower item can
// never jump above one still being placed.
func packByColumn(cfg grid.Config, ordered []board.Placed) []board.Placed {
	out := make([]board.Placed, 0, len(ordered))
	for _, it := range ordered {
		pos := it.Position
		for y := 1; y < it.Y; y++ {
			candidate := grid.Position{X: it.X, Y: y}
			if cfg.IsValidPosition(candidate, it.Size) && !collides(candidate, it.Size, out) {
				pos = candidate
				break
			}
		}
		out = append(out, board.Placed{ID: it.ID, Rect: grid.Rect{Position: pos, Size: it.Size}})
	}
	return out
}

func collides(pos grid.Position, size grid.Size, placed []board.Placed) bool {
	for _, p := range placed {
		if grid.Overlaps(pos, size, p.Position, p.Size) {
			return true
		}
	}
	return false
}
