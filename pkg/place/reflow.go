package place

import (
	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/grid"
)

// Policy selects how neighboring items make room for a moving item.
type Policy string

// Reflow policies.
const (
	// PolicyNone disables reflow; colliding moves are simply invalid.
	PolicyNone Policy = "none"
	// PolicyPushAway offsets each colliding neighbor along the mover's
	// dominant travel axis, just far enough to clear the new footprint.
	PolicyPushAway Policy = "push-away"
	// PolicySmartFill relocates each colliding neighbor to its nearest free
	// slot by spiral search.
	PolicySmartFill Policy = "smart-fill"
)

// ValidPolicy reports whether p names a known reflow policy.
func ValidPolicy(p Policy) bool {
	switch p {
	case PolicyNone, PolicyPushAway, PolicySmartFill:
		return true
	}
	return false
}

// Displacement records one neighbor's computed relocation.
type Displacement struct {
	ID     string        `json:"id"`
	From   grid.Position `json:"from"`
	To     grid.Position `json:"to"`
	Reason string        `json:"reason"`
}

// Result is the outcome of a reflow computation. Success is true only when
// every colliding neighbor found a resolution; a partial result is advisory
// (suitable for a live preview) and must not be committed blindly.
type Result struct {
	Affected []Displacement
	Success  bool
}

// CalculateReflow computes which neighbors must be displaced, and to where,
// when the item movingID of the given size travels from -> to over them.
// The items slice is the full collection including the mover at its old
// position. Best-effort: a neighbor with no feasible resolution is left out
// of Affected and Success is false.
func CalculateReflow(cfg grid.Config, movingID string, size grid.Size, from, to grid.Position, items []board.Placed, policy Policy) Result {
	if policy == PolicyNone || !ValidPolicy(policy) {
		return Result{Success: true}
	}

	target := grid.Rect{Position: to, Size: size}

	var colliding []board.Placed
	others := make(map[string]grid.Rect, len(items))
	for _, it := range items {
		if it.ID == movingID {
			continue
		}
		others[it.ID] = it.Rect
		if grid.RectsOverlap(target, it.Rect) {
			colliding = append(colliding, it)
		}
	}
	if len(colliding) == 0 {
		return Result{Success: true}
	}

	res := Result{Success: true}
	for _, neighbor := range colliding {
		var dest grid.Position
		var ok bool
		switch policy {
		case PolicyPushAway:
			dest, ok = pushAway(cfg, target, from, to, neighbor, others)
		case PolicySmartFill:
			dest, ok = smartFill(cfg, target, neighbor, others)
		}
		if !ok {
			res.Success = false
			continue
		}
		res.Affected = append(res.Affected, Displacement{
			ID:     neighbor.ID,
			From:   neighbor.Rect.Position,
			To:     dest,
			Reason: string(policy),
		})
		// Later neighbors see this one at its new position.
		others[neighbor.ID] = grid.Rect{Position: dest, Size: neighbor.Rect.Size}
	}
	return res
}

// pushAway offsets a neighbor along the mover's dominant travel axis, just
// far enough to clear the target footprint, then re-validates the slot
// against bounds and every non-involved item. Horizontal wins a tied axis.
func pushAway(cfg grid.Config, target grid.Rect, from, to grid.Position, neighbor board.Placed, others map[string]grid.Rect) (grid.Position, bool) {
	dx := to.X - from.X
	dy := to.Y - from.Y

	dest := neighbor.Rect.Position
	if abs(dx) >= abs(dy) {
		if dx >= 0 {
			dest.X = target.X + target.Width
		} else {
			dest.X = target.X - neighbor.Rect.Width
		}
	} else {
		if dy >= 0 {
			dest.Y = target.Y + target.Height
		} else {
			dest.Y = target.Y - neighbor.Rect.Height
		}
	}

	if !slotFree(cfg, dest, neighbor.Rect.Size, neighbor.ID, target, others) {
		return grid.Position{}, false
	}
	return dest, true
}

// smartFill relocates a neighbor to the nearest free slot by spiral search,
// treating the mover's target footprint as provisionally occupied.
func smartFill(cfg grid.Config, target grid.Rect, neighbor board.Placed, others map[string]grid.Rect) (grid.Position, bool) {
	extent := target.EndY()
	for _, r := range others {
		if end := r.EndY(); end > extent {
			extent = end
		}
	}
	return cfg.FindSlot(neighbor.Rect.Position, neighbor.Rect.Size, extent, func(pos grid.Position, s grid.Size) bool {
		return !slotFree(cfg, pos, s, neighbor.ID, target, others)
	})
}

// slotFree reports whether a neighbor slot is in bounds and clear of the
// mover's target footprint and of every other item.
func slotFree(cfg grid.Config, pos grid.Position, size grid.Size, selfID string, target grid.Rect, others map[string]grid.Rect) bool {
	if !cfg.IsValidPosition(pos, size) {
		return false
	}
	if grid.Overlaps(pos, size, target.Position, target.Size) {
		return false
	}
	for id, r := range others {
		if id == selfID {
			continue
		}
		if grid.Overlaps(pos, size, r.Position, r.Size) {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
