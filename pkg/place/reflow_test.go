package place

import (
	"testing"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/grid"
)

func placed(id string, x, y, w, h int) board.Placed {
	return board.Placed{ID: id, Rect: rect(x, y, w, h)}
}

func TestCalculateReflowNoCollision(t *testing.T) {
	cfg := testGrid(12, 10)
	items := []board.Placed{
		placed("mover", 1, 1, 2, 2),
		placed("n", 8, 8, 2, 2),
	}

	res := CalculateReflow(cfg, "mover", grid.Size{Width: 2, Height: 2},
		grid.Position{X: 1, Y: 1}, grid.Position{X: 4, Y: 1}, items, PolicyPushAway)

	if !res.Success || len(res.Affected) != 0 {
		t.Errorf("collision-free move should be trivially successful, got %+v", res)
	}
}

func TestCalculateReflowPolicyNone(t *testing.T) {
	cfg := testGrid(12, 10)
	items := []board.Placed{
		placed("mover", 1, 1, 2, 2),
		placed("n", 4, 1, 2, 2),
	}

	res := CalculateReflow(cfg, "mover", grid.Size{Width: 2, Height: 2},
		grid.Position{X: 1, Y: 1}, grid.Position{X: 4, Y: 1}, items, PolicyNone)

	if !res.Success || len(res.Affected) != 0 {
		t.Errorf("PolicyNone should never displace, got %+v", res)
	}
}

func TestPushAwayDisplacesByMovingWidth(t *testing.T) {
	// Mover (3 wide) travels right onto N's exact slot: N must end up
	// exactly movingWidth cells to the right, clearing the target.
	cfg := testGrid(12, 10)
	items := []board.Placed{
		placed("mover", 1, 1, 3, 2),
		placed("n", 4, 1, 2, 2),
	}

	res := CalculateReflow(cfg, "mover", grid.Size{Width: 3, Height: 2},
		grid.Position{X: 1, Y: 1}, grid.Position{X: 4, Y: 1}, items, PolicyPushAway)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if len(res.Affected) != 1 {
		t.Fatalf("Affected = %d entries, want 1", len(res.Affected))
	}
	d := res.Affected[0]
	if d.ID != "n" {
		t.Errorf("displaced %s, want n", d.ID)
	}
	if d.To.X-d.From.X != 3 {
		t.Errorf("displacement = %d cells, want movingWidth 3", d.To.X-d.From.X)
	}
	// Mover's target slot is now collision-free.
	if grid.Overlaps(grid.Position{X: 4, Y: 1}, grid.Size{Width: 3, Height: 2}, d.To, grid.Size{Width: 2, Height: 2}) {
		t.Error("target slot still collides with the displaced neighbor")
	}
}

func TestPushAwayVerticalDominantAxis(t *testing.T) {
	cfg := testGrid(12, 10)
	items := []board.Placed{
		placed("mover", 1, 1, 2, 2),
		placed("n", 1, 4, 2, 2),
	}

	res := CalculateReflow(cfg, "mover", grid.Size{Width: 2, Height: 2},
		grid.Position{X: 1, Y: 1}, grid.Position{X: 1, Y: 4}, items, PolicyPushAway)

	if !res.Success || len(res.Affected) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	d := res.Affected[0]
	if d.To != (grid.Position{X: 1, Y: 6}) {
		t.Errorf("neighbor pushed to %v, want (1,6)", d.To)
	}
}

func TestPushAwayInfeasibleIsBestEffort(t *testing.T) {
	// N sits against the right wall; pushing it right leaves the grid, and
	// its slot is re-validated against bounds. Best-effort: N stays
	// unlisted and Success is false.
	cfg := testGrid(6, 10)
	items := []board.Placed{
		placed("mover", 1, 1, 3, 2),
		placed("n", 4, 1, 3, 2),
	}

	res := CalculateReflow(cfg, "mover", grid.Size{Width: 3, Height: 2},
		grid.Position{X: 1, Y: 1}, grid.Position{X: 4, Y: 1}, items, PolicyPushAway)

	if res.Success {
		t.Error("Success should be false when a neighbor cannot be pushed")
	}
	if len(res.Affected) != 0 {
		t.Errorf("infeasible neighbor should be unlisted, got %+v", res.Affected)
	}
}

func TestPushAwayRevalidatesAgainstBystanders(t *testing.T) {
	// Pushing N right would land it on top of a bystander, so the push
	// fails for N even though the slot is in bounds.
	cfg := testGrid(12, 10)
	items := []board.Placed{
		placed("mover", 1, 1, 3, 2),
		placed("n", 4, 1, 2, 2),
		placed("wall", 7, 1, 2, 2),
	}

	res := CalculateReflow(cfg, "mover", grid.Size{Width: 3, Height: 2},
		grid.Position{X: 1, Y: 1}, grid.Position{X: 4, Y: 1}, items, PolicyPushAway)

	if res.Success {
		t.Error("Success should be false: pushed slot is occupied by a bystander")
	}
}

func TestSmartFillRelocates(t *testing.T) {
	cfg := testGrid(12, 10)
	items := []board.Placed{
		placed("mover", 1, 1, 3, 2),
		placed("n", 4, 1, 2, 2),
	}

	res := CalculateReflow(cfg, "mover", grid.Size{Width: 3, Height: 2},
		grid.Position{X: 1, Y: 1}, grid.Position{X: 4, Y: 1}, items, PolicySmartFill)

	if !res.Success || len(res.Affected) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	d := res.Affected[0]
	if grid.Overlaps(d.To, grid.Size{Width: 2, Height: 2}, grid.Position{X: 4, Y: 1}, grid.Size{Width: 3, Height: 2}) {
		t.Errorf("relocated neighbor at %v still overlaps the mover's target", d.To)
	}
	if !cfg.IsValidPosition(d.To, grid.Size{Width: 2, Height: 2}) {
		t.Errorf("relocated neighbor at %v out of bounds", d.To)
	}
}

func TestSmartFillSequentialNeighbors(t *testing.T) {
	// Two neighbors collide; the second must also avoid the first's new
	// slot. On a tight grid both still resolve.
	cfg := testGrid(6, 6)
	items := []board.Placed{
		placed("mover", 1, 1, 2, 2),
		placed("n1", 3, 1, 2, 2),
		placed("n2", 3, 3, 2, 1),
	}

	res := CalculateReflow(cfg, "mover", grid.Size{Width: 2, Height: 3},
		grid.Position{X: 1, Y: 1}, grid.Position{X: 3, Y: 1}, items, PolicySmartFill)

	if !res.Success || len(res.Affected) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	a, b := res.Affected[0], res.Affected[1]
	if grid.Overlaps(a.To, grid.Size{Width: 2, Height: 2}, b.To, grid.Size{Width: 2, Height: 1}) {
		t.Errorf("relocated neighbors overlap each other: %v and %v", a.To, b.To)
	}
}
