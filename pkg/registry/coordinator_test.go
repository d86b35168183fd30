package registry

import (
	"testing"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// fakeBoard is a minimal DropHandler backed by an item map.
type fakeBoard struct {
	items      map[string]board.Item
	rejectNext bool
	restored   int
}

func newFakeBoard(ids ...string) *fakeBoard {
	b := &fakeBoard{items: make(map[string]board.Item)}
	for _, id := range ids {
		b.items[id] = board.Item{ID: id, X: 1, Y: 1, Width: 2, Height: 2}
	}
	return b
}

func (b *fakeBoard) Detach(id string) (board.Item, error) {
	it, ok := b.items[id]
	if !ok {
		return board.Item{}, errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
	}
	delete(b.items, id)
	return it, nil
}

func (b *fakeBoard) Attach(item board.Item, x, y float64) error {
	if b.rejectNext {
		b.rejectNext = false
		return errors.New(errors.ErrCodeNoAvailablePosition, "board is full")
	}
	b.items[item.ID] = item
	return nil
}

func (b *fakeBoard) Restore(item board.Item) error {
	b.restored++
	b.items[item.ID] = item
	return nil
}

func TestCoordinatorHitTest(t *testing.T) {
	c := NewCoordinator()
	if err := c.Add("left", Bounds{X: 0, Y: 0, Width: 100, Height: 100}, newFakeBoard()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add("right", Bounds{X: 100, Y: 0, Width: 100, Height: 100}, newFakeBoard()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tests := []struct {
		x, y float64
		want string
		ok   bool
	}{
		{50, 50, "left", true},
		{100, 50, "right", true}, // right edge is exclusive, so 100 belongs to the right container
		{150, 99, "right", true},
		{250, 50, "", false},
		{50, 100, "", false},
	}
	for _, tt := range tests {
		got, ok := c.HitTest(tt.x, tt.y)
		if got != tt.want || ok != tt.ok {
			t.Errorf("HitTest(%.0f, %.0f) = %q, %v; want %q, %v", tt.x, tt.y, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCoordinatorDropHandsOff(t *testing.T) {
	c := NewCoordinator()
	src := newFakeBoard("a")
	dst := newFakeBoard()
	c.Add("src", Bounds{X: 0, Y: 0, Width: 100, Height: 100}, src)
	c.Add("dst", Bounds{X: 100, Y: 0, Width: 100, Height: 100}, dst)

	target, ok, err := c.Drop("src", "a", 150, 50)
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if !ok || target != "dst" {
		t.Fatalf("Drop = %q, %v; want dst, true", target, ok)
	}
	if _, still := src.items["a"]; still {
		t.Error("item should have left the source container")
	}
	if _, arrived := dst.items["a"]; !arrived {
		t.Error("item should have arrived at the target container")
	}
}

func TestCoordinatorDropOnSourceIsNotHandled(t *testing.T) {
	c := NewCoordinator()
	src := newFakeBoard("a")
	c.Add("src", Bounds{X: 0, Y: 0, Width: 100, Height: 100}, src)

	target, ok, err := c.Drop("src", "a", 50, 50)
	if err != nil || ok {
		t.Fatalf("Drop onto source = %q, %v, %v; want src, false, nil", target, ok, err)
	}
	if _, still := src.items["a"]; !still {
		t.Error("item must stay on the source board")
	}
}

func TestCoordinatorDropRestoresOnRejection(t *testing.T) {
	c := NewCoordinator()
	src := newFakeBoard("a")
	dst := newFakeBoard()
	dst.rejectNext = true
	c.Add("src", Bounds{X: 0, Y: 0, Width: 100, Height: 100}, src)
	c.Add("dst", Bounds{X: 100, Y: 0, Width: 100, Height: 100}, dst)

	_, ok, err := c.Drop("src", "a", 150, 50)
	if ok || err == nil {
		t.Fatalf("rejected drop should fail, got ok=%v err=%v", ok, err)
	}
	if errors.GetCode(err) != errors.ErrCodeNoAvailablePosition {
		t.Errorf("code = %q, want the target's NO_AVAILABLE_POSITION", errors.GetCode(err))
	}
	if src.restored != 1 {
		t.Errorf("restored = %d, want the item back on the source", src.restored)
	}
	if _, back := src.items["a"]; !back {
		t.Error("item should be back on the source board")
	}
}

func TestCoordinatorDropOutsideAnyContainer(t *testing.T) {
	c := NewCoordinator()
	src := newFakeBoard("a")
	c.Add("src", Bounds{X: 0, Y: 0, Width: 100, Height: 100}, src)

	if _, _, err := c.Drop("src", "a", 500, 500); errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("code = %q, want NOT_FOUND", errors.GetCode(err))
	}
	if _, still := src.items["a"]; !still {
		t.Error("a miss must not detach the item")
	}
}

func TestCoordinatorSetBounds(t *testing.T) {
	c := NewCoordinator()
	c.Add("z", Bounds{X: 0, Y: 0, Width: 10, Height: 10}, newFakeBoard())

	if err := c.SetBounds("z", Bounds{X: 50, Y: 50, Width: 10, Height: 10}); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	if _, ok := c.HitTest(5, 5); ok {
		t.Error("old bounds should no longer match")
	}
	if id, ok := c.HitTest(55, 55); !ok || id != "z" {
		t.Error("new bounds should match")
	}
	if err := c.SetBounds("missing", Bounds{}); errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("code = %q, want NOT_FOUND", errors.GetCode(err))
	}
}
