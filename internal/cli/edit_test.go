package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/engine"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/interact"
	"github.com/kciter/pegboard-sub000/pkg/store"
)

func testEditor(t *testing.T) editorModel {
	t.Helper()
	eng, err := engine.New(engine.Options{
		Grid: grid.Config{Columns: 12, Rows: 10, CellWidth: 20, CellHeight: 20},
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return newEditorModel(context.Background(), eng, store.NewNullStore(), "test")
}

func keyPress(m editorModel, key string) editorModel {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(editorModel)
}

func TestEditorCursorStaysOnBoard(t *testing.T) {
	m := testEditor(t)

	m = keyPress(m, "up")
	m = keyPress(m, "left")
	if m.cursor != (grid.Cell{X: 1, Y: 1}) {
		t.Fatalf("cursor = %+v, want (1,1)", m.cursor)
	}

	for i := 0; i < 20; i++ {
		m = keyPress(m, "right")
	}
	if m.cursor.X != 12 {
		t.Fatalf("cursor.X = %d, want clamped to 12", m.cursor.X)
	}
}

func TestEditorAddAndRemove(t *testing.T) {
	m := testEditor(t)

	m = keyPress(m, "n")
	if m.eng.Len() != 1 {
		t.Fatalf("items = %d, want 1", m.eng.Len())
	}
	if !m.dirty {
		t.Error("add should mark the board dirty")
	}

	m = keyPress(m, "d")
	if m.eng.Len() != 0 {
		t.Fatalf("items = %d after delete, want 0", m.eng.Len())
	}
}

func TestEditorGrabMoveDrop(t *testing.T) {
	m := testEditor(t)
	id, err := m.eng.AddItem(board.Item{ID: "a", X: 1, Y: 1, Width: 2, Height: 2, Movable: true, Resizable: true})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	m = keyPress(m, "enter") // grab at (1,1)
	if m.eng.InteractionState() != interact.StateMoving {
		t.Fatalf("state = %v, want moving", m.eng.InteractionState())
	}

	m = keyPress(m, "right")
	m = keyPress(m, "right")
	m = keyPress(m, "down")
	m = keyPress(m, "enter") // drop

	if m.eng.InteractionState() != interact.StateIdle {
		t.Fatalf("state = %v after drop, want idle", m.eng.InteractionState())
	}
	it, _ := m.eng.Item(id)
	if it.X != 3 || it.Y != 2 {
		t.Fatalf("item at (%d,%d), want (3,2)", it.X, it.Y)
	}
}

func TestEditorLassoSelect(t *testing.T) {
	eng, err := engine.New(engine.Options{
		Grid:          grid.Config{Columns: 12, Rows: 10, CellWidth: 20, CellHeight: 20},
		SelectionMode: board.SelectMultiple,
		Lasso:         true,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	m := newEditorModel(context.Background(), eng, store.NewNullStore(), "test")

	for _, id := range []string{"a", "b"} {
		if _, err := m.eng.AddItem(board.Item{ID: id, Width: 1, Height: 1, Movable: true, Resizable: true}); err != nil {
			t.Fatalf("AddItem(%s): %v", id, err)
		}
	}
	a, _ := m.eng.Item("a")
	b, _ := m.eng.Item("b")
	if a.Y != 1 || b.Y != 1 {
		t.Fatalf("items placed at y %d and %d, want row 1", a.Y, b.Y)
	}

	// Start the lasso on an empty cell below the items, then sweep up and
	// left so the rectangle covers both.
	for i := 0; i < 3; i++ {
		m = keyPress(m, "right")
		m = keyPress(m, "down")
	}
	m = keyPress(m, "enter")
	if m.eng.InteractionState() != interact.StateLasso {
		t.Fatalf("state = %v, want lasso", m.eng.InteractionState())
	}
	for i := 0; i < 3; i++ {
		m = keyPress(m, "left")
		m = keyPress(m, "up")
	}
	m = keyPress(m, "enter")

	if got := len(m.eng.SelectedIDs()); got != 2 {
		t.Fatalf("selected %d items, want 2", got)
	}
}

func TestEditorUndoRedo(t *testing.T) {
	m := testEditor(t)

	m = keyPress(m, "n")
	m = keyPress(m, "u")
	if m.eng.Len() != 0 {
		t.Fatalf("items = %d after undo, want 0", m.eng.Len())
	}
}

func TestEditorCancelOnQuitKey(t *testing.T) {
	m := testEditor(t)
	if _, err := m.eng.AddItem(board.Item{ID: "a", X: 1, Y: 1, Width: 2, Height: 2, Movable: true, Resizable: true}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	m = keyPress(m, "enter")
	m = keyPress(m, "q") // first q cancels the drag, does not quit
	if m.eng.InteractionState() != interact.StateIdle {
		t.Fatal("q should cancel the active interaction")
	}
}

func TestEditorViewShowsItems(t *testing.T) {
	m := testEditor(t)
	m = keyPress(m, "n")

	view := m.View()
	if view == "" {
		t.Fatal("empty view")
	}
}

func TestItemRef(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a", "a"},
		{"widget-12", "widget"},
		{"0f8fad5bd9cb469fa165", "0f8fad5b"},
	}
	for _, tt := range tests {
		if got := itemRef(tt.in); got != tt.want {
			t.Errorf("itemRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCellCenter(t *testing.T) {
	cfg := grid.Config{Columns: 12, Rows: 10, CellWidth: 8, CellHeight: 8, Gap: 2}
	pt := cellCenter(cfg, grid.Cell{X: 3, Y: 2})
	if pt.X != 24 || pt.Y != 14 {
		t.Fatalf("center = (%v,%v), want (24,14)", pt.X, pt.Y)
	}
}
