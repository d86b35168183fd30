package grid

import "testing"

func boundedConfig(cols, rows int) Config {
	return Config{Columns: cols, Rows: rows, CellWidth: 64, CellHeight: 48, Gap: 4}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"default", DefaultConfig(), nil},
		{"bounded", boundedConfig(12, 10), nil},
		{"zero columns", boundedConfig(0, 10), ErrInvalidColumns},
		{"negative rows", boundedConfig(12, -1), ErrInvalidRows},
		{"zero cell width", Config{Columns: 12, CellWidth: 0, CellHeight: 48}, ErrInvalidCellUnit},
		{"negative gap", Config{Columns: 12, CellWidth: 64, CellHeight: 48, Gap: -1}, ErrInvalidGap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidPosition(t *testing.T) {
	bounded := boundedConfig(12, 10)
	unbounded := boundedConfig(12, Unbounded)

	tests := []struct {
		name string
		cfg  Config
		pos  Position
		size Size
		want bool
	}{
		{"origin", bounded, Position{1, 1}, Size{3, 2}, true},
		{"fills grid", bounded, Position{1, 1}, Size{12, 10}, true},
		{"right edge exact", bounded, Position{10, 1}, Size{3, 1}, true},
		{"right overflow", bounded, Position{11, 1}, Size{3, 1}, false},
		{"bottom edge exact", bounded, Position{1, 9}, Size{1, 2}, true},
		{"bottom overflow", bounded, Position{1, 10}, Size{1, 2}, false},
		{"zero x", bounded, Position{0, 1}, Size{1, 1}, false},
		{"zero y", bounded, Position{1, 0}, Size{1, 1}, false},
		{"zero width", bounded, Position{1, 1}, Size{0, 1}, false},
		{"unbounded deep", unbounded, Position{1, 100000}, Size{12, 50}, true},
		{"unbounded still clamps x", unbounded, Position{13, 1}, Size{1, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsValidPosition(tt.pos, tt.size); got != tt.want {
				t.Errorf("IsValidPosition(%v, %v) = %v, want %v", tt.pos, tt.size, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Rect
		want  bool
	}{
		{
			"identical",
			Rect{Position{1, 1}, Size{3, 2}}, Rect{Position{1, 1}, Size{3, 2}},
			true,
		},
		{
			"one cell shared",
			Rect{Position{1, 1}, Size{3, 2}}, Rect{Position{3, 2}, Size{2, 2}},
			true,
		},
		{
			"horizontally adjacent",
			Rect{Position{1, 1}, Size{3, 2}}, Rect{Position{4, 1}, Size{3, 2}},
			false,
		},
		{
			"vertically adjacent",
			Rect{Position{1, 1}, Size{3, 2}}, Rect{Position{1, 3}, Size{3, 2}},
			false,
		},
		{
			"diagonal corner touch",
			Rect{Position{1, 1}, Size{2, 2}}, Rect{Position{3, 3}, Size{2, 2}},
			false,
		},
		{
			"contained",
			Rect{Position{1, 1}, Size{6, 6}}, Rect{Position{2, 2}, Size{2, 2}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RectsOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("RectsOverlap = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := RectsOverlap(tt.b, tt.a); got != tt.want {
				t.Errorf("RectsOverlap reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectCells(t *testing.T) {
	r := Rect{Position{2, 3}, Size{2, 2}}
	want := []Cell{{2, 3}, {3, 3}, {2, 4}, {3, 4}}

	cells := r.Cells()
	if len(cells) != len(want) {
		t.Fatalf("Cells() returned %d cells, want %d", len(cells), len(want))
	}
	for i, c := range cells {
		if c != want[i] {
			t.Errorf("Cells()[%d] = %v, want %v", i, c, want[i])
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{Position{2, 3}, Size{2, 2}}

	for _, c := range r.Cells() {
		if !r.Contains(c) {
			t.Errorf("Contains(%v) = false for a covered cell", c)
		}
	}
	for _, c := range []Cell{{1, 3}, {4, 3}, {2, 2}, {3, 5}} {
		if r.Contains(c) {
			t.Errorf("Contains(%v) = true for a cell outside the rect", c)
		}
	}
}

func TestFindFreeSlotNear(t *testing.T) {
	cfg := boundedConfig(12, 10)

	t.Run("start itself free", func(t *testing.T) {
		pos, ok := cfg.FindFreeSlotNear(Position{4, 4}, Size{2, 2}, nil)
		if !ok || pos != (Position{4, 4}) {
			t.Errorf("got %v, %v; want (4,4), true", pos, ok)
		}
	})

	t.Run("relocates around occupant", func(t *testing.T) {
		// A occupies (1,1)..(3,2). A 3x2 candidate requested at (2,1) must
		// slide to the nearest slot clear of A.
		occupied := []Rect{{Position{1, 1}, Size{3, 2}}}
		pos, ok := cfg.FindFreeSlotNear(Position{2, 1}, Size{3, 2}, occupied)
		if !ok {
			t.Fatal("expected a free slot")
		}
		if pos == (Position{2, 1}) {
			t.Fatal("slot was not relocated")
		}
		if Overlaps(pos, Size{3, 2}, Position{1, 1}, Size{3, 2}) {
			t.Errorf("slot %v still collides with occupant", pos)
		}
		if !cfg.IsValidPosition(pos, Size{3, 2}) {
			t.Errorf("slot %v is out of bounds", pos)
		}
		// Ring scan order is deterministic: bottom edge of radius 2.
		if pos != (Position{1, 3}) {
			t.Errorf("slot = %v, want (1,3)", pos)
		}
	})

	t.Run("full grid exhausts", func(t *testing.T) {
		small := boundedConfig(2, 2)
		occupied := []Rect{{Position{1, 1}, Size{2, 2}}}
		if _, ok := small.FindFreeSlotNear(Position{1, 1}, Size{1, 1}, occupied); ok {
			t.Error("expected exhaustion on a fully occupied grid")
		}
	})

	t.Run("unbounded grid always finds a slot below", func(t *testing.T) {
		open := boundedConfig(2, Unbounded)
		occupied := []Rect{{Position{1, 1}, Size{2, 4}}}
		pos, ok := open.FindFreeSlotNear(Position{1, 1}, Size{2, 2}, occupied)
		if !ok {
			t.Fatal("expected a free slot on an unbounded grid")
		}
		if pos.Y <= 4 {
			t.Errorf("slot %v overlaps the occupied band", pos)
		}
	})

	t.Run("oversized item never fits", func(t *testing.T) {
		if _, ok := cfg.FindFreeSlotNear(Position{1, 1}, Size{13, 1}, nil); ok {
			t.Error("expected no slot for an item wider than the grid")
		}
	})
}
