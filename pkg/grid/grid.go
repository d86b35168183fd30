// Package grid implements the coordinate system of the pegboard engine.
//
// The grid is an axis-aligned integer lattice of columns and rows. Positions
// are 1-indexed: the top-left cell is (1,1). Columns are always finite; rows
// may be finite (hard cap) or unbounded (auto-grow), signalled by Rows == 0.
//
// The package is a leaf: it knows nothing about items, only about positions,
// sizes, rectangle overlap, and the spiral free-slot search used by the
// placement layer.
package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidColumns is returned by [Config.Validate] when the column
	// count is not positive. Columns are always finite.
	ErrInvalidColumns = errors.New("grid must have at least one column")

	// ErrInvalidRows is returned by [Config.Validate] when the row count is
	// negative. Zero means the grid grows downward without bound.
	ErrInvalidRows = errors.New("grid row count must not be negative")

	// ErrInvalidCellUnit is returned by [Config.Validate] when the cell
	// pixel dimensions are not positive.
	ErrInvalidCellUnit = errors.New("cell unit dimensions must be positive")

	// ErrInvalidGap is returned by [Config.Validate] when the gap between
	// cells is negative.
	ErrInvalidGap = errors.New("cell gap must not be negative")
)

// Unbounded is the Rows value signalling a vertically unbounded grid.
const Unbounded = 0

// Config describes the grid geometry.
//
// CellWidth, CellHeight, and Gap are in user units (typically pixels) and are
// only consulted when converting continuous pointer coordinates to cells;
// all placement logic operates on integer cell coordinates.
type Config struct {
	Columns    int     `json:"columns" bson:"columns" toml:"columns"`
	Rows       int     `json:"rows" bson:"rows" toml:"rows"` // 0 = unbounded
	CellWidth  float64 `json:"cell_width" bson:"cell_width" toml:"cell_width"`
	CellHeight float64 `json:"cell_height" bson:"cell_height" toml:"cell_height"`
	Gap        float64 `json:"gap" bson:"gap" toml:"gap"`
}

// DefaultConfig returns a 12-column unbounded grid with common dashboard
// cell dimensions.
func DefaultConfig() Config {
	return Config{
		Columns:    12,
		Rows:       Unbounded,
		CellWidth:  64,
		CellHeight: 48,
		Gap:        4,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.Columns <= 0 {
		return ErrInvalidColumns
	}
	if c.Rows < 0 {
		return ErrInvalidRows
	}
	if c.CellWidth <= 0 || c.CellHeight <= 0 {
		return ErrInvalidCellUnit
	}
	if c.Gap < 0 {
		return ErrInvalidGap
	}
	return nil
}

// IsUnbounded reports whether the grid grows downward without a row cap.
func (c Config) IsUnbounded() bool { return c.Rows == Unbounded }

// PitchX returns the horizontal distance between the origins of two
// neighboring cells in user units.
func (c Config) PitchX() float64 { return c.CellWidth + c.Gap }

// PitchY returns the vertical distance between the origins of two
// neighboring cells in user units.
func (c Config) PitchY() float64 { return c.CellHeight + c.Gap }

// Position is a 1-indexed cell coordinate.
type Position struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// String returns the position as "(x,y)".
func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Size is an item extent in cells. Both dimensions are at least 1 for any
// valid placement.
type Size struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

// Area returns the footprint area in cells.
func (s Size) Area() int { return s.Width * s.Height }

// Cell identifies a single grid cell. It is the key type of the spatial
// index.
type Cell struct {
	X int
	Y int
}

// Rect is a placed rectangle: a position plus a size.
type Rect struct {
	Position
	Size
}

// EndX returns the x coordinate of the rightmost covered column.
func (r Rect) EndX() int { return r.X + r.Width - 1 }

// EndY returns the y coordinate of the bottommost covered row.
func (r Rect) EndY() int { return r.Y + r.Height - 1 }

// Contains reports whether the rectangle covers the cell.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X <= r.EndX() && c.Y >= r.Y && c.Y <= r.EndY()
}

// Cells returns every cell covered by the rectangle in row-major order.
func (r Rect) Cells() []Cell {
	cells := make([]Cell, 0, r.Width*r.Height)
	for y := r.Y; y <= r.EndY(); y++ {
		for x := r.X; x <= r.EndX(); x++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

// IsValidPosition reports whether a rectangle of the given size placed at pos
// lies fully inside the grid. For unbounded grids only the left, right, and
// top edges constrain placement.
func (c Config) IsValidPosition(pos Position, size Size) bool {
	if size.Width < 1 || size.Height < 1 {
		return false
	}
	if pos.X < 1 || pos.X+size.Width-1 > c.Columns {
		return false
	}
	if pos.Y < 1 {
		return false
	}
	if !c.IsUnbounded() && pos.Y+size.Height-1 > c.Rows {
		return false
	}
	return true
}

// Overlaps reports whether two axis-aligned rectangles share at least one
// cell. Two rectangles overlap iff their projections on both axes intersect.
func Overlaps(aPos Position, aSize Size, bPos Position, bSize Size) bool {
	aEndX := aPos.X + aSize.Width - 1
	aEndY := aPos.Y + aSize.Height - 1
	bEndX := bPos.X + bSize.Width - 1
	bEndY := bPos.Y + bSize.Height - 1
	return !(aEndX < bPos.X || aPos.X > bEndX) && !(aEndY < bPos.Y || aPos.Y > bEndY)
}

// RectsOverlap reports whether two rectangles share at least one cell.
func RectsOverlap(a, b Rect) bool {
	return Overlaps(a.Position, a.Size, b.Position, b.Size)
}

// collidesAny reports whether a rectangle at pos collides with any of the
// occupied rectangles.
func collidesAny(pos Position, size Size, occupied []Rect) bool {
	for _, r := range occupied {
		if Overlaps(pos, size, r.Position, r.Size) {
			return true
		}
	}
	return false
}

// FindFreeSlotNear searches outward from start in rings of increasing
// Chebyshev radius for the nearest position that is in-bounds and does not
// collide with any occupied rectangle. Radius zero tests start itself.
//
// The search radius is bounded: for a bounded grid it is columns+rows; for
// an unbounded grid the occupied extent plus the candidate height stands in
// for the row count. The second return value is false when the bounded
// search exhausts without finding a slot.
func (c Config) FindFreeSlotNear(start Position, size Size, occupied []Rect) (Position, bool) {
	extent := 0
	for _, r := range occupied {
		if end := r.EndY(); end > extent {
			extent = end
		}
	}
	return c.FindSlot(start, size, extent, func(pos Position, s Size) bool {
		return collidesAny(pos, s, occupied)
	})
}

// FindSlot is the predicate form of the spiral search: blocked reports
// whether a candidate footprint collides with anything. extentHint is the
// bottommost occupied row, consulted only on unbounded grids to bound the
// search radius.
func (c Config) FindSlot(start Position, size Size, extentHint int, blocked func(Position, Size) bool) (Position, bool) {
	maxRadius := c.Columns + c.Rows
	if c.IsUnbounded() {
		if extentHint < size.Height {
			extentHint = size.Height
		}
		maxRadius = c.Columns + extentHint + size.Height
	}

	for radius := 0; radius <= maxRadius; radius++ {
		if pos, ok := c.scanRing(start, size, blocked, radius); ok {
			return pos, true
		}
	}
	return Position{}, false
}

// scanRing tests every cell on the ring of the given Chebyshev radius around
// start, returning the first valid unblocked position. The four edges are
// scanned top, bottom, left, right; corners belong to the horizontal edges
// so no cell is tested twice.
func (c Config) scanRing(start Position, size Size, blocked func(Position, Size) bool, radius int) (Position, bool) {
	try := func(x, y int) (Position, bool) {
		pos := Position{X: x, Y: y}
		if c.IsValidPosition(pos, size) && !blocked(pos, size) {
			return pos, true
		}
		return Position{}, false
	}

	if radius == 0 {
		return try(start.X, start.Y)
	}

	// Top then bottom edge, corners included.
	for x := start.X - radius; x <= start.X+radius; x++ {
		if pos, ok := try(x, start.Y-radius); ok {
			return pos, true
		}
	}
	for x := start.X - radius; x <= start.X+radius; x++ {
		if pos, ok := try(x, start.Y+radius); ok {
			return pos, true
		}
	}
	// Left then right edge, corners excluded.
	for y := start.Y - radius + 1; y <= start.Y+radius-1; y++ {
		if pos, ok := try(start.X-radius, y); ok {
			return pos, true
		}
	}
	for y := start.Y - radius + 1; y <= start.Y+radius-1; y++ {
		if pos, ok := try(start.X+radius, y); ok {
			return pos, true
		}
	}
	return Position{}, false
}
