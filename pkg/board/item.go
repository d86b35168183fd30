// Package board defines the data model of the pegboard engine: items,
// selection state, and the versioned snapshot format.
//
// The item collection itself is owned by an engine instance; this package
// only provides the types, their invariant checks, and (de)serialization
// with round-trip fidelity.
package board

import (
	"encoding/json"

	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
)

// Constraints bounds the size an item may take. Zero values mean "unset":
// no minimum below 1 and no maximum below the grid bounds.
type Constraints struct {
	MinW int `json:"min_w,omitempty" bson:"min_w,omitempty"`
	MaxW int `json:"max_w,omitempty" bson:"max_w,omitempty"`
	MinH int `json:"min_h,omitempty" bson:"min_h,omitempty"`
	MaxH int `json:"max_h,omitempty" bson:"max_h,omitempty"`
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return c == Constraints{}
}

// Validate checks that the constraint ranges are internally consistent.
func (c Constraints) Validate() error {
	if c.MinW < 0 || c.MaxW < 0 || c.MinH < 0 || c.MaxH < 0 {
		return errors.New(errors.ErrCodeInvalidItem, "constraints must not be negative")
	}
	if c.MaxW > 0 && c.MinW > c.MaxW {
		return errors.New(errors.ErrCodeInvalidItem, "min width %d exceeds max width %d", c.MinW, c.MaxW)
	}
	if c.MaxH > 0 && c.MinH > c.MaxH {
		return errors.New(errors.ErrCodeInvalidItem, "min height %d exceeds max height %d", c.MinH, c.MaxH)
	}
	return nil
}

// ClampSize brings a size into the constrained range. Dimensions never drop
// below 1 regardless of the constraints.
func (c Constraints) ClampSize(size grid.Size) grid.Size {
	if c.MinW > 0 && size.Width < c.MinW {
		size.Width = c.MinW
	}
	if c.MaxW > 0 && size.Width > c.MaxW {
		size.Width = c.MaxW
	}
	if c.MinH > 0 && size.Height < c.MinH {
		size.Height = c.MinH
	}
	if c.MaxH > 0 && size.Height > c.MaxH {
		size.Height = c.MaxH
	}
	if size.Width < 1 {
		size.Width = 1
	}
	if size.Height < 1 {
		size.Height = 1
	}
	return size
}

// Allows reports whether a size satisfies the constraints.
func (c Constraints) Allows(size grid.Size) bool {
	return c.ClampSize(size) == size
}

// Item is a placed rectangle with grid position, size, stacking order, and
// behavior flags. IDs are unique within a collection.
type Item struct {
	ID          string         `json:"id" bson:"id"`
	X           int            `json:"x" bson:"x"`
	Y           int            `json:"y" bson:"y"`
	Z           int            `json:"z" bson:"z"`
	Width       int            `json:"width" bson:"width"`
	Height      int            `json:"height" bson:"height"`
	Constraints Constraints    `json:"constraints,omitempty" bson:"constraints,omitempty"`
	Movable     bool           `json:"movable" bson:"movable"`
	Resizable   bool           `json:"resizable" bson:"resizable"`
	TypeTag     string         `json:"type" bson:"type"`
	Attributes  map[string]any `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// itemAlias mirrors Item with optional behavior flags so that absent fields
// default to true on decode, preserving "movable unless stated otherwise".
type itemAlias struct {
	ID          string         `json:"id"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Z           int            `json:"z"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Constraints Constraints    `json:"constraints,omitempty"`
	Movable     *bool          `json:"movable"`
	Resizable   *bool          `json:"resizable"`
	TypeTag     string         `json:"type"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// UnmarshalJSON decodes an item, defaulting Movable and Resizable to true
// when the fields are absent.
func (it *Item) UnmarshalJSON(data []byte) error {
	var a itemAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*it = Item{
		ID:          a.ID,
		X:           a.X,
		Y:           a.Y,
		Z:           a.Z,
		Width:       a.Width,
		Height:      a.Height,
		Constraints: a.Constraints,
		Movable:     true,
		Resizable:   true,
		TypeTag:     a.TypeTag,
		Attributes:  a.Attributes,
	}
	if a.Movable != nil {
		it.Movable = *a.Movable
	}
	if a.Resizable != nil {
		it.Resizable = *a.Resizable
	}
	return nil
}

// Pos returns the item's grid position.
func (it *Item) Pos() grid.Position { return grid.Position{X: it.X, Y: it.Y} }

// Dim returns the item's size in cells.
func (it *Item) Dim() grid.Size { return grid.Size{Width: it.Width, Height: it.Height} }

// Rect returns the item's placed rectangle.
func (it *Item) Rect() grid.Rect { return grid.Rect{Position: it.Pos(), Size: it.Dim()} }

// SetPos updates the item's grid position.
func (it *Item) SetPos(pos grid.Position) { it.X, it.Y = pos.X, pos.Y }

// SetDim updates the item's size.
func (it *Item) SetDim(size grid.Size) { it.Width, it.Height = size.Width, size.Height }

// Clone returns a deep copy of the item. Attribute values are copied
// shallowly; attribute maps are never shared between clones.
func (it *Item) Clone() *Item {
	out := *it
	if it.Attributes != nil {
		out.Attributes = make(map[string]any, len(it.Attributes))
		for k, v := range it.Attributes {
			out.Attributes[k] = v
		}
	}
	return &out
}

// Validate checks the item's structural invariants against a grid
// configuration: a safe ID, positive extents within the grid, constraint
// consistency, and a size that satisfies its own constraints.
func (it *Item) Validate(cfg grid.Config) error {
	if err := errors.ValidateItemID(it.ID); err != nil {
		return err
	}
	if it.Width < 1 || it.Height < 1 {
		return errors.New(errors.ErrCodeInvalidItem, "item %s has non-positive size %dx%d", it.ID, it.Width, it.Height)
	}
	if it.Width > cfg.Columns {
		return errors.New(errors.ErrCodeInvalidItem, "item %s width %d exceeds %d columns", it.ID, it.Width, cfg.Columns)
	}
	if !cfg.IsUnbounded() && it.Height > cfg.Rows {
		return errors.New(errors.ErrCodeInvalidItem, "item %s height %d exceeds %d rows", it.ID, it.Height, cfg.Rows)
	}
	if err := it.Constraints.Validate(); err != nil {
		return err
	}
	if !it.Constraints.Allows(it.Dim()) {
		return errors.New(errors.ErrCodeInvalidItem, "item %s size %dx%d violates its constraints", it.ID, it.Width, it.Height)
	}
	if !cfg.IsValidPosition(it.Pos(), it.Dim()) {
		return errors.New(errors.ErrCodeInvalidPlacement, "item %s at %s does not fit the grid", it.ID, it.Pos())
	}
	return nil
}

// Placed is the lightweight placement view of an item used by the packing
// and reflow algorithms. It carries no behavior flags or attributes.
type Placed struct {
	ID string
	grid.Rect
}

// PlacedFromItem extracts the placement view of an item.
func PlacedFromItem(it *Item) Placed {
	return Placed{ID: it.ID, Rect: it.Rect()}
}
