// Package spatial maintains an incremental cell-to-item occupancy index over
// the grid.
//
// The index answers collision queries in time proportional to the candidate
// footprint area rather than the total item count, which is what keeps
// interactive dragging responsive on large boards. It stores two maps that
// are always mutual inverses: cell → occupying item IDs, and item ID → the
// cells its rectangle covers. Every position or size change is a
// remove-then-add performed inside a single call, so no query can observe an
// intermediate state.
//
// The index is not safe for concurrent use; the engine owns it under its
// single-writer discipline.
package spatial

import (
	"sort"

	"github.com/kciter/pegboard-sub000/pkg/grid"
)

// Index tracks which grid cells each item occupies.
type Index struct {
	cells map[grid.Cell]map[string]struct{}
	items map[string][]grid.Cell
}

// NewIndex creates an empty spatial index.
func NewIndex() *Index {
	return &Index{
		cells: make(map[grid.Cell]map[string]struct{}),
		items: make(map[string][]grid.Cell),
	}
}

// Add registers an item footprint. If the ID is already present its previous
// footprint is replaced, making Add idempotent for re-registration.
func (idx *Index) Add(id string, pos grid.Position, size grid.Size) {
	if id == "" {
		return
	}
	if _, ok := idx.items[id]; ok {
		idx.removeCells(id)
	}

	cells := grid.Rect{Position: pos, Size: size}.Cells()
	idx.items[id] = cells
	for _, c := range cells {
		bucket := idx.cells[c]
		if bucket == nil {
			bucket = make(map[string]struct{})
			idx.cells[c] = bucket
		}
		bucket[id] = struct{}{}
	}
}

// Remove deletes an item from the index. Unknown IDs are a no-op.
func (idx *Index) Remove(id string) {
	if _, ok := idx.items[id]; !ok {
		return
	}
	idx.removeCells(id)
	delete(idx.items, id)
}

// Move updates an item footprint to a new position and size. It is exactly
// remove-then-add within a single call.
func (idx *Index) Move(id string, pos grid.Position, size grid.Size) {
	idx.Add(id, pos, size)
}

// Contains reports whether the index tracks the given item.
func (idx *Index) Contains(id string) bool {
	_, ok := idx.items[id]
	return ok
}

// Cells returns a copy of the cells the given item occupies, or nil if the
// item is not indexed.
func (idx *Index) Cells(id string) []grid.Cell {
	cells, ok := idx.items[id]
	if !ok {
		return nil
	}
	out := make([]grid.Cell, len(cells))
	copy(out, cells)
	return out
}

// Len returns the number of indexed items.
func (idx *Index) Len() int { return len(idx.items) }

// MaxRow returns the bottommost occupied row, or 0 when the index is empty.
// Placement uses it to bound spiral searches on unbounded grids.
func (idx *Index) MaxRow() int {
	max := 0
	for c := range idx.cells {
		if c.Y > max {
			max = c.Y
		}
	}
	return max
}

// HasCollision reports whether any indexed item other than exclude occupies
// a cell inside the candidate footprint. Cost is proportional to the
// footprint area.
func (idx *Index) HasCollision(pos grid.Position, size grid.Size, exclude string) bool {
	for _, c := range (grid.Rect{Position: pos, Size: size}).Cells() {
		for id := range idx.cells[c] {
			if id != exclude {
				return true
			}
		}
	}
	return false
}

// PotentialCollisions returns the IDs of every indexed item other than
// exclude that occupies a cell inside the candidate footprint. The result is
// sorted for deterministic iteration.
func (idx *Index) PotentialCollisions(pos grid.Position, size grid.Size, exclude string) []string {
	seen := make(map[string]struct{})
	for _, c := range (grid.Rect{Position: pos, Size: size}).Cells() {
		for id := range idx.cells[c] {
			if id != exclude {
				seen[id] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// removeCells drops an item's ID from every cell bucket it occupies,
// deleting buckets that become empty.
func (idx *Index) removeCells(id string) {
	for _, c := range idx.items[id] {
		bucket := idx.cells[c]
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(idx.cells, c)
		}
	}
}
