// Package zorder manages item stacking order.
//
// Z values are plain integers with no required contiguity. Front/back
// assignment extends the range (max+1 / min-1); the single-step operations
// first normalize duplicate z values to a contiguous 1..N sequence so that
// "the neighbor above/below" is well-defined, then swap with that neighbor.
package zorder

import "sort"

// Entry pairs an item ID with its z value. The engine supplies entry views
// and applies the returned assignments.
type Entry struct {
	ID string
	Z  int
}

// Assignment is a computed z change for one item.
type Assignment struct {
	ID string
	Z  int
}

// sortEntries orders entries by (z, id) ascending. The ID tiebreak keeps
// normalization stable in the presence of duplicate z values.
func sortEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// hasDuplicates reports whether any two entries share a z value.
func hasDuplicates(entries []Entry) bool {
	seen := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Z]; dup {
			return true
		}
		seen[e.Z] = struct{}{}
	}
	return false
}

// Normalize remaps the entries to a contiguous 1..N sequence preserving the
// (z, id) relative order. It returns only the assignments that change a
// value; an already-contiguous stack yields none.
func Normalize(entries []Entry) []Assignment {
	var out []Assignment
	for i, e := range sortEntries(entries) {
		if want := i + 1; e.Z != want {
			out = append(out, Assignment{ID: e.ID, Z: want})
		}
	}
	return out
}

// BringToFront assigns the target a z above every other entry. Returns nil
// if the ID is unknown.
func BringToFront(entries []Entry, id string) []Assignment {
	if !contains(entries, id) {
		return nil
	}
	max := entries[0].Z
	for _, e := range entries {
		if e.Z > max {
			max = e.Z
		}
	}
	return []Assignment{{ID: id, Z: max + 1}}
}

// SendToBack assigns the target a z below every other entry. Returns nil if
// the ID is unknown.
func SendToBack(entries []Entry, id string) []Assignment {
	if !contains(entries, id) {
		return nil
	}
	min := entries[0].Z
	for _, e := range entries {
		if e.Z < min {
			min = e.Z
		}
	}
	return []Assignment{{ID: id, Z: min - 1}}
}

// BringForward swaps the target's z with its immediate neighbor above in
// sorted order. Duplicate z values are normalized first so the neighbor is
// well-defined. A no-op (already topmost, or unknown ID) returns nil.
func BringForward(entries []Entry, id string) []Assignment {
	return swapWithNeighbor(entries, id, +1)
}

// SendBackward swaps the target's z with its immediate neighbor below in
// sorted order. A no-op (already bottommost, or unknown ID) returns nil.
func SendBackward(entries []Entry, id string) []Assignment {
	return swapWithNeighbor(entries, id, -1)
}

func swapWithNeighbor(entries []Entry, id string, dir int) []Assignment {
	if !contains(entries, id) {
		return nil
	}

	working := entries
	var normalized []Assignment
	if hasDuplicates(entries) {
		normalized = Normalize(entries)
		working = applied(entries, normalized)
	}

	ordered := sortEntries(working)
	idx := -1
	for i, e := range ordered {
		if e.ID == id {
			idx = i
			break
		}
	}
	neighbor := idx + dir
	if neighbor < 0 || neighbor >= len(ordered) {
		// Already at the extreme; normalization alone is not a reorder, so
		// report a no-op.
		return nil
	}

	a, b := ordered[idx], ordered[neighbor]
	out := normalized
	out = append(out, Assignment{ID: a.ID, Z: b.Z}, Assignment{ID: b.ID, Z: a.Z})
	return dedupe(out)
}

// applied returns a copy of entries with the assignments applied.
func applied(entries []Entry, assignments []Assignment) []Entry {
	byID := make(map[string]int, len(assignments))
	for _, a := range assignments {
		byID[a.ID] = a.Z
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if z, ok := byID[e.ID]; ok {
			e.Z = z
		}
		out[i] = e
	}
	return out
}

// dedupe keeps only the last assignment per ID, preserving first-seen order.
func dedupe(assignments []Assignment) []Assignment {
	last := make(map[string]int, len(assignments))
	for _, a := range assignments {
		last[a.ID] = a.Z
	}
	seen := make(map[string]struct{}, len(last))
	out := make([]Assignment, 0, len(last))
	for _, a := range assignments {
		if _, done := seen[a.ID]; done {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, Assignment{ID: a.ID, Z: last[a.ID]})
	}
	return out
}

func contains(entries []Entry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}
