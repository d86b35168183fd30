package board

import "sort"

// SelectionMode controls how many items may be selected at once.
type SelectionMode string

// Selection modes.
const (
	SelectSingle   SelectionMode = "single"
	SelectMultiple SelectionMode = "multiple"
)

// Selection tracks the selected item set and the primary item. The primary
// is always a member of the set whenever the set is non-empty.
type Selection struct {
	mode    SelectionMode
	primary string
	ids     map[string]struct{}
}

// NewSelection creates an empty selection with the given mode. An empty mode
// defaults to single selection.
func NewSelection(mode SelectionMode) *Selection {
	if mode == "" {
		mode = SelectSingle
	}
	return &Selection{mode: mode, ids: make(map[string]struct{})}
}

// Mode returns the selection mode.
func (s *Selection) Mode() SelectionMode { return s.mode }

// SetMode switches the selection mode. Narrowing to single keeps only the
// primary item.
func (s *Selection) SetMode(mode SelectionMode) {
	if mode != SelectSingle && mode != SelectMultiple {
		return
	}
	s.mode = mode
	if mode == SelectSingle && len(s.ids) > 1 {
		primary := s.primary
		s.Clear()
		s.Select(primary)
	}
}

// Select adds an item to the selection and makes it primary. In single mode
// the previous selection is replaced.
func (s *Selection) Select(id string) {
	if id == "" {
		return
	}
	if s.mode == SelectSingle {
		s.ids = make(map[string]struct{})
	}
	s.ids[id] = struct{}{}
	s.primary = id
}

// Deselect removes an item. If it was primary, another selected item (the
// smallest ID, for determinism) becomes primary.
func (s *Selection) Deselect(id string) {
	if _, ok := s.ids[id]; !ok {
		return
	}
	delete(s.ids, id)
	if s.primary != id {
		return
	}
	s.primary = ""
	for _, candidate := range s.IDs() {
		s.primary = candidate
		break
	}
}

// Clear removes every item and the primary.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
	s.primary = ""
}

// Contains reports whether an item is selected.
func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Primary returns the primary item ID, or empty when nothing is selected.
func (s *Selection) Primary() string { return s.primary }

// Len returns the number of selected items.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected IDs in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
