package engine

import (
	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/command"
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// Select adds an item to the selection (or replaces it, in single mode).
func (e *Engine) Select(id string) error {
	if _, ok := e.items[id]; !ok {
		return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
	}
	if e.selection.Contains(id) && e.selection.Primary() == id {
		return nil
	}
	return e.runner.Execute(e.selectionCommand("select "+id, func() {
		e.selection.Select(id)
	}))
}

// Deselect removes an item from the selection.
func (e *Engine) Deselect(id string) error {
	if !e.selection.Contains(id) {
		return nil
	}
	return e.runner.Execute(e.selectionCommand("deselect "+id, func() {
		e.selection.Deselect(id)
	}))
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() error {
	if e.selection.Len() == 0 {
		return nil
	}
	return e.runner.Execute(e.selectionCommand("clear selection", func() {
		e.selection.Clear()
	}))
}

// SetSelectionMode switches between single and multiple selection.
// Narrowing to single keeps only the primary item. Mode changes are not
// recorded in history.
func (e *Engine) SetSelectionMode(mode board.SelectionMode) {
	before := e.selection.Len()
	e.selection.SetMode(mode)
	if e.selection.Len() != before {
		e.emit(EventSelectionChanged, SelectionChangedEvent{IDs: e.selection.IDs()})
	}
}

// selectionCommand wraps a selection change so undo restores the exact
// previous selection, primary included.
func (e *Engine) selectionCommand(label string, change func()) command.Command {
	prevIDs := e.selection.IDs()
	prevPrimary := e.selection.Primary()

	return &command.Func{
		Label: label,
		Do: func() error {
			change()
			e.emit(EventSelectionChanged, SelectionChangedEvent{IDs: e.selection.IDs()})
			return nil
		},
		Revert: func() error {
			e.restoreSelection(prevIDs, prevPrimary)
			e.emit(EventSelectionChanged, SelectionChangedEvent{IDs: e.selection.IDs()})
			return nil
		},
	}
}

// restoreSelection rebuilds the selection, selecting the primary last so it
// wins primary status again.
func (e *Engine) restoreSelection(ids []string, primary string) {
	e.selection.Clear()
	for _, id := range ids {
		if id != primary {
			e.selection.Select(id)
		}
	}
	if primary != "" {
		e.selection.Select(primary)
	}
}

// applySelection replaces the whole selection with the given IDs, as one
// history entry. Unknown IDs are skipped.
func (e *Engine) applySelection(ids []string) error {
	return e.runner.Execute(e.selectionCommand("select region", func() {
		e.selection.Clear()
		for _, id := range ids {
			if _, ok := e.items[id]; ok {
				e.selection.Select(id)
			}
		}
	}))
}
