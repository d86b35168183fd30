package engine

import (
	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/spatial"
	"github.com/kciter/pegboard-sub000/pkg/zorder"
)

// Export captures the board as a serializable snapshot: the grid config and
// every item, sorted by ID for a stable byte representation.
func (e *Engine) Export() board.Snapshot {
	return board.Snapshot{
		Version: board.SnapshotVersion,
		Grid:    e.cfg,
		Items:   e.Items(),
	}
}

// Import replaces the whole board with a snapshot. The snapshot is validated
// first; a failed import leaves the current state untouched. A successful
// import normalizes duplicate z values, clears the selection and history,
// and emits grid:changed.
func (e *Engine) Import(snap board.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	for i := range snap.Items {
		if snap.Items[i].TypeTag == "" {
			continue
		}
		if _, err := e.registry.Lookup(snap.Items[i].TypeTag); err != nil {
			return err
		}
	}

	items := make(map[string]*board.Item, len(snap.Items))
	index := spatial.NewIndex()
	entries := make([]zorder.Entry, 0, len(snap.Items))
	for i := range snap.Items {
		it := snap.Items[i].Clone()
		items[it.ID] = it
		index.Add(it.ID, it.Pos(), it.Dim())
		entries = append(entries, zorder.Entry{ID: it.ID, Z: it.Z})
	}
	for _, a := range zorder.Normalize(entries) {
		items[a.ID].Z = a.Z
	}

	e.cfg = snap.Grid
	e.items = items
	e.index = index
	e.resolver.SetConfig(snap.Grid)
	e.resolver.SetIndex(index)
	e.selection.Clear()
	e.runner.Clear()
	e.machine.Cancel()

	e.emit(EventGridChanged, GridChangedEvent{Grid: snap.Grid})
	e.emit(EventSelectionChanged, SelectionChangedEvent{IDs: nil})
	e.logger.Info("snapshot imported", "items", len(items))
	return nil
}
