package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/command"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/place"
	"github.com/kciter/pegboard-sub000/pkg/registry"
)

// AddItem places a new item on the board and returns its ID, generating one
// when the given item's ID is empty. The requested position is resolved through
// the placement rules: accepted when free and in bounds, otherwise the
// nearest free slot is used. An unregistered type tag rejects the add before
// anything is mutated.
//
// Note: items built in code carry Go zero values, so set Movable and
// Resizable explicitly; only JSON decoding defaults them to true.
func (e *Engine) AddItem(spec board.Item) (string, error) {
	it := spec.Clone()
	if it.ID == "" {
		it.ID = uuid.NewString()
	} else if err := errors.ValidateItemID(it.ID); err != nil {
		return "", err
	}
	if _, exists := e.items[it.ID]; exists {
		return "", errors.New(errors.ErrCodeInvalidItem, "item %q already exists", it.ID)
	}
	if it.TypeTag != "" {
		if _, err := e.registry.Lookup(it.TypeTag); err != nil {
			return "", err
		}
	}
	if err := it.Constraints.Validate(); err != nil {
		return "", err
	}

	size := e.resolver.ClampSize(it.Dim(), it.Constraints)
	pos := it.Pos()
	if pos.X < 1 {
		pos.X = 1
	}
	if pos.Y < 1 {
		pos.Y = 1
	}
	resolved, err := e.resolver.Resolve(grid.Rect{Position: pos, Size: size}, it.Constraints, "", e.allowOverlap)
	if err != nil {
		return "", err
	}
	it.SetPos(resolved.Position)
	it.SetDim(resolved.Size)
	if it.Z == 0 {
		it.Z = e.maxZ() + 1
	}

	if err := e.runner.Execute(e.addCommand(it, "add "+it.ID)); err != nil {
		return "", err
	}
	e.callHook(*it, registry.Extension.Create)
	e.logger.Debug("item added", "id", it.ID, "pos", it.Pos(), "size", it.Dim())
	return it.ID, nil
}

// addCommand inserts a fully resolved item; its undo removes it again.
func (e *Engine) addCommand(it *board.Item, label string) command.Command {
	return &command.Func{
		Label: label,
		Do: func() error {
			e.items[it.ID] = it
			e.index.Add(it.ID, it.Pos(), it.Dim())
			e.emit(EventItemAdded, ItemAddedEvent{Item: *it.Clone()})
			return nil
		},
		Revert: func() error {
			delete(e.items, it.ID)
			e.index.Remove(it.ID)
			if e.selection.Contains(it.ID) {
				e.selection.Deselect(it.ID)
				e.emit(EventSelectionChanged, SelectionChangedEvent{IDs: e.selection.IDs()})
			}
			e.emit(EventItemRemoved, ItemRemovedEvent{ID: it.ID})
			return nil
		},
	}
}

// RemoveItem deletes an item from the board.
func (e *Engine) RemoveItem(id string) error {
	it, ok := e.items[id]
	if !ok {
		return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
	}
	keep := it.Clone()
	wasSelected := e.selection.Contains(id)

	cmd := &command.Func{
		Label: "remove " + id,
		Do: func() error {
			delete(e.items, id)
			e.index.Remove(id)
			if e.selection.Contains(id) {
				e.selection.Deselect(id)
				e.emit(EventSelectionChanged, SelectionChangedEvent{IDs: e.selection.IDs()})
			}
			e.emit(EventItemRemoved, ItemRemovedEvent{ID: id})
			return nil
		},
		Revert: func() error {
			restored := keep.Clone()
			e.items[id] = restored
			e.index.Add(id, restored.Pos(), restored.Dim())
			if wasSelected {
				e.selection.Select(id)
				e.emit(EventSelectionChanged, SelectionChangedEvent{IDs: e.selection.IDs()})
			}
			e.emit(EventItemAdded, ItemAddedEvent{Item: *restored.Clone()})
			return nil
		},
	}
	// A drag loses its subject when the item goes away; drop the stale
	// preview before the board changes underneath it.
	if e.machine.Dragging(id) {
		e.CancelInteraction()
	}

	if err := e.runner.Execute(cmd); err != nil {
		return err
	}
	e.callHook(*keep, registry.Extension.Destroy)
	e.logger.Debug("item removed", "id", id)
	return nil
}

// ItemUpdate is a partial item mutation; nil fields are left unchanged. A
// non-nil Attributes map replaces the existing attributes wholesale.
type ItemUpdate struct {
	TypeTag     *string            `json:"typeTag,omitempty"`
	Movable     *bool              `json:"movable,omitempty"`
	Resizable   *bool              `json:"resizable,omitempty"`
	Constraints *board.Constraints `json:"constraints,omitempty"`
	Attributes  map[string]any     `json:"attributes,omitempty"`
}

// UpdateItem applies a partial update. Tightened constraints clamp the
// item's size in place; the shrunken rectangle keeps its origin.
func (e *Engine) UpdateItem(id string, up ItemUpdate) error {
	old, ok := e.items[id]
	if !ok {
		return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
	}

	next := old.Clone()
	if up.TypeTag != nil && *up.TypeTag != old.TypeTag {
		if *up.TypeTag != "" {
			if _, err := e.registry.Lookup(*up.TypeTag); err != nil {
				return err
			}
		}
		next.TypeTag = *up.TypeTag
	}
	if up.Movable != nil {
		next.Movable = *up.Movable
	}
	if up.Resizable != nil {
		next.Resizable = *up.Resizable
	}
	if up.Constraints != nil {
		if err := up.Constraints.Validate(); err != nil {
			return err
		}
		next.Constraints = *up.Constraints
		next.SetDim(up.Constraints.ClampSize(next.Dim()))
	}
	if up.Attributes != nil {
		next.Attributes = make(map[string]any, len(up.Attributes))
		for k, v := range up.Attributes {
			next.Attributes[k] = v
		}
	}
	if err := next.Validate(e.cfg); err != nil {
		return err
	}
	if next.Dim() != old.Dim() && !e.allowOverlap && !e.resolver.IsFree(next.Pos(), next.Dim(), id) {
		return errors.New(errors.ErrCodeInvalidPlacement, "constrained size for %q collides", id)
	}

	prev := old.Clone()
	cmd := &command.Func{
		Label:  "update " + id,
		Do:     func() error { return e.swapItem(id, next) },
		Revert: func() error { return e.swapItem(id, prev) },
	}
	if err := e.runner.Execute(cmd); err != nil {
		return err
	}
	e.callHook(*next, registry.Extension.Update)
	return nil
}

// swapItem replaces an item's arena entry, keeping the index in step and
// emitting an update event.
func (e *Engine) swapItem(id string, it *board.Item) error {
	replacement := it.Clone()
	e.items[id] = replacement
	e.index.Move(id, replacement.Pos(), replacement.Dim())
	e.emit(EventItemUpdated, ItemUpdatedEvent{Item: *replacement.Clone()})
	return nil
}

// MoveItem relocates an item. When the target slot is occupied the engine
// applies the configured reflow policy if it can clear the slot, and
// otherwise falls back to the nearest free slot; the item's move and any
// neighbor displacements land in history as one entry.
func (e *Engine) MoveItem(id string, pos grid.Position) error {
	it, ok := e.items[id]
	if !ok {
		return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
	}
	if pos == it.Pos() {
		return nil
	}

	target := grid.Rect{Position: pos, Size: it.Dim()}
	var displacements []place.Displacement

	switch {
	case e.allowOverlap:
		resolved, err := e.resolver.Resolve(target, it.Constraints, id, true)
		if err != nil {
			return err
		}
		target = resolved
	case e.cfg.IsValidPosition(pos, it.Dim()) && e.resolver.IsFree(pos, it.Dim(), id):
		// Target is clean; take it as requested.
	case e.reflow != place.PolicyNone && e.cfg.IsValidPosition(pos, it.Dim()):
		res := place.CalculateReflow(e.cfg, id, it.Dim(), it.Pos(), pos, e.Placed(), e.reflow)
		if res.Success {
			displacements = res.Affected
			break
		}
		fallthrough
	default:
		resolved, err := e.resolver.Resolve(target, it.Constraints, id, false)
		if err != nil {
			return err
		}
		target = resolved
		displacements = nil
	}

	cmds := []command.Command{e.moveCommand(id, target.Position)}
	for _, d := range displacements {
		cmds = append(cmds, e.moveCommand(d.ID, d.To))
	}
	batch := &command.Batch{Label: "move " + id, Commands: cmds}
	if err := e.runner.Execute(batch); err != nil {
		return err
	}
	e.logger.Debug("item moved", "id", id, "to", target.Position, "displaced", len(displacements))
	return nil
}

// moveCommand repositions one item, capturing its current position for undo.
func (e *Engine) moveCommand(id string, to grid.Position) command.Command {
	var from grid.Position
	return &command.Func{
		Label: "move " + id,
		Do: func() error {
			it, ok := e.items[id]
			if !ok {
				return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
			}
			from = it.Pos()
			it.SetPos(to)
			e.index.Move(id, to, it.Dim())
			e.emit(EventItemMoved, ItemMovedEvent{Item: *it.Clone(), OldPosition: from})
			return nil
		},
		Revert: func() error {
			it, ok := e.items[id]
			if !ok {
				return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
			}
			old := it.Pos()
			it.SetPos(from)
			e.index.Move(id, from, it.Dim())
			e.emit(EventItemMoved, ItemMovedEvent{Item: *it.Clone(), OldPosition: old})
			return nil
		},
	}
}

// ResizeItem changes an item's size, anchored at its origin. The size is
// clamped to the item's constraints and the grid; a grown rectangle that
// collides is resolved through the reflow policy or rejected.
func (e *Engine) ResizeItem(id string, size grid.Size) error {
	it, ok := e.items[id]
	if !ok {
		return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
	}
	size = e.resolver.ClampSize(size, it.Constraints)
	if maxW := e.cfg.Columns - it.X + 1; size.Width > maxW {
		size.Width = maxW
	}
	if !e.cfg.IsUnbounded() {
		if maxH := e.cfg.Rows - it.Y + 1; size.Height > maxH {
			size.Height = maxH
		}
	}
	if size == it.Dim() {
		return nil
	}

	var displacements []place.Displacement
	if !e.allowOverlap && !e.resolver.IsFree(it.Pos(), size, id) {
		if e.reflow == place.PolicyNone {
			return errors.New(errors.ErrCodeInvalidPlacement, "resize of %q collides", id)
		}
		res := place.CalculateReflow(e.cfg, id, size, it.Pos(), it.Pos(), e.Placed(), e.reflow)
		if !res.Success {
			return errors.New(errors.ErrCodeInvalidPlacement, "resize of %q collides and reflow failed", id)
		}
		displacements = res.Affected
	}

	cmds := []command.Command{e.resizeCommand(id, size)}
	for _, d := range displacements {
		cmds = append(cmds, e.moveCommand(d.ID, d.To))
	}
	if err := e.runner.Execute(&command.Batch{Label: "resize " + id, Commands: cmds}); err != nil {
		return err
	}
	e.logger.Debug("item resized", "id", id, "size", size)
	return nil
}

// resizeCommand redimensions one item, capturing its current size for undo.
func (e *Engine) resizeCommand(id string, to grid.Size) command.Command {
	var from grid.Size
	return &command.Func{
		Label: "resize " + id,
		Do: func() error {
			it, ok := e.items[id]
			if !ok {
				return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
			}
			from = it.Dim()
			it.SetDim(to)
			e.index.Move(id, it.Pos(), to)
			e.emit(EventItemResized, ItemResizedEvent{Item: *it.Clone(), OldSize: from})
			return nil
		},
		Revert: func() error {
			it, ok := e.items[id]
			if !ok {
				return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
			}
			old := it.Dim()
			it.SetDim(from)
			e.index.Move(id, it.Pos(), from)
			e.emit(EventItemResized, ItemResizedEvent{Item: *it.Clone(), OldSize: old})
			return nil
		},
	}
}

// DuplicateItem clones an item into the nearest free slot and returns the
// copy's ID.
func (e *Engine) DuplicateItem(id string) (string, error) {
	src, ok := e.items[id]
	if !ok {
		return "", errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
	}
	dup := src.Clone()
	dup.ID = uuid.NewString()
	dup.Z = e.maxZ() + 1

	resolved, err := e.resolver.Resolve(dup.Rect(), dup.Constraints, "", e.allowOverlap)
	if err != nil {
		return "", err
	}
	dup.SetPos(resolved.Position)
	dup.SetDim(resolved.Size)

	if err := e.runner.Execute(e.addCommand(dup, "duplicate "+id)); err != nil {
		return "", err
	}
	e.callHook(*dup, registry.Extension.Create)
	return dup.ID, nil
}

// Transaction runs fn as one atomic group: every mutation it performs lands
// in history as a single entry that one Undo reverts, and an error from fn
// rolls all of them back in reverse order. Opening a transaction while
// another is in progress fails with NESTED_TRANSACTION.
func (e *Engine) Transaction(label string, fn func() error) error {
	return e.runner.Run(label, fn)
}

// Undo reverts the most recent history entry.
func (e *Engine) Undo() bool { return e.runner.Undo() }

// Redo re-applies the most recently undone entry.
func (e *Engine) Redo() bool { return e.runner.Redo() }

// callHook looks up the item's extension and runs one lifecycle hook. Hook
// failures are logged, never propagated: the board mutation they follow has
// already committed.
func (e *Engine) callHook(it board.Item, hook func(registry.Extension, context.Context, board.Item, any) error) {
	ext, err := e.registry.Lookup(it.TypeTag)
	if err != nil {
		return
	}
	if err := hook(ext, context.Background(), it, e.surface); err != nil {
		e.logger.Warn("extension hook failed", "id", it.ID, "type", it.TypeTag, "err", err)
	}
}
