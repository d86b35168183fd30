package engine

import (
	"github.com/kciter/pegboard-sub000/pkg/command"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/pack"
	"github.com/kciter/pegboard-sub000/pkg/zorder"
)

// BringToFront raises an item above every other. It returns false when the
// item is unknown or nothing changed.
func (e *Engine) BringToFront(id string) bool {
	return e.applyZ(id, "bring-to-front", zorder.BringToFront)
}

// SendToBack lowers an item below every other.
func (e *Engine) SendToBack(id string) bool {
	return e.applyZ(id, "send-to-back", zorder.SendToBack)
}

// BringForward swaps an item with the one directly above it. It is a no-op
// on the topmost item.
func (e *Engine) BringForward(id string) bool {
	return e.applyZ(id, "bring-forward", zorder.BringForward)
}

// SendBackward swaps an item with the one directly below it.
func (e *Engine) SendBackward(id string) bool {
	return e.applyZ(id, "send-backward", zorder.SendBackward)
}

func (e *Engine) applyZ(id, label string, fn func([]zorder.Entry, string) []zorder.Assignment) bool {
	assignments := fn(e.zEntries(), id)
	if len(assignments) == 0 {
		return false
	}

	prev := make(map[string]int, len(assignments))
	for _, a := range assignments {
		it, ok := e.items[a.ID]
		if !ok {
			return false
		}
		prev[a.ID] = it.Z
	}

	apply := func(z map[string]int) error {
		for id, v := range z {
			it, ok := e.items[id]
			if !ok {
				return errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
			}
			it.Z = v
			e.emit(EventItemUpdated, ItemUpdatedEvent{Item: *it.Clone()})
		}
		return nil
	}
	next := make(map[string]int, len(assignments))
	for _, a := range assignments {
		next[a.ID] = a.Z
	}

	name := label
	if id != "" {
		name += " " + id
	}
	cmd := &command.Func{
		Label:  name,
		Do:     func() error { return apply(next) },
		Revert: func() error { return apply(prev) },
	}
	if err := e.runner.Execute(cmd); err != nil {
		return false
	}
	return true
}

// NormalizeZOrder remaps duplicate z values to a contiguous 1..N sequence.
// It returns false when the order was already unambiguous.
func (e *Engine) NormalizeZOrder() bool {
	return e.applyZAssignments("normalize-z", zorder.Normalize(e.zEntries()))
}

func (e *Engine) applyZAssignments(label string, assignments []zorder.Assignment) bool {
	if len(assignments) == 0 {
		return false
	}
	// Reuse applyZ's command shape via a synthetic resolver.
	return e.applyZ("", label, func([]zorder.Entry, string) []zorder.Assignment {
		return assignments
	})
}

func (e *Engine) zEntries() []zorder.Entry {
	entries := make([]zorder.Entry, 0, len(e.items))
	for _, it := range e.items {
		entries = append(entries, zorder.Entry{ID: it.ID, Z: it.Z})
	}
	return entries
}

// AutoArrange repacks the whole board with the given strategy as a single
// history entry. It is skipped when overlap is allowed, since packing is
// meaningless once items may stack.
func (e *Engine) AutoArrange(strategy pack.Strategy) error {
	if e.allowOverlap {
		e.logger.Debug("auto-arrange skipped: overlap allowed")
		return nil
	}
	packed, err := pack.Pack(e.cfg, e.Placed(), strategy)
	if err != nil {
		return err
	}

	var cmds []command.Command
	for _, p := range packed {
		it, ok := e.items[p.ID]
		if !ok || it.Pos() == p.Position {
			continue
		}
		cmds = append(cmds, e.moveCommand(p.ID, p.Position))
	}
	if len(cmds) == 0 {
		return nil
	}
	if err := e.runner.Execute(&command.Batch{Label: "arrange " + string(strategy), Commands: cmds}); err != nil {
		return err
	}
	e.logger.Info("board arranged", "strategy", strategy, "moved", len(cmds))
	return nil
}

// SetGridConfig replaces the board geometry. The change is rejected when any
// item would fall outside the new bounds; arrange or resize first.
func (e *Engine) SetGridConfig(cfg grid.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, it := range e.items {
		if !cfg.IsValidPosition(it.Pos(), it.Dim()) {
			return errors.New(errors.ErrCodeInvalidGrid,
				"item %q at %s does not fit the new grid", it.ID, it.Pos())
		}
	}
	prev := e.cfg

	cmd := &command.Func{
		Label: "configure grid",
		Do: func() error {
			e.cfg = cfg
			e.resolver.SetConfig(cfg)
			e.emit(EventGridChanged, GridChangedEvent{Grid: cfg})
			return nil
		},
		Revert: func() error {
			e.cfg = prev
			e.resolver.SetConfig(prev)
			e.emit(EventGridChanged, GridChangedEvent{Grid: prev})
			return nil
		},
	}
	return e.runner.Execute(cmd)
}
