// Package engine ties the grid, spatial index, placement, packing, z-order,
// command history, and interaction machinery into one board instance.
//
// An Engine exclusively owns its item collection. Callers mutate it only
// through the methods here, each of which runs as an invertible command;
// external renderers observe it through events and read-only copies. The
// engine is single-threaded by contract: all calls must come from one
// goroutine (or be serialized by the caller), matching the cooperative model
// of the interactive preview loop.
package engine

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/command"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/interact"
	"github.com/kciter/pegboard-sub000/pkg/place"
	"github.com/kciter/pegboard-sub000/pkg/registry"
	"github.com/kciter/pegboard-sub000/pkg/spatial"
)

// Options configure a new Engine.
type Options struct {
	// Grid is the board geometry. A zero value falls back to
	// grid.DefaultConfig.
	Grid grid.Config

	// AllowOverlap disables collision enforcement board-wide. Packing is
	// skipped while it is set.
	AllowOverlap bool

	// Reflow is the policy applied when a drag lands on occupied cells.
	Reflow place.Policy

	// SelectionMode defaults to single selection.
	SelectionMode board.SelectionMode

	// Lasso enables region selection on empty-area drags.
	Lasso bool

	// HistoryLimit caps the undo stack; zero means the default.
	HistoryLimit int

	// Surface is an opaque host value handed to every extension hook.
	Surface any

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Engine is one board instance.
type Engine struct {
	cfg       grid.Config
	items     map[string]*board.Item
	index     *spatial.Index
	resolver  *place.Resolver
	selection *board.Selection
	runner    *command.Runner
	registry  *registry.Registry
	machine   *interact.Machine

	allowOverlap bool
	reflow       place.Policy
	surface      any
	logger       *log.Logger

	subs    []subscriber
	nextSub int
}

// New creates an empty board.
func New(opts Options) (*Engine, error) {
	cfg := opts.Grid
	if cfg == (grid.Config{}) {
		cfg = grid.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Reflow == "" {
		opts.Reflow = place.PolicyNone
	}
	if !place.ValidPolicy(opts.Reflow) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown reflow policy %q", opts.Reflow)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	index := spatial.NewIndex()
	e := &Engine{
		cfg:          cfg,
		items:        make(map[string]*board.Item),
		index:        index,
		resolver:     place.NewResolver(cfg, index),
		selection:    board.NewSelection(opts.SelectionMode),
		runner:       command.NewRunner(opts.HistoryLimit),
		registry:     registry.NewRegistry(),
		allowOverlap: opts.AllowOverlap,
		reflow:       opts.Reflow,
		surface:      opts.Surface,
		logger:       logger,
	}
	e.machine = interact.NewMachine(e, interact.Options{
		Reflow:       opts.Reflow,
		AllowOverlap: opts.AllowOverlap,
		Lasso:        opts.Lasso,
	})
	return e, nil
}

// Registry returns the engine's extension registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// GridConfig returns the active grid geometry.
func (e *Engine) GridConfig() grid.Config { return e.cfg }

// AllowOverlap reports whether collision enforcement is disabled.
func (e *Engine) AllowOverlap() bool { return e.allowOverlap }

// Item returns a copy of the item with the given ID.
func (e *Engine) Item(id string) (board.Item, bool) {
	it, ok := e.items[id]
	if !ok {
		return board.Item{}, false
	}
	return *it.Clone(), true
}

// Items returns copies of every item, sorted by ID.
func (e *Engine) Items() []board.Item {
	out := make([]board.Item, 0, len(e.items))
	for _, it := range e.items {
		out = append(out, *it.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of items on the board.
func (e *Engine) Len() int { return len(e.items) }

// ItemAt returns the topmost item covering a cell.
func (e *Engine) ItemAt(cell grid.Cell) (board.Item, bool) {
	var best *board.Item
	for _, it := range e.items {
		r := it.Rect()
		if cell.X < r.X || cell.X > r.EndX() || cell.Y < r.Y || cell.Y > r.EndY() {
			continue
		}
		if best == nil || it.Z > best.Z || (it.Z == best.Z && it.ID < best.ID) {
			best = it
		}
	}
	if best == nil {
		return board.Item{}, false
	}
	return *best.Clone(), true
}

// PotentialCollisions returns the IDs of items overlapping the rectangle,
// excluding excludeID.
func (e *Engine) PotentialCollisions(pos grid.Position, size grid.Size, excludeID string) []string {
	return e.index.PotentialCollisions(pos, size, excludeID)
}

// Placed returns every item's current rectangle.
func (e *Engine) Placed() []board.Placed {
	out := make([]board.Placed, 0, len(e.items))
	for _, it := range e.items {
		out = append(out, board.PlacedFromItem(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SelectedIDs returns the current selection, sorted.
func (e *Engine) SelectedIDs() []string { return e.selection.IDs() }

// PrimarySelection returns the primary selected item ID, or "".
func (e *Engine) PrimarySelection() string { return e.selection.Primary() }

// History returns the undo history, oldest first.
func (e *Engine) History() []string { return e.runner.History() }

// CanUndo reports whether Undo would do anything.
func (e *Engine) CanUndo() bool { return e.runner.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (e *Engine) CanRedo() bool { return e.runner.CanRedo() }

// maxZ returns the highest z value on the board, or 0 when empty.
func (e *Engine) maxZ() int {
	max := 0
	first := true
	for _, it := range e.items {
		if first || it.Z > max {
			max = it.Z
			first = false
		}
	}
	return max
}
