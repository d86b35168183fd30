// Package interact turns a raw pointer stream into grid placement decisions.
//
// The host feeds Press/Move/Release/Cancel calls into a Machine; the machine
// answers with previews while the pointer is down and a Commit at release.
// It consults the board read-only; applying a Commit is the engine's job,
// which keeps the preview loop free of partial mutations.
package interact

import (
	"math"
	"sort"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/place"
)

// Point is a pointer position in the host's pixel coordinate space, with the
// board origin at (0,0).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State identifies what the machine is currently tracking.
type State int

const (
	// StateIdle means no interaction is in progress.
	StateIdle State = iota
	// StateMoving tracks a drag of one item or a selected group.
	StateMoving
	// StateResizing tracks an edge or corner drag on a single item.
	StateResizing
	// StateLasso tracks a region-selection drag over empty board space.
	StateLasso
)

// Handle is the set of edges a resize drag is pulling on. A corner drag sets
// two flags.
type Handle uint8

const (
	HandleLeft Handle = 1 << iota
	HandleRight
	HandleTop
	HandleBottom
)

// Host is the read-only board view the machine consults. The engine
// implements it over its item arena and spatial index.
type Host interface {
	// GridConfig returns the active grid geometry.
	GridConfig() grid.Config

	// Item returns the item with the given ID.
	Item(id string) (board.Item, bool)

	// ItemAt returns the topmost item covering a cell.
	ItemAt(cell grid.Cell) (board.Item, bool)

	// PotentialCollisions returns the IDs of items overlapping the rectangle,
	// excluding excludeID.
	PotentialCollisions(pos grid.Position, size grid.Size, excludeID string) []string

	// Placed returns every item's current rectangle.
	Placed() []board.Placed

	// SelectedIDs returns the current selection.
	SelectedIDs() []string
}

// Options tune a Machine. The zero value disables reflow and lasso selection
// and uses the default resize handle margin.
type Options struct {
	// Reflow is applied when a single-item drop lands on occupied cells.
	// Group moves never reflow; their candidates must be clean.
	Reflow place.Policy

	// AllowOverlap skips collision validation entirely; candidates are
	// checked against bounds only.
	AllowOverlap bool

	// Lasso enables region selection on empty-area drags.
	Lasso bool

	// HandleMargin is the edge band, in pixels, that starts a resize instead
	// of a move. Non-positive falls back to DefaultHandleMargin.
	HandleMargin float64
}

// DefaultHandleMargin is the resize handle band width in pixels.
const DefaultHandleMargin = 8

// Preview is the machine's answer to a Move tick: where the dragged items
// would land and whether releasing now would commit.
type Preview struct {
	// Items holds the candidate rectangle per dragged item.
	Items []board.Placed

	// Valid reports whether a release at this point commits.
	Valid bool

	// Reflow lists the neighbor displacements a commit would apply.
	Reflow []place.Displacement

	// Lasso is the selection rectangle in cell space while lasso-selecting;
	// nil otherwise.
	Lasso *grid.Rect
}

// Commit is what a successful Release hands to the engine to apply
// atomically: final rectangles for the dragged items, neighbor displacements
// from reflow, or a lasso selection result.
type Commit struct {
	Items  []board.Placed
	Reflow []place.Displacement
	Select []string
}

// Machine is the interaction state machine. It is single-threaded by
// contract, matching the engine's cooperative model.
type Machine struct {
	host Host
	opts Options

	state   State
	pressPt Point
	lastPt  Point

	// move/resize capture
	itemID     string
	start      board.Item
	handle     Handle
	groupStart []board.Placed // starting rects, pressed item first

	preview *Preview
}

// NewMachine creates an idle machine over the given board view.
func NewMachine(host Host, opts Options) *Machine {
	if opts.HandleMargin <= 0 {
		opts.HandleMargin = DefaultHandleMargin
	}
	return &Machine{host: host, opts: opts}
}

// State returns the current interaction state.
func (m *Machine) State() State { return m.state }

// Preview returns the latest preview, or nil when none has been computed.
func (m *Machine) Preview() *Preview { return m.preview }

// Dragging reports whether the item takes part in the move or resize in
// progress, as the pressed item or as a member of its drag group.
func (m *Machine) Dragging(id string) bool {
	if m.state != StateMoving && m.state != StateResizing {
		return false
	}
	if m.itemID == id {
		return true
	}
	for _, p := range m.groupStart {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Press starts an interaction at the given pointer position. It returns
// false when nothing interactable is under the pointer: a press on an
// immovable item, or on empty space with lasso selection disabled. A press
// while another interaction is in progress is ignored.
func (m *Machine) Press(pt Point) bool {
	if m.state != StateIdle {
		return false
	}
	cfg := m.host.GridConfig()
	cell := m.cellAt(pt)

	item, onItem := m.host.ItemAt(cell)
	if !onItem {
		if !m.opts.Lasso {
			return false
		}
		m.state = StateLasso
		m.pressPt = pt
		m.lastPt = pt
		m.preview = &Preview{Lasso: m.lassoRect(pt)}
		return true
	}

	// A handle press on a non-resizable item falls through to a move grab:
	// small footprints put every interior point inside the handle band, and
	// the item may still be movable.
	handle := m.handleAt(cfg, item, pt)
	if handle != 0 && item.Resizable {
		m.state = StateResizing
		m.itemID = item.ID
		m.start = item
		m.handle = handle
		m.pressPt = pt
		m.lastPt = pt
		m.preview = &Preview{Items: []board.Placed{{ID: item.ID, Rect: item.Rect()}}, Valid: true}
		return true
	}

	if !item.Movable {
		return false
	}
	m.state = StateMoving
	m.itemID = item.ID
	m.start = item
	m.pressPt = pt
	m.lastPt = pt
	m.groupStart = m.captureGroup(item)
	m.preview = &Preview{Items: m.groupStart, Valid: true}
	return true
}

// captureGroup snapshots the starting rectangles for a move: the pressed
// item alone, or every movable selected item when the pressed item is part
// of a multi-selection.
func (m *Machine) captureGroup(pressed board.Item) []board.Placed {
	group := []board.Placed{{ID: pressed.ID, Rect: pressed.Rect()}}

	selected := m.host.SelectedIDs()
	if len(selected) < 2 {
		return group
	}
	inSelection := false
	for _, id := range selected {
		if id == pressed.ID {
			inSelection = true
			break
		}
	}
	if !inSelection {
		return group
	}
	sort.Strings(selected)
	for _, id := range selected {
		if id == pressed.ID {
			continue
		}
		it, ok := m.host.Item(id)
		if !ok || !it.Movable {
			continue
		}
		group = append(group, board.Placed{ID: it.ID, Rect: it.Rect()})
	}
	return group
}

// Move advances the interaction to a new pointer position and returns the
// refreshed preview. It returns nil while idle.
func (m *Machine) Move(pt Point) *Preview {
	switch m.state {
	case StateLasso:
		m.lastPt = pt
		m.preview = &Preview{Lasso: m.lassoRect(pt)}
		return m.preview
	case StateMoving:
		m.lastPt = pt
		m.preview = m.movePreview(pt)
		return m.preview
	case StateResizing:
		m.lastPt = pt
		m.preview = m.resizePreview(pt)
		return m.preview
	}
	return nil
}

// Release ends the interaction. It returns the commit and true when the last
// preview was valid; otherwise false, meaning the caller keeps the original
// layout. Either way the machine returns to idle.
func (m *Machine) Release() (Commit, bool) {
	defer m.reset()

	switch m.state {
	case StateLasso:
		return Commit{Select: m.lassoHits()}, true
	case StateMoving, StateResizing:
		p := m.preview
		if p == nil || !p.Valid {
			return Commit{}, false
		}
		return Commit{Items: p.Items, Reflow: p.Reflow}, true
	}
	return Commit{}, false
}

// Cancel aborts any in-progress interaction without committing. It is safe
// to call while idle.
func (m *Machine) Cancel() { m.reset() }

func (m *Machine) reset() {
	m.state = StateIdle
	m.itemID = ""
	m.start = board.Item{}
	m.handle = 0
	m.groupStart = nil
	m.preview = nil
}

// movePreview computes candidate rectangles for the dragged group from the
// raw pointer delta. The delta is snapped to whole cells (round half up) and
// clamped so the pressed item stays in bounds; group members keep their
// relative offsets.
func (m *Machine) movePreview(pt Point) *Preview {
	cfg := m.host.GridConfig()

	dx := roundCells((pt.X - m.pressPt.X) / cfg.PitchX())
	dy := roundCells((pt.Y - m.pressPt.Y) / cfg.PitchY())
	dx, dy = m.clampDelta(cfg, dx, dy)

	items := make([]board.Placed, len(m.groupStart))
	for i, p := range m.groupStart {
		items[i] = board.Placed{ID: p.ID, Rect: grid.Rect{
			Position: grid.Position{X: p.X + dx, Y: p.Y + dy},
			Size:     p.Size,
		}}
	}

	pv := &Preview{Items: items}
	pv.Valid, pv.Reflow = m.validate(cfg, items, m.start.Pos(), items[0].Position)
	return pv
}

// clampDelta restricts the cell delta so the pressed item's candidate stays
// inside the grid.
func (m *Machine) clampDelta(cfg grid.Config, dx, dy int) (int, int) {
	p := m.groupStart[0]
	if x := p.X + dx; x < 1 {
		dx = 1 - p.X
	} else if max := cfg.Columns - p.Width + 1; x > max {
		dx = max - p.X
	}
	if y := p.Y + dy; y < 1 {
		dy = 1 - p.Y
	} else if !cfg.IsUnbounded() {
		if max := cfg.Rows - p.Height + 1; y > max {
			dy = max - p.Y
		}
	}
	return dx, dy
}

// resizePreview recomputes the item's rectangle from the pointer delta along
// the active handle's axes. The edge opposite each active handle stays
// anchored; the result is clamped to the item's constraints and the grid.
func (m *Machine) resizePreview(pt Point) *Preview {
	cfg := m.host.GridConfig()

	dx := roundCells((pt.X - m.pressPt.X) / cfg.PitchX())
	dy := roundCells((pt.Y - m.pressPt.Y) / cfg.PitchY())

	r := m.start.Rect()
	switch {
	case m.handle&HandleRight != 0:
		r.Width += dx
	case m.handle&HandleLeft != 0:
		r.Width -= dx
	}
	switch {
	case m.handle&HandleBottom != 0:
		r.Height += dy
	case m.handle&HandleTop != 0:
		r.Height -= dy
	}

	size := m.start.Constraints.ClampSize(grid.Size{Width: r.Width, Height: r.Height})
	if size.Width > cfg.Columns {
		size.Width = cfg.Columns
	}
	if !cfg.IsUnbounded() && size.Height > cfg.Rows {
		size.Height = cfg.Rows
	}

	// Re-anchor: dragging the left or top edge moves the origin so the
	// opposite edge stays fixed at its starting cell.
	pos := m.start.Pos()
	if m.handle&HandleLeft != 0 {
		pos.X = m.start.Rect().EndX() - size.Width + 1
	}
	if m.handle&HandleTop != 0 {
		pos.Y = m.start.Rect().EndY() - size.Height + 1
	}
	if pos.X < 1 {
		pos.X = 1
	}
	if pos.Y < 1 {
		pos.Y = 1
	}

	candidate := []board.Placed{{ID: m.itemID, Rect: grid.Rect{Position: pos, Size: size}}}
	pv := &Preview{Items: candidate}

	// A resize that only grows an unmoved edge has a zero positional delta,
	// which push-away would read as "push right". Bias the reported origin
	// along the grown edges so displaced neighbors move outward instead.
	from := m.start.Pos()
	if m.handle&HandleBottom != 0 && size.Height > m.start.Height {
		from.Y -= size.Height - m.start.Height
	}
	if m.handle&HandleRight != 0 && size.Width > m.start.Width {
		from.X -= size.Width - m.start.Width
	}

	pv.Valid, pv.Reflow = m.validate(cfg, candidate, from, pos)
	return pv
}

// validate checks every candidate rectangle for bounds and collisions.
// Collisions among group members are ignored; a single-item candidate that
// collides may still be valid when the reflow policy can clear its slot.
func (m *Machine) validate(cfg grid.Config, items []board.Placed, from, to grid.Position) (bool, []place.Displacement) {
	group := make(map[string]struct{}, len(items))
	for _, p := range items {
		group[p.ID] = struct{}{}
	}

	collided := false
	for _, p := range items {
		if !cfg.IsValidPosition(p.Position, p.Size) {
			return false, nil
		}
		if m.opts.AllowOverlap {
			continue
		}
		for _, id := range m.host.PotentialCollisions(p.Position, p.Size, p.ID) {
			if _, ours := group[id]; !ours {
				collided = true
			}
		}
	}
	if !collided {
		return true, nil
	}
	if len(items) > 1 || m.opts.Reflow == place.PolicyNone || m.opts.Reflow == "" {
		return false, nil
	}

	res := place.CalculateReflow(cfg, items[0].ID, items[0].Size, from, to, m.host.Placed(), m.opts.Reflow)
	if !res.Success {
		return false, res.Affected
	}
	return true, res.Affected
}

// lassoRect converts the press point and the current point into a cell-space
// selection rectangle.
func (m *Machine) lassoRect(pt Point) *grid.Rect {
	a := m.cellAt(m.pressPt)
	b := m.cellAt(pt)
	if b.X < a.X {
		a.X, b.X = b.X, a.X
	}
	if b.Y < a.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	return &grid.Rect{
		Position: grid.Position{X: a.X, Y: a.Y},
		Size:     grid.Size{Width: b.X - a.X + 1, Height: b.Y - a.Y + 1},
	}
}

// lassoHits returns the IDs of items whose rectangles intersect the lasso,
// sorted for determinism.
func (m *Machine) lassoHits() []string {
	sel := m.lassoRect(m.lastPt)
	var ids []string
	for _, p := range m.host.Placed() {
		if grid.RectsOverlap(*sel, p.Rect) {
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// cellAt maps a pixel point to the grid cell containing it, clamped into the
// grid. Points inside a gap belong to the preceding cell.
func (m *Machine) cellAt(pt Point) grid.Cell {
	cfg := m.host.GridConfig()
	cx := int(math.Floor(pt.X/cfg.PitchX())) + 1
	cy := int(math.Floor(pt.Y/cfg.PitchY())) + 1
	if cx < 1 {
		cx = 1
	}
	if cx > cfg.Columns {
		cx = cfg.Columns
	}
	if cy < 1 {
		cy = 1
	}
	if !cfg.IsUnbounded() && cy > cfg.Rows {
		cy = cfg.Rows
	}
	return grid.Cell{X: cx, Y: cy}
}

// handleAt reports which resize handle, if any, the point is pressing on:
// inside the item's pixel rectangle, within the margin band of an edge.
func (m *Machine) handleAt(cfg grid.Config, item board.Item, pt Point) Handle {
	left := float64(item.X-1) * cfg.PitchX()
	top := float64(item.Y-1) * cfg.PitchY()
	right := left + float64(item.Width)*cfg.CellWidth + float64(item.Width-1)*cfg.Gap
	bottom := top + float64(item.Height)*cfg.CellHeight + float64(item.Height-1)*cfg.Gap

	if pt.X < left || pt.X > right || pt.Y < top || pt.Y > bottom {
		return 0
	}

	var h Handle
	if pt.X-left <= m.opts.HandleMargin {
		h |= HandleLeft
	} else if right-pt.X <= m.opts.HandleMargin {
		h |= HandleRight
	}
	if pt.Y-top <= m.opts.HandleMargin {
		h |= HandleTop
	} else if bottom-pt.Y <= m.opts.HandleMargin {
		h |= HandleBottom
	}
	return h
}

// roundCells snaps a fractional cell delta to the nearest whole cell,
// rounding halves away from zero toward positive.
func roundCells(v float64) int {
	return int(math.Floor(v + 0.5))
}
