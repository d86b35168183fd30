package cli

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/engine"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/interact"
	"github.com/kciter/pegboard-sub000/pkg/pack"
	"github.com/kciter/pegboard-sub000/pkg/store"
)

// editCommand creates the edit command, which opens a board in the
// interactive terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <key>",
		Short: "Open a board in the interactive terminal editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			snap, found, err := loadOrEmpty(cmd, st, args[0], c.config)
			if err != nil {
				return err
			}
			eng, err := c.newEngine()
			if err != nil {
				return err
			}
			if found {
				if err := eng.Import(snap); err != nil {
					return err
				}
			}

			m := newEditorModel(cmd.Context(), eng, st, args[0])
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if em, ok := final.(editorModel); ok && em.dirty {
				printWarning("Unsaved changes discarded, press s before quitting to keep them")
			}
			return nil
		},
	}
}

// =============================================================================
// Editor model
// =============================================================================

// Editor styles.
var (
	styleCellFree    = lipgloss.NewStyle().Foreground(colorDim)
	styleCellCursor  = lipgloss.NewStyle().Bold(true).Reverse(true)
	styleCellInvalid = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorRed)
	styleCellLasso   = lipgloss.NewStyle().Foreground(colorCyan).Underline(true)
	styleStatusBar   = lipgloss.NewStyle().Foreground(colorGray)

	// Tile backgrounds cycle per item so neighbors stay distinguishable.
	tileColors = []lipgloss.Color{"24", "29", "58", "90", "95", "130", "60", "236"}
)

// editorModel is the bubbletea model for the board editor. All board
// mutations go through the engine, so undo and redo cover every edit made
// here.
type editorModel struct {
	ctx context.Context
	eng *engine.Engine
	st  store.Store
	key string

	cursor   grid.Cell
	dragPt   interact.Point // pointer position while an interaction is active
	strategy int            // index into pack.Strategies()

	status string
	dirty  bool
}

func newEditorModel(ctx context.Context, eng *engine.Engine, st store.Store, key string) editorModel {
	return editorModel{
		ctx:    ctx,
		eng:    eng,
		st:     st,
		key:    key,
		cursor: grid.Cell{X: 1, Y: 1},
		status: "ready",
	}
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		if m.eng.InteractionState() != interact.StateIdle {
			m.eng.CancelInteraction()
			m.status = "cancelled"
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		return m.step(0, -1), nil
	case "down", "j":
		return m.step(0, 1), nil
	case "left", "h":
		return m.step(-1, 0), nil
	case "right", "l":
		return m.step(1, 0), nil

	case "enter", " ":
		return m.grabOrDrop(false), nil
	case "r":
		return m.grabOrDrop(true), nil

	case "n":
		id, err := m.eng.AddItem(board.Item{
			X: m.cursor.X, Y: m.cursor.Y, Width: 2, Height: 2,
			Movable: true, Resizable: true,
		})
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dirty = true
		m.status = "added " + itemRef(id)
		return m, nil

	case "d":
		it, ok := m.eng.ItemAt(m.cursor)
		if !ok {
			m.status = "nothing here"
			return m, nil
		}
		if err := m.eng.RemoveItem(it.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dirty = true
		m.status = "removed " + itemRef(it.ID)
		return m, nil

	case "c":
		it, ok := m.eng.ItemAt(m.cursor)
		if !ok {
			m.status = "nothing here"
			return m, nil
		}
		id, err := m.eng.DuplicateItem(it.ID)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dirty = true
		m.status = "duplicated as " + itemRef(id)
		return m, nil

	case "f":
		if it, ok := m.eng.ItemAt(m.cursor); ok && m.eng.BringToFront(it.ID) {
			m.dirty = true
			m.status = itemRef(it.ID) + " to front"
		}
		return m, nil
	case "b":
		if it, ok := m.eng.ItemAt(m.cursor); ok && m.eng.SendToBack(it.ID) {
			m.dirty = true
			m.status = itemRef(it.ID) + " to back"
		}
		return m, nil

	case "a":
		strategies := pack.Strategies()
		strategy := strategies[m.strategy%len(strategies)]
		m.strategy++
		if err := m.eng.AutoArrange(strategy); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dirty = true
		m.status = "arranged " + string(strategy)
		return m, nil

	case "u":
		if m.eng.Undo() {
			m.dirty = true
			m.status = "undone"
		} else {
			m.status = "nothing to undo"
		}
		return m, nil
	case "ctrl+r":
		if m.eng.Redo() {
			m.dirty = true
			m.status = "redone"
		} else {
			m.status = "nothing to redo"
		}
		return m, nil

	case "s":
		if err := m.st.Save(m.ctx, m.key, m.eng.Export()); err != nil {
			m.status = "save failed: " + err.Error()
			return m, nil
		}
		m.dirty = false
		m.status = "saved " + m.key
		return m, nil
	}

	return m, nil
}

// step moves the cursor one cell, dragging the active interaction with it.
func (m editorModel) step(dx, dy int) editorModel {
	cfg := m.eng.GridConfig()
	next := grid.Cell{X: m.cursor.X + dx, Y: m.cursor.Y + dy}
	if next.X < 1 || next.X > cfg.Columns || next.Y < 1 {
		return m
	}
	if cfg.Rows > 0 && next.Y > cfg.Rows {
		return m
	}
	m.cursor = next

	if m.eng.InteractionState() != interact.StateIdle {
		m.dragPt.X += float64(dx) * cfg.PitchX()
		m.dragPt.Y += float64(dy) * cfg.PitchY()
		m.eng.Drag(m.dragPt)
	}
	return m
}

// grabOrDrop starts a move (or resize) of the item under the cursor, starts
// a lasso over empty space, or commits the interaction already in flight.
func (m editorModel) grabOrDrop(resize bool) editorModel {
	if state := m.eng.InteractionState(); state != interact.StateIdle {
		if err := m.eng.Release(); err != nil {
			m.status = err.Error()
			return m
		}
		if state == interact.StateLasso {
			m.status = "selected " + strconv.Itoa(len(m.eng.SelectedIDs())) + " item(s)"
			return m
		}
		m.dirty = true
		m.status = "dropped"
		return m
	}

	cfg := m.eng.GridConfig()
	it, ok := m.eng.ItemAt(m.cursor)
	if !ok {
		if !resize && m.eng.Press(cellCenter(cfg, m.cursor)) {
			m.dragPt = cellCenter(cfg, m.cursor)
			m.status = "selecting"
			return m
		}
		m.status = "nothing here"
		return m
	}

	pt := cellCenter(cfg, m.cursor)
	verb := "moving"
	if resize {
		pt = resizeCorner(cfg, it)
		verb = "resizing"
	}
	if !m.eng.Press(pt) {
		m.status = itemRef(it.ID) + " is locked"
		return m
	}
	m.dragPt = pt
	m.status = verb + " " + itemRef(it.ID)
	return m
}

func (m editorModel) View() string {
	cfg := m.eng.GridConfig()
	rows := cfg.Rows
	if rows <= 0 {
		rows = 12
		for _, it := range m.eng.Items() {
			if end := it.Y + it.Height + 1; end > rows {
				rows = end
			}
		}
	}

	// Cell ownership, preview replacing committed positions mid-drag.
	type cellOwner struct {
		id      string
		z       int
		preview bool
	}
	owners := make(map[grid.Cell]cellOwner)
	preview := m.eng.InteractionPreview()
	previewIDs := make(map[string]bool)
	if preview != nil {
		for _, p := range preview.Items {
			previewIDs[p.ID] = true
		}
	}
	for _, it := range m.eng.Items() {
		if previewIDs[it.ID] {
			continue
		}
		for _, cell := range it.Rect().Cells() {
			if cur, ok := owners[cell]; !ok || it.Z > cur.z {
				owners[cell] = cellOwner{id: it.ID, z: it.Z}
			}
		}
	}
	if preview != nil {
		for _, p := range preview.Items {
			for _, cell := range p.Cells() {
				owners[cell] = cellOwner{id: p.ID, preview: true}
			}
		}
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("pegboard · " + m.key))
	if m.dirty {
		b.WriteString(StyleWarning.Render(" *"))
	}
	b.WriteString("\n\n")

	for y := 1; y <= rows; y++ {
		for x := 1; x <= cfg.Columns; x++ {
			cell := grid.Cell{X: x, Y: y}
			owner, occupied := owners[cell]

			label := "· "
			style := styleCellFree
			if preview != nil && preview.Lasso != nil && preview.Lasso.Contains(cell) {
				style = styleCellLasso
			}
			if occupied {
				label = shortID(owner.id) + " "
				style = tileStyle(owner.id)
				if owner.preview {
					if preview != nil && !preview.Valid {
						style = styleCellInvalid
					} else {
						style = style.Bold(true)
					}
				}
			}
			if cell == m.cursor {
				style = styleCellCursor
			}
			b.WriteString(style.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleStatusBar.Render(m.status))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows move · enter grab/drop/lasso · r resize · n new · d delete · c copy · f/b z-order · a arrange · u/ctrl+r undo/redo · s save · q quit"))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// cellCenter maps a cell to the pixel at its center.
func cellCenter(cfg grid.Config, cell grid.Cell) interact.Point {
	return interact.Point{
		X: float64(cell.X-1)*cfg.PitchX() + cfg.CellWidth/2,
		Y: float64(cell.Y-1)*cfg.PitchY() + cfg.CellHeight/2,
	}
}

// resizeCorner maps an item to a pixel just inside its bottom-right corner,
// inside the resize handle band.
func resizeCorner(cfg grid.Config, it board.Item) interact.Point {
	right := float64(it.X-1)*cfg.PitchX() + float64(it.Width)*cfg.CellWidth + float64(it.Width-1)*cfg.Gap
	bottom := float64(it.Y-1)*cfg.PitchY() + float64(it.Height)*cfg.CellHeight + float64(it.Height-1)*cfg.Gap
	return interact.Point{X: right - 1, Y: bottom - 1}
}

// shortID trims an item ID to one display rune for the board cells.
func shortID(id string) string {
	for _, r := range id {
		return string(r)
	}
	return "?"
}

// itemRef trims an item ID for status messages; UUIDs keep their first block.
func itemRef(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 && i <= 8 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// tileStyle picks a stable background color for an item.
func tileStyle(id string) lipgloss.Style {
	var h uint32
	for i := 0; i < len(id); i++ {
		h = h*31 + uint32(id[i])
	}
	return lipgloss.NewStyle().
		Foreground(colorWhite).
		Background(tileColors[int(h)%len(tileColors)])
}
