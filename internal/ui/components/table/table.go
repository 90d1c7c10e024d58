// Package table renders a scrollable table with a pinned header and a
// highlighted cursor row.
package table

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Column defines a table column. Width is the minimum; columns grow to
// fit their widest cell.
type Column struct {
	Title string
	Width int
	Align lipgloss.Position
}

// Row is one table row. ID keeps the cursor on the same row across
// updates.
type Row struct {
	ID    string
	Cells []string
}

// Styles holds the styles needed by the table.
type Styles struct {
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Header    lipgloss.Style
	Selected  lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns default styles for the table.
func DefaultStyles() Styles {
	return Styles{
		Text:      lipgloss.NewStyle(),
		Muted:     lipgloss.NewStyle().Faint(true),
		Header:    lipgloss.NewStyle().Bold(true),
		Selected:  lipgloss.NewStyle().Reverse(true),
		Separator: lipgloss.NewStyle().Faint(true),
	}
}

// KeyMap defines the navigation bindings.
type KeyMap struct {
	LineUp      key.Binding
	LineDown    key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	GotoTop     key.Binding
	GotoBottom  key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
}

// DefaultKeyMap returns the default navigation bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		LineUp:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		LineDown:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		GotoTop:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		GotoBottom:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		ScrollLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scroll left")),
		ScrollRight: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scroll right")),
	}
}

const scrollStep = 4

// Model defines state for the table component.
type Model struct {
	columns      []Column
	rows         []Row
	styles       Styles
	keys         KeyMap
	width        int
	height       int
	cursor       int
	yOffset      int
	xOffset      int
	follow       bool
	emptyMessage string
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new table model.
func New(opts ...Option) Model {
	m := Model{
		styles:       DefaultStyles(),
		keys:         DefaultKeyMap(),
		emptyMessage: "No data",
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.clamp()
	return m
}

// WithColumns sets the columns.
func WithColumns(cols []Column) Option {
	return func(m *Model) { m.columns = cols }
}

// WithRows sets the rows.
func WithRows(rows []Row) Option {
	return func(m *Model) { m.rows = rows }
}

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithKeyMap sets the navigation bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithWidth sets the width.
func WithWidth(w int) Option {
	return func(m *Model) { m.width = w }
}

// WithHeight sets the height, header included.
func WithHeight(h int) Option {
	return func(m *Model) { m.height = h }
}

// WithEmptyMessage sets the message shown when there are no rows.
func WithEmptyMessage(msg string) Option {
	return func(m *Model) { m.emptyMessage = msg }
}

// WithFollow keeps the cursor on the last row while it is there, so new
// rows scroll into view.
func WithFollow(follow bool) Option {
	return func(m *Model) { m.follow = follow }
}

// SetStyles sets the styles.
func (m *Model) SetStyles(s Styles) { m.styles = s }

// SetEmptyMessage sets the message shown when there are no rows.
func (m *Model) SetEmptyMessage(msg string) { m.emptyMessage = msg }

// SetSize sets the dimensions.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.clamp()
}

// SetRows replaces the rows. The cursor stays on the row with the same
// ID when it still exists.
func (m *Model) SetRows(rows []Row) {
	atEnd := m.cursor >= len(m.rows)-1
	var selectedID string
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		selectedID = m.rows[m.cursor].ID
	}
	m.rows = rows

	switch {
	case m.follow && atEnd:
		m.cursor = len(rows) - 1
	case selectedID != "":
		if i := slices.IndexFunc(rows, func(r Row) bool { return r.ID == selectedID }); i >= 0 {
			m.cursor = i
		}
	}
	m.clamp()
	m.ensureVisible()
}

// Rows returns the rows.
func (m Model) Rows() []Row { return m.rows }

// RowCount returns the number of rows.
func (m Model) RowCount() int { return len(m.rows) }

// Cursor returns the selected row index.
func (m Model) Cursor() int { return m.cursor }

// SetCursor selects row i.
func (m *Model) SetCursor(i int) {
	m.cursor = i
	m.clamp()
	m.ensureVisible()
}

// SelectedRow returns the selected row.
func (m Model) SelectedRow() (Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

// MoveUp moves the cursor up by n rows.
func (m *Model) MoveUp(n int) { m.SetCursor(m.cursor - n) }

// MoveDown moves the cursor down by n rows.
func (m *Model) MoveDown(n int) { m.SetCursor(m.cursor + n) }

// GotoTop selects the first row and resets horizontal scroll.
func (m *Model) GotoTop() {
	m.xOffset = 0
	m.SetCursor(0)
}

// GotoBottom selects the last row.
func (m *Model) GotoBottom() { m.SetCursor(len(m.rows) - 1) }

// ScrollLeft scrolls the content left.
func (m *Model) ScrollLeft() { m.xOffset = max(m.xOffset-scrollStep, 0) }

// ScrollRight scrolls the content right.
func (m *Model) ScrollRight() { m.xOffset = min(m.xOffset+scrollStep, m.maxXOffset()) }

// Update handles key messages for navigation and scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.LineUp):
		m.MoveUp(1)
	case key.Matches(keyMsg, m.keys.LineDown):
		m.MoveDown(1)
	case key.Matches(keyMsg, m.keys.PageUp):
		m.MoveUp(m.viewportHeight())
	case key.Matches(keyMsg, m.keys.PageDown):
		m.MoveDown(m.viewportHeight())
	case key.Matches(keyMsg, m.keys.GotoTop):
		m.GotoTop()
	case key.Matches(keyMsg, m.keys.GotoBottom):
		m.GotoBottom()
	case key.Matches(keyMsg, m.keys.ScrollLeft):
		m.ScrollLeft()
	case key.Matches(keyMsg, m.keys.ScrollRight):
		m.ScrollRight()
	}
	return m, nil
}

// View renders the header, the separator and the visible rows. With a
// height set the output has exactly that many lines.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}
	widths := m.columnWidths()
	total := m.totalWidth(widths)

	lines := []string{
		m.styles.Header.Render(applyHorizontalScroll(m.formatRow(m.headerCells(), widths), m.xOffset, m.width)),
		m.styles.Separator.Render(applyHorizontalScroll(strings.Repeat("─", total), m.xOffset, m.width)),
	}
	lines = append(lines, m.renderBody(widths, total)...)

	if m.height > 0 {
		for len(lines) < m.height {
			lines = append(lines, strings.Repeat(" ", m.width))
		}
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderBody(widths []int, total int) []string {
	if len(m.rows) == 0 {
		return []string{m.styles.Muted.Render(applyHorizontalScroll(m.emptyMessage, 0, m.width))}
	}
	end := len(m.rows)
	if m.height > 0 {
		end = min(m.yOffset+m.viewportHeight(), len(m.rows))
	}
	lines := make([]string, 0, end-m.yOffset)
	for i := m.yOffset; i < end; i++ {
		line := m.formatRow(m.rows[i].Cells, widths)
		if w := ansi.StringWidth(line); w < total {
			line += strings.Repeat(" ", total-w)
		}
		line = applyHorizontalScroll(line, m.xOffset, m.width)
		if i == m.cursor {
			line = m.styles.Selected.Render(ansi.Strip(line))
		} else {
			line = m.styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m Model) headerCells() []string {
	cells := make([]string, len(m.columns))
	for i, c := range m.columns {
		cells[i] = c.Title
	}
	return cells
}

func (m Model) columnWidths() []int {
	widths := make([]int, len(m.columns))
	for i, c := range m.columns {
		widths[i] = max(c.Width, ansi.StringWidth(c.Title))
	}
	for _, r := range m.rows {
		for i, cell := range r.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], ansi.StringWidth(cell))
			}
		}
	}
	return widths
}

func (m Model) totalWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total + max(len(widths)-1, 0)
}

// formatRow aligns cells to widths. A left-aligned last column is not
// padded.
func (m Model) formatRow(cells []string, widths []int) string {
	parts := make([]string, 0, len(widths))
	last := len(widths) - 1
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		gap := strings.Repeat(" ", max(w-ansi.StringWidth(cell), 0))
		switch {
		case m.columns[i].Align == lipgloss.Right:
			cell = gap + cell
		case i < last:
			cell += gap
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, " ")
}

func (m Model) viewportHeight() int {
	return max(m.height-2, 1)
}

func (m Model) maxXOffset() int {
	return max(m.totalWidth(m.columnWidths())-m.width, 0)
}

func (m *Model) clamp() {
	m.cursor = max(min(m.cursor, len(m.rows)-1), 0)
	m.xOffset = max(min(m.xOffset, m.maxXOffset()), 0)
	m.yOffset = max(min(m.yOffset, len(m.rows)-m.viewportHeight()), 0)
}

func (m *Model) ensureVisible() {
	vh := m.viewportHeight()
	if m.cursor < m.yOffset {
		m.yOffset = m.cursor
	} else if m.cursor >= m.yOffset+vh {
		m.yOffset = m.cursor - vh + 1
	}
}

// applyHorizontalScroll cuts a line to the visible window, keeping ANSI
// sequences intact and padding short lines.
func applyHorizontalScroll(line string, offset, visibleWidth int) string {
	if visibleWidth <= 0 {
		return ""
	}
	if offset > 0 {
		line = ansi.TruncateLeft(line, offset, "")
	}
	line = ansi.Truncate(line, visibleWidth, "")
	if w := ansi.StringWidth(line); w < visibleWidth {
		line += strings.Repeat(" ", visibleWidth-w)
	}
	return line
}
