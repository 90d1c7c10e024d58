// Package help provides a keybindings help dialog.
package help

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/kpumuk/lazyscope/internal/mathutil"
	"github.com/kpumuk/lazyscope/internal/ui/components/frame"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs"
)

// DialogID identifies the help dialog.
const DialogID dialogs.DialogID = "help"

// Section groups bindings or free-form lines under a title.
type Section struct {
	Title    string
	Bindings []key.Binding
	Lines    []string
}

// Styles holds the styles used by the help dialog.
type Styles struct {
	Title   lipgloss.Style
	Border  lipgloss.Style
	Section lipgloss.Style
	Key     lipgloss.Style
	Desc    lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns zero-value styles.
func DefaultStyles() Styles {
	return Styles{}
}

// KeyMap defines the scrolling bindings of the dialog.
type KeyMap struct {
	Close    key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

// DefaultKeyMap returns the default help dialog bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Close:    key.NewBinding(key.WithKeys("?", "q")),
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "space")),
		Top:      key.NewBinding(key.WithKeys("home", "g")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G")),
	}
}

// Model defines state for the help dialog component.
type Model struct {
	styles       Styles
	keys         KeyMap
	sections     []Section
	width        int
	height       int
	windowWidth  int
	windowHeight int
	row          int
	col          int
	yOffset      int
	padding      int
	maxWidth     int
	columnGap    int
}

// Option configures the help dialog.
type Option func(*Model)

// New creates a new help dialog model.
func New(opts ...Option) *Model {
	m := &Model{
		styles:    DefaultStyles(),
		keys:      DefaultKeyMap(),
		padding:   1,
		maxWidth:  76,
		columnGap: 4,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.applySize()
	return m
}

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithSections sets the help sections.
func WithSections(sections []Section) Option {
	return func(m *Model) { m.sections = sections }
}

// WithKeyMap overrides the scrolling bindings.
func WithKeyMap(km KeyMap) Option {
	return func(m *Model) { m.keys = km }
}

// Init implements dialogs.DialogModel.
func (m *Model) Init() tea.Cmd { return nil }

// Update handles input and dialog lifecycle.
func (m *Model) Update(msg tea.Msg) (dialogs.DialogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth, m.windowHeight = msg.Width, msg.Height
		m.applySize()
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Close):
			return m, dialogs.Close
		case key.Matches(msg, m.keys.Up):
			m.scrollTo(m.yOffset - 1)
		case key.Matches(msg, m.keys.Down):
			m.scrollTo(m.yOffset + 1)
		case key.Matches(msg, m.keys.PageUp):
			m.scrollTo(m.yOffset - m.pageSize())
		case key.Matches(msg, m.keys.PageDown):
			m.scrollTo(m.yOffset + m.pageSize())
		case key.Matches(msg, m.keys.Top):
			m.scrollTo(0)
		case key.Matches(msg, m.keys.Bottom):
			m.scrollTo(m.maxOffset())
		}
	}
	return m, nil
}

// View renders the help dialog.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	lines := m.lines()
	visible := m.contentHeight()
	start := min(m.yOffset, len(lines))
	end := min(start+visible, len(lines))

	var footer string
	if len(lines) > visible {
		footer = ansi.Truncate(scrollHint(start, end, len(lines)), max(m.width-4, 0), "")
	}

	state := frame.StyleState{Title: m.styles.Title, Meta: m.styles.Muted, Border: m.styles.Border}
	box := frame.New(
		frame.WithStyles(frame.Styles{Focused: state, Blurred: state}),
		frame.WithTitle("Help"),
		frame.WithMeta("esc to close"),
		frame.WithFooter(footer),
		frame.WithContent(strings.Join(lines[start:end], "\n")),
		frame.WithPadding(m.padding),
		frame.WithSize(m.width, m.height),
		frame.WithFocused(true),
	)
	return box.View()
}

// Position returns the dialog position.
func (m *Model) Position() (int, int) {
	return m.row, m.col
}

// ID returns the dialog ID.
func (m *Model) ID() dialogs.DialogID {
	return DialogID
}

// Offset returns the first visible content line.
func (m *Model) Offset() int {
	return m.yOffset
}

func (m *Model) applySize() {
	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return
	}
	m.width = max(min(m.maxWidth, m.windowWidth-4), min(m.windowWidth, 10))
	natural := len(m.lines()) + 2
	m.height = max(min(natural, m.windowHeight-2), min(m.windowHeight, 3))
	m.row = max((m.windowHeight-m.height)/2, 0)
	m.col = max((m.windowWidth-m.width)/2, 0)
	m.scrollTo(m.yOffset)
}

func (m *Model) contentWidth() int {
	return max(m.width-2-2*m.padding, 1)
}

func (m *Model) contentHeight() int {
	return max(m.height-2, 0)
}

func (m *Model) pageSize() int {
	return max(m.contentHeight()-1, 1)
}

func (m *Model) maxOffset() int {
	return max(len(m.lines())-m.contentHeight(), 0)
}

func (m *Model) scrollTo(offset int) {
	m.yOffset = mathutil.Clamp(offset, 0, m.maxOffset())
}

// lines lays the sections out in two columns when each column can hold
// at least 20 cells, otherwise in one.
func (m *Model) lines() []string {
	width := m.contentWidth()
	if len(m.sections) == 0 {
		return []string{m.styles.Muted.Render("No key bindings.")}
	}
	columnWidth := (width - m.columnGap) / 2
	if columnWidth < 20 {
		return renderSections(m.sections, width, m.styles)
	}

	left, right := splitSections(m.sections)
	leftLines := renderSections(left, columnWidth, m.styles)
	rightLines := renderSections(right, columnWidth, m.styles)
	rows := max(len(leftLines), len(rightLines))
	out := make([]string, rows)
	gap := strings.Repeat(" ", m.columnGap)
	for i := range rows {
		var l, r string
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		out[i] = strings.TrimRight(padRight(l, columnWidth)+gap+r, " ")
	}
	return out
}

// splitSections keeps section order and starts the right column at the
// first section that begins past half of the rows.
func splitSections(sections []Section) (left, right []Section) {
	total := len(sections) - 1
	for _, s := range sections {
		total += sectionHeight(s)
	}
	used := 0
	for i, s := range sections {
		if i > 0 && used >= total/2 {
			return sections[:i], sections[i:]
		}
		if i > 0 {
			used++
		}
		used += sectionHeight(s)
	}
	return sections, nil
}

func sectionHeight(s Section) int {
	h := len(s.Lines)
	for _, b := range s.Bindings {
		if b.Enabled() && b.Help().Key != "" {
			h++
		}
	}
	if s.Title != "" {
		h++
	}
	return h
}

func renderSections(sections []Section, width int, styles Styles) []string {
	lines := make([]string, 0, len(sections)*4)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		if title := strings.TrimSpace(section.Title); title != "" {
			lines = append(lines, ansi.Truncate(styles.Section.Render(title), width, ""))
		}
		for _, line := range section.Lines {
			lines = append(lines, ansi.Truncate(styles.Muted.Render(line), width, ""))
		}

		keyWidth := 0
		for _, b := range section.Bindings {
			if b.Enabled() {
				keyWidth = max(keyWidth, ansi.StringWidth(b.Help().Key))
			}
		}
		for _, b := range section.Bindings {
			h := b.Help()
			if !b.Enabled() || h.Key == "" {
				continue
			}
			line := styles.Key.Render(padRight(h.Key, keyWidth))
			if h.Desc != "" {
				line += " " + styles.Desc.Render(h.Desc)
			}
			lines = append(lines, ansi.Truncate(line, width, ""))
		}
	}
	return lines
}

func scrollHint(start, end, total int) string {
	return fmt.Sprintf("%d-%d of %d", start+1, end, total)
}

func padRight(value string, width int) string {
	w := ansi.StringWidth(value)
	if w >= width {
		return ansi.Truncate(value, width, "")
	}
	return value + strings.Repeat(" ", width-w)
}
