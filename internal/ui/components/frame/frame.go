// Package frame renders a titled bordered box. The top border carries a
// title and a meta label, the bottom border an optional footer.
package frame

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// StyleState holds styles for a focus state.
type StyleState struct {
	Title  lipgloss.Style
	Meta   lipgloss.Style
	Border lipgloss.Style
}

// Styles holds focus-aware styles for a frame.
type Styles struct {
	Focused StyleState
	Blurred StyleState
}

// DefaultStyles returns default styles for a frame.
func DefaultStyles() Styles {
	state := StyleState{
		Title:  lipgloss.NewStyle().Bold(true),
		Meta:   lipgloss.NewStyle(),
		Border: lipgloss.NewStyle(),
	}
	return Styles{
		Focused: state,
		Blurred: state,
	}
}

// Model defines state for the frame component.
type Model struct {
	styles  Styles
	title   string
	meta    string
	footer  string
	content string
	width   int
	height  int
	padding int
	focused bool
	border  lipgloss.Border
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new frame model.
func New(opts ...Option) Model {
	m := Model{
		styles: DefaultStyles(),
		border: lipgloss.RoundedBorder(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithTitle sets the title.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithMeta sets the label on the right of the top border.
func WithMeta(meta string) Option {
	return func(m *Model) { m.meta = meta }
}

// WithFooter sets the label on the bottom border.
func WithFooter(footer string) Option {
	return func(m *Model) { m.footer = footer }
}

// WithContent sets the content.
func WithContent(content string) Option {
	return func(m *Model) { m.content = content }
}

// WithSize sets width and height, borders included.
func WithSize(width, height int) Option {
	return func(m *Model) { m.width, m.height = width, height }
}

// WithPadding sets horizontal padding inside the frame.
func WithPadding(padding int) Option {
	return func(m *Model) { m.padding = padding }
}

// WithFocused sets the focus state.
func WithFocused(focused bool) Option {
	return func(m *Model) { m.focused = focused }
}

// SetStyles sets the styles.
func (m *Model) SetStyles(s Styles) { m.styles = s }

// SetMeta sets the meta label.
func (m *Model) SetMeta(meta string) { m.meta = meta }

// SetFooter sets the footer label.
func (m *Model) SetFooter(footer string) { m.footer = footer }

// SetContent sets the content.
func (m *Model) SetContent(content string) { m.content = content }

// SetSize sets the width and height.
func (m *Model) SetSize(width, height int) { m.width, m.height = width, height }

// Width returns the current width.
func (m Model) Width() int { return m.width }

// Height returns the current height.
func (m Model) Height() int { return m.height }

// InnerSize returns the space available to content.
func (m Model) InnerSize() (width, height int) {
	return max(m.width-2-2*m.padding, 0), max(m.height-2, 0)
}

// View renders the frame with the current content.
func (m Model) View() string {
	if m.width < 2 || m.height < 2 {
		return ""
	}

	state := m.styles.Blurred
	if m.focused {
		state = m.styles.Focused
	}

	innerWidth := m.width - 2
	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderTop(state, innerWidth))
	lines = append(lines, m.renderBody(state, innerWidth, m.height-2)...)
	lines = append(lines, m.renderBottom(state, innerWidth))
	return strings.Join(lines, "\n")
}

func (m Model) renderTop(state StyleState, innerWidth int) string {
	hBar := m.border.Top
	if innerWidth < 2 {
		return state.Border.Render(m.border.TopLeft + strings.Repeat(hBar, innerWidth) + m.border.TopRight)
	}
	available := innerWidth - 2

	title := padLabel(m.title)
	meta := padLabel(m.meta)
	titleWidth, metaWidth := lipgloss.Width(title), lipgloss.Width(meta)
	if meta != "" {
		metaWidth += 2
	}
	if titleWidth+metaWidth > available {
		meta, metaWidth = "", 0
	}
	if available == 0 {
		title, titleWidth = "", 0
	} else if titleWidth > available {
		title = ansi.Truncate(title, available, "…")
		titleWidth = lipgloss.Width(title)
	}

	var b strings.Builder
	b.WriteString(state.Border.Render(m.border.TopLeft + hBar))
	b.WriteString(state.Title.Render(title))
	b.WriteString(state.Border.Render(strings.Repeat(hBar, max(available-titleWidth-metaWidth, 0))))
	if meta != "" {
		b.WriteString(state.Border.Render("╖") + state.Meta.Render(meta) + state.Border.Render("╓"))
	}
	b.WriteString(state.Border.Render(hBar + m.border.TopRight))
	return b.String()
}

func (m Model) renderBottom(state StyleState, innerWidth int) string {
	hBar := m.border.Bottom
	footer := padLabel(m.footer)
	footerWidth := lipgloss.Width(footer)
	if footer == "" || footerWidth > innerWidth-2 {
		return state.Border.Render(m.border.BottomLeft + strings.Repeat(hBar, innerWidth) + m.border.BottomRight)
	}
	return state.Border.Render(m.border.BottomLeft+hBar) +
		state.Meta.Render(footer) +
		state.Border.Render(strings.Repeat(hBar, innerWidth-1-footerWidth)+m.border.BottomRight)
}

func (m Model) renderBody(state StyleState, innerWidth, contentHeight int) []string {
	lines := strings.Split(m.content, "\n")
	body := make([]string, 0, contentHeight)
	vBar := state.Border.Render(m.border.Left)
	vBarRight := state.Border.Render(m.border.Right)
	for i := range contentHeight {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		body = append(body, vBar+padLine(line, innerWidth, m.padding)+vBarRight)
	}
	return body
}

func padLine(line string, width, padding int) string {
	if width <= 0 {
		return ""
	}
	if padding > 0 {
		spaces := strings.Repeat(" ", padding)
		line = spaces + line + spaces
	}
	line = ansi.Truncate(line, width, "")
	if w := lipgloss.Width(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return line
}

func padLabel(label string) string {
	if label == "" {
		return ""
	}
	return " " + label + " "
}
