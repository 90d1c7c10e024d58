// Package errorpopup renders the box announcing a data source failure.
package errorpopup

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/kpumuk/lazyscope/internal/ui/components/frame"
)

const maxWidth = 60

// Styles holds the styles needed by the error popup.
type Styles struct {
	Title   lipgloss.Style
	Message lipgloss.Style
	Hint    lipgloss.Style
	Border  lipgloss.Style
}

// DefaultStyles returns default styles for the error popup.
func DefaultStyles() Styles {
	errorColor := lipgloss.Color("#FF0000")
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		Message: lipgloss.NewStyle(),
		Hint:    lipgloss.NewStyle().Faint(true),
		Border:  lipgloss.NewStyle().Foreground(errorColor),
	}
}

// Model defines state for the error popup component.
type Model struct {
	styles  Styles
	title   string
	message string
	hint    string
	count   int
	width   int
	height  int
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new error popup model.
func New(opts ...Option) Model {
	m := Model{
		styles: DefaultStyles(),
		title:  "Source Error",
		hint:   "esc to dismiss",
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

// WithSize sets the area the popup may occupy.
func WithSize(w, h int) Option {
	return func(m *Model) { m.width, m.height = w, h }
}

// WithMessage sets the error message.
func WithMessage(msg string) Option {
	return func(m *Model) { m.message, m.count = msg, 1 }
}

// WithTitle sets the title on the border.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// SetStyles sets the styles.
func (m *Model) SetStyles(s Styles) { m.styles = s }

// SetSize sets the area the popup may occupy.
func (m *Model) SetSize(w, h int) { m.width, m.height = w, h }

// Push shows msg. Errors arriving while one is shown replace it and are
// counted.
func (m *Model) Push(msg string) {
	if msg == "" {
		return
	}
	m.message = msg
	m.count++
}

// Dismiss hides the popup.
func (m *Model) Dismiss() {
	m.message, m.count = "", 0
}

// Message returns the current error message.
func (m Model) Message() string { return m.message }

// HasError returns true if there is an error message to display.
func (m Model) HasError() bool { return m.message != "" }

// View renders the popup box, or "" when there is nothing to show.
func (m Model) View() string {
	if m.message == "" || m.width < 6 || m.height < 3 {
		return ""
	}
	width := min(m.width, maxWidth)
	textWidth := width - 4

	lines := strings.Split(ansi.Wrap(m.message, textWidth, ""), "\n")
	for i, line := range lines {
		lines[i] = m.styles.Message.Render(line)
	}
	hint := m.hint
	if m.count > 1 {
		hint = ansi.Truncate(hint+" ("+strconv.Itoa(m.count-1)+" more)", textWidth, "…")
	}
	lines = append(lines, "", m.styles.Hint.Render(hint))

	height := min(len(lines)+2, m.height)
	box := frame.New(
		frame.WithStyles(frame.Styles{
			Focused: frame.StyleState{Title: m.styles.Title, Border: m.styles.Border},
			Blurred: frame.StyleState{Title: m.styles.Title, Border: m.styles.Border},
		}),
		frame.WithTitle(m.title),
		frame.WithPadding(1),
		frame.WithSize(width, height),
		frame.WithContent(strings.Join(lines, "\n")),
	)
	return box.View()
}

