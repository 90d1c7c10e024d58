// Package statusbar renders the top status line: source state, sample
// counts, zoom and selection modes and the pointer read-out.
package statusbar

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kpumuk/lazyscope/internal/ui/format"
)

// Data holds the values shown in the bar.
type Data struct {
	Source    string
	Connected bool
	Paused    bool
	Channels  int
	Samples   int
	Dropped   uint64
	ZoomMode  string
	ScaleX    float64
	ScaleY    float64
	Selecting bool
	Surveying bool
	Async     bool
	InFlight  bool
	Readout   string
}

// UpdateMsg replaces the bar data.
type UpdateMsg struct {
	Data Data
}

// Styles holds the styles needed by the status bar.
type Styles struct {
	Bar   lipgloss.Style
	Fill  lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Warn  lipgloss.Style
}

// DefaultStyles returns default styles for the status bar.
func DefaultStyles() Styles {
	return Styles{
		Bar:   lipgloss.NewStyle(),
		Fill:  lipgloss.NewStyle(),
		Label: lipgloss.NewStyle().Faint(true),
		Value: lipgloss.NewStyle().Bold(true),
		Warn:  lipgloss.NewStyle().Bold(true),
	}
}

// Model defines state for the status bar component.
type Model struct {
	styles Styles
	data   Data
	width  int
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new status bar model.
func New(opts ...Option) Model {
	m := Model{styles: DefaultStyles()}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithWidth sets the width.
func WithWidth(w int) Option {
	return func(m *Model) { m.width = w }
}

// WithData sets the initial data.
func WithData(d Data) Option {
	return func(m *Model) { m.data = d }
}

// SetStyles sets the styles.
func (m *Model) SetStyles(s Styles) { m.styles = s }

// SetWidth sets the width.
func (m *Model) SetWidth(w int) { m.width = w }

// SetData sets the bar data.
func (m *Model) SetData(d Data) { m.data = d }

// Data returns the current data.
func (m Model) Data() Data { return m.data }

// Height returns the height of the status bar (always 1).
func (m Model) Height() int { return 1 }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(UpdateMsg); ok {
		m.data = msg.Data
	}
	return m, nil
}

type item struct {
	label string
	value string
	warn  bool
}

// items lists the bar entries in priority order; narrow terminals drop
// entries from the end.
func (m Model) items() []item {
	d := m.data
	state, warn := "live", false
	switch {
	case !d.Connected:
		state, warn = "offline", true
	case d.Paused:
		state, warn = "paused", true
	}
	render := "sync"
	if d.Async {
		render = "worker"
		if d.InFlight {
			render = "worker*"
		}
	}
	mode := "pan"
	switch {
	case d.Selecting:
		mode = "select"
	case d.Surveying:
		mode = "survey"
	}

	items := []item{
		{label: "Source: ", value: d.Source},
		{label: "State: ", value: state, warn: warn},
		{label: "Samples: ", value: format.ShortNumber(int64(d.Samples))},
		{label: "Channels: ", value: fmt.Sprintf("%d", d.Channels)},
		{label: "Zoom: ", value: fmt.Sprintf("%s x%s y%s", d.ZoomMode, format.Value(d.ScaleX), format.Value(d.ScaleY))},
		{label: "Mouse: ", value: mode},
		{label: "Render: ", value: render},
	}
	if d.Dropped > 0 {
		items = append(items, item{label: "Dropped: ", value: format.ShortNumber(int64(d.Dropped)), warn: true})
	}
	if d.Readout != "" {
		items = append(items, item{value: d.Readout})
	}
	return items
}

// View renders the status bar.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}
	pad := m.styles.Fill.Render(" ")
	sep := m.styles.Fill.Render(" ")

	var rendered []string
	used := 0
	for _, it := range m.items() {
		value := m.styles.Value.Render(it.value)
		if it.warn {
			value = m.styles.Warn.Render(it.value)
		}
		cell := pad + m.styles.Label.Render(it.label) + value + pad
		w := lipgloss.Width(cell)
		if len(rendered) > 0 {
			w++
		}
		if used+w > m.width {
			break
		}
		rendered = append(rendered, cell)
		used += w
	}

	content := strings.Join(rendered, sep)
	if gap := m.width - lipgloss.Width(content); gap > 0 {
		content += m.styles.Fill.Render(strings.Repeat(" ", gap))
	}
	return m.styles.Bar.Render(content)
}
