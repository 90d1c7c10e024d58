// Package helpbar renders the bottom key hint line.
package helpbar

import (
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"
)

// Styles holds the styles needed by the help bar.
type Styles struct {
	Bar   lipgloss.Style
	Key   lipgloss.Style
	Item  lipgloss.Style
	Brand lipgloss.Style
}

// DefaultStyles returns default styles for the help bar.
func DefaultStyles() Styles {
	return Styles{
		Bar:   lipgloss.NewStyle(),
		Key:   lipgloss.NewStyle().Padding(0, 1),
		Item:  lipgloss.NewStyle().PaddingRight(1),
		Brand: lipgloss.NewStyle(),
	}
}

// Model defines state for the help bar component.
type Model struct {
	styles   Styles
	bindings []key.Binding
	brand    string
	width    int
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new help bar model.
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

// WithBindings sets the key bindings to advertise.
func WithBindings(b []key.Binding) Option {
	return func(m *Model) { m.bindings = b }
}

// WithBrand sets the label shown on the right.
func WithBrand(brand string) Option {
	return func(m *Model) { m.brand = brand }
}

// WithWidth sets the width.
func WithWidth(w int) Option {
	return func(m *Model) { m.width = w }
}

// SetWidth sets the width.
func (m *Model) SetWidth(w int) { m.width = w }

// Height returns the height of the help bar (always 1).
func (m Model) Height() int { return 1 }

// View renders the help bar. Bindings that do not fit are dropped from
// the end; the brand goes first.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}

	left := " "
	for _, b := range m.bindings {
		if !b.Enabled() || b.Help().Key == "" {
			continue
		}
		hint := m.styles.Key.Render(b.Help().Key) + m.styles.Item.Render(b.Help().Desc)
		if lipgloss.Width(left)+lipgloss.Width(hint) > m.width {
			break
		}
		left += hint
	}

	right := ""
	if m.brand != "" {
		right = m.styles.Brand.Render(m.brand) + " "
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		right, gap = "", m.width-lipgloss.Width(left)
	}
	return m.styles.Bar.Render(left + strings.Repeat(" ", max(gap, 0)) + right)
}
