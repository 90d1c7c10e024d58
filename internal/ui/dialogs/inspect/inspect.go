// Package inspect provides a dialog showing a value as highlighted JSON.
package inspect

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/kpumuk/lazyscope/internal/ui/components/frame"
	"github.com/kpumuk/lazyscope/internal/ui/components/jsonview"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs"
)

// DialogID identifies the inspect dialog.
const DialogID dialogs.DialogID = "inspect"

// CopiedMsg reports the outcome of copying the document.
type CopiedMsg struct {
	Err error
}

// Styles holds the styles used by the dialog.
type Styles struct {
	Title  lipgloss.Style
	Border lipgloss.Style
	Muted  lipgloss.Style
	JSON   jsonview.Styles
}

// DefaultStyles returns default styles.
func DefaultStyles() Styles {
	return Styles{JSON: jsonview.DefaultStyles()}
}

// KeyMap defines the dialog bindings. Scrolling is handled by the view.
type KeyMap struct {
	Close key.Binding
	Copy  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Close: key.NewBinding(key.WithKeys("i", "q")),
		Copy:  key.NewBinding(key.WithKeys("y")),
	}
}

// Model defines state for the inspect dialog.
type Model struct {
	styles       Styles
	keys         KeyMap
	title        string
	view         jsonview.Model
	copy         func(string) error
	width        int
	height       int
	windowWidth  int
	windowHeight int
	row          int
	col          int
}

// Option configures the dialog.
type Option func(*Model)

// New creates an inspect dialog.
func New(opts ...Option) *Model {
	m := &Model{
		styles: DefaultStyles(),
		keys:   DefaultKeyMap(),
		title:  "Inspect",
		view:   jsonview.New(),
		copy:   clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.view.SetStyles(m.styles.JSON)
	return m
}

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithTitle sets the dialog title.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithValue sets the value shown, encoded as JSON.
func WithValue(v any) Option {
	return func(m *Model) { m.view.SetValue(v) }
}

// WithJSON sets an already encoded document.
func WithJSON(raw []byte) Option {
	return func(m *Model) { m.view.SetJSON(raw) }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.copy = write }
}

// Init implements dialogs.DialogModel.
func (m *Model) Init() tea.Cmd { return nil }

// Update handles input and dialog lifecycle.
func (m *Model) Update(msg tea.Msg) (dialogs.DialogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth, m.windowHeight = msg.Width, msg.Height
		m.applySize()
		return m, nil
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Close):
			return m, dialogs.Close
		case key.Matches(msg, m.keys.Copy):
			return m, m.copyCmd()
		}
	}
	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *Model) copyCmd() tea.Cmd {
	text, write := m.view.Text(), m.copy
	if text == "" || write == nil {
		return nil
	}
	return func() tea.Msg {
		if err := write(text); err != nil {
			return CopiedMsg{Err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return CopiedMsg{}
	}
}

// View renders the dialog.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	_, y := m.view.Offset()
	footer := fmt.Sprintf("%d/%d  y copy", min(y+1, m.view.LineCount()), m.view.LineCount())

	state := frame.StyleState{Title: m.styles.Title, Meta: m.styles.Muted, Border: m.styles.Border}
	box := frame.New(
		frame.WithStyles(frame.Styles{Focused: state, Blurred: state}),
		frame.WithTitle(m.title),
		frame.WithMeta("esc to close"),
		frame.WithFooter(footer),
		frame.WithContent(m.view.View()),
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

// Text returns the document shown.
func (m *Model) Text() string {
	return m.view.Text()
}

func (m *Model) applySize() {
	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return
	}
	m.width = max(m.windowWidth*4/5, min(m.windowWidth, 20))
	natural := m.view.LineCount() + 2
	m.height = max(min(natural, m.windowHeight*4/5), min(m.windowHeight, 4))
	m.row = (m.windowHeight - m.height) / 2
	m.col = (m.windowWidth - m.width) / 2
	m.view.SetSize(max(m.width-2, 0), max(m.height-2, 0))
}
