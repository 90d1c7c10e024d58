// Package devtools provides a quake-style diagnostics log.
package devtools

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kpumuk/lazyscope/internal/devtools"
	"github.com/kpumuk/lazyscope/internal/ui/components/frame"
	"github.com/kpumuk/lazyscope/internal/ui/components/table"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs"
)

// DialogID identifies the dev tools dialog.
const DialogID dialogs.DialogID = "devtools"

// Styles holds the styles used by the dev tools log.
type Styles struct {
	Title          lipgloss.Style
	Border         lipgloss.Style
	Text           lipgloss.Style
	Muted          lipgloss.Style
	Prompt         lipgloss.Style
	Placeholder    lipgloss.Style
	TableHeader    lipgloss.Style
	TableSelected  lipgloss.Style
	TableSeparator lipgloss.Style
}

// DefaultStyles returns zero-value styles.
func DefaultStyles() Styles {
	return Styles{}
}

// KeyMap defines the dialog bindings not handled by the log table.
type KeyMap struct {
	Close  key.Binding
	Filter key.Binding
	Toggle key.Binding
	Apply  key.Binding
	Clear  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Close:  key.NewBinding(key.WithKeys("d", "f12", "~")),
		Filter: key.NewBinding(key.WithKeys("/")),
		Toggle: key.NewBinding(key.WithKeys("tab", "shift+tab")),
		Apply:  key.NewBinding(key.WithKeys("enter")),
		Clear:  key.NewBinding(key.WithKeys("ctrl+u")),
	}
}

var logColumns = []table.Column{
	{Title: "#", Width: 5, Align: lipgloss.Right},
	{Title: "Time", Width: 12},
	{Title: "Origin", Width: 16},
	{Title: "Kind", Width: 8},
	{Title: "Dur", Width: 6, Align: lipgloss.Right},
	{Title: "Text"},
}

// Model defines state for the dev tools log.
type Model struct {
	styles       Styles
	keys         KeyMap
	title        string
	tracker      *devtools.Tracker
	table        table.Model
	input        textinput.Model
	inputFocused bool
	width        int
	height       int
	windowWidth  int
	windowHeight int
	padding      int
	minHeight    int
}

// Option configures the dev tools log.
type Option func(*Model)

// New creates a new dev tools log model.
func New(opts ...Option) *Model {
	m := &Model{
		styles:    DefaultStyles(),
		keys:      DefaultKeyMap(),
		title:     "Diagnostics",
		padding:   1,
		minHeight: 8,
		table: table.New(
			table.WithColumns(logColumns),
			table.WithEmptyMessage("Nothing recorded yet."),
			table.WithFollow(true),
		),
		input: textinput.New(),
	}
	m.input.Prompt = "filter> "
	m.input.Placeholder = "origin, kind or text"

	for _, opt := range opts {
		opt(m)
	}
	m.applyStyles()
	m.applySize()
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

// WithTracker sets the tracker whose entries are listed.
func WithTracker(tracker *devtools.Tracker) Option {
	return func(m *Model) { m.tracker = tracker }
}

// Init loads the current entries.
func (m *Model) Init() tea.Cmd {
	m.syncEntries()
	return nil
}

// Update handles input and dialog lifecycle.
func (m *Model) Update(msg tea.Msg) (dialogs.DialogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth, m.windowHeight = msg.Width, msg.Height
		m.applySize()
		return m, nil
	case tea.KeyPressMsg:
		if m.inputFocused {
			return m, m.updateInput(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Close):
			return m, dialogs.Close
		case key.Matches(msg, m.keys.Filter), key.Matches(msg, m.keys.Toggle):
			m.inputFocused = true
			return m, m.input.Focus()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Apply), key.Matches(msg, m.keys.Toggle):
		m.inputFocused = false
		m.input.Blur()
		return nil
	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		m.syncEntries()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncEntries()
	return cmd
}

// View renders the log.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	m.syncEntries()

	contentWidth, contentHeight := m.contentWidth(), m.contentHeight()
	m.input.SetWidth(max(contentWidth-lipgloss.Width(m.input.Prompt), 1))
	m.table.SetSize(contentWidth, max(contentHeight-2, 1))

	divider := m.styles.Muted.Render(strings.Repeat("─", contentWidth))
	content := strings.Join([]string{m.input.View(), divider, m.table.View()}, "\n")

	state := frame.StyleState{Title: m.styles.Title, Meta: m.styles.Muted, Border: m.styles.Border}
	box := frame.New(
		frame.WithStyles(frame.Styles{Focused: state, Blurred: state}),
		frame.WithTitle(m.title),
		frame.WithMeta(strconv.Itoa(m.table.RowCount())+"/"+strconv.Itoa(m.tracker.Len())),
		frame.WithContent(content),
		frame.WithPadding(m.padding),
		frame.WithSize(m.width, m.height),
		frame.WithFocused(true),
	)
	return box.View()
}

// Position docks the log at the top of the window.
func (m *Model) Position() (int, int) {
	return 0, 0
}

// ID returns the dialog ID.
func (m *Model) ID() dialogs.DialogID {
	return DialogID
}

// Filter returns the current filter text.
func (m *Model) Filter() string {
	return m.input.Value()
}

func (m *Model) applyStyles() {
	m.table.SetStyles(table.Styles{
		Text:      m.styles.Text,
		Muted:     m.styles.Muted,
		Header:    m.styles.TableHeader,
		Selected:  m.styles.TableSelected,
		Separator: m.styles.TableSeparator,
	})
	s := m.input.Styles()
	s.Focused.Text, s.Blurred.Text = m.styles.Text, m.styles.Text
	s.Focused.Prompt, s.Blurred.Prompt = m.styles.Prompt, m.styles.Prompt
	s.Focused.Placeholder, s.Blurred.Placeholder = m.styles.Placeholder, m.styles.Placeholder
	m.input.SetStyles(s)
}

func (m *Model) applySize() {
	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return
	}
	m.width = m.windowWidth
	m.height = max(min(max(m.windowHeight/2, m.minHeight), m.windowHeight-1), 1)
}

func (m *Model) contentWidth() int {
	return max(m.width-2-2*m.padding, 0)
}

func (m *Model) contentHeight() int {
	return max(m.height-2, 0)
}

func (m *Model) syncEntries() {
	filter := strings.ToLower(strings.TrimSpace(m.input.Value()))
	entries := m.tracker.LogEntries()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		kind := e.Entry.Kind.String()
		if filter != "" &&
			!strings.Contains(strings.ToLower(e.Origin), filter) &&
			!strings.Contains(kind, filter) &&
			!strings.Contains(strings.ToLower(e.Entry.Text), filter) {
			continue
		}
		seq := strconv.FormatUint(e.Seq, 10)
		var dur string
		if e.Entry.Duration > 0 {
			dur = devtools.FormatDuration(e.Entry.Duration)
		}
		rows = append(rows, table.Row{
			ID: seq,
			Cells: []string{
				seq,
				e.Time.Format("15:04:05.000"),
				e.Origin,
				kind,
				dur,
				strings.ReplaceAll(e.Entry.Text, "\n", " "),
			},
		})
	}
	m.table.SetRows(rows)
}
