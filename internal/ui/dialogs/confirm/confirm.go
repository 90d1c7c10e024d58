// Package confirm provides a yes/no dialog for destructive actions.
package confirm

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/kpumuk/lazyscope/internal/ui/components/frame"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs"
)

// DialogID identifies the confirmation dialog.
const DialogID dialogs.DialogID = "confirm"

// ActionMsg reports the answer. Target is the value given to WithTarget.
type ActionMsg struct {
	Confirmed bool
	Target    string
}

// Styles holds the styles used by the confirmation dialog.
type Styles struct {
	Title        lipgloss.Style
	Border       lipgloss.Style
	Text         lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
}

// DefaultStyles returns zero-value styles.
func DefaultStyles() Styles {
	return Styles{}
}

// KeyMap defines the dialog bindings.
type KeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Yes:    key.NewBinding(key.WithKeys("y")),
		No:     key.NewBinding(key.WithKeys("n")),
		Toggle: key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab", "shift+tab")),
		Submit: key.NewBinding(key.WithKeys("enter")),
	}
}

// Model defines state for the confirmation dialog component.
type Model struct {
	styles       Styles
	keys         KeyMap
	title        string
	message      string
	target       string
	yesLabel     string
	noLabel      string
	yesSelected  bool
	width        int
	height       int
	windowWidth  int
	windowHeight int
	row          int
	col          int
	padding      int
	minWidth     int
}

// Option configures the confirmation dialog.
type Option func(*Model)

// New creates a new confirmation dialog. "No" is selected initially.
func New(opts ...Option) *Model {
	m := &Model{
		styles:   DefaultStyles(),
		keys:     DefaultKeyMap(),
		title:    "Confirm",
		yesLabel: "Yes",
		noLabel:  "No",
		padding:  1,
		minWidth: 36,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithTitle sets the dialog title.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = strings.TrimSpace(title) }
}

// WithMessage sets the question.
func WithMessage(message string) Option {
	return func(m *Model) { m.message = strings.TrimSpace(message) }
}

// WithTarget sets the value returned with the answer.
func WithTarget(target string) Option {
	return func(m *Model) { m.target = target }
}

// WithLabels sets the button labels. Blank labels keep the defaults.
func WithLabels(yes, no string) Option {
	return func(m *Model) {
		if yes = strings.TrimSpace(yes); yes != "" {
			m.yesLabel = yes
		}
		if no = strings.TrimSpace(no); no != "" {
			m.noLabel = no
		}
	}
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
		case key.Matches(msg, m.keys.Yes):
			return m, m.answer(true)
		case key.Matches(msg, m.keys.No):
			return m, m.answer(false)
		case key.Matches(msg, m.keys.Toggle):
			m.yesSelected = !m.yesSelected
		case key.Matches(msg, m.keys.Submit):
			return m, m.answer(m.yesSelected)
		}
	}
	return m, nil
}

func (m *Model) answer(confirmed bool) tea.Cmd {
	action := ActionMsg{Confirmed: confirmed, Target: m.target}
	return tea.Batch(func() tea.Msg { return action }, dialogs.Close)
}

// View renders the confirmation dialog.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	contentWidth := max(m.width-2-2*m.padding, 1)
	lines := m.messageLines(contentWidth)
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, center(m.renderButtons(), contentWidth))

	state := frame.StyleState{Title: m.styles.Title, Meta: m.styles.Text, Border: m.styles.Border}
	box := frame.New(
		frame.WithStyles(frame.Styles{Focused: state, Blurred: state}),
		frame.WithTitle(m.title),
		frame.WithContent(strings.Join(lines, "\n")),
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

// YesSelected reports whether enter would confirm.
func (m *Model) YesSelected() bool {
	return m.yesSelected
}

func (m *Model) messageLines(width int) []string {
	if m.message == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(ansi.Wrap(m.message, width, " "), "\n") {
		out = append(out, m.styles.Text.Render(center(line, width)))
	}
	return out
}

func (m *Model) renderButtons() string {
	yes, no := m.styles.Button, m.styles.ButtonActive
	if m.yesSelected {
		yes, no = no, yes
	}
	return yes.Render("[ "+m.yesLabel+" ]") + "  " + no.Render("[ "+m.noLabel+" ]")
}

func (m *Model) applySize() {
	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return
	}
	width := min(max(m.windowWidth/2, m.minWidth), m.windowWidth-4)
	if width < 10 {
		width = min(m.windowWidth, 10)
	}
	contentLines := 1
	if n := len(m.messageLines(max(width-2-2*m.padding, 1))); n > 0 {
		contentLines += n + 1
	}
	m.width = width
	m.height = min(contentLines+2, max(m.windowHeight-2, 3))
	m.row = max((m.windowHeight-m.height)/2, 0)
	m.col = max((m.windowWidth-m.width)/2, 0)
}

func center(line string, width int) string {
	w := lipgloss.Width(line)
	if w >= width {
		return line
	}
	return strings.Repeat(" ", (width-w)/2) + line
}
