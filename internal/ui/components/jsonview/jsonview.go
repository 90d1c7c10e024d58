// Package jsonview renders syntax-highlighted JSON in a scrollable
// viewport.
package jsonview

import (
	"bytes"
	"encoding/json"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/x/ansi"

	"github.com/kpumuk/lazyscope/internal/mathutil"
)

// Styles holds styles for JSON tokens.
type Styles struct {
	Text        lipgloss.Style
	Key         lipgloss.Style
	String      lipgloss.Style
	Number      lipgloss.Style
	Bool        lipgloss.Style
	Null        lipgloss.Style
	Punctuation lipgloss.Style
	Muted       lipgloss.Style
}

// DefaultStyles returns default styles.
func DefaultStyles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle(),
		Key:         lipgloss.NewStyle().Bold(true),
		String:      lipgloss.NewStyle(),
		Number:      lipgloss.NewStyle(),
		Bool:        lipgloss.NewStyle(),
		Null:        lipgloss.NewStyle().Faint(true),
		Punctuation: lipgloss.NewStyle(),
		Muted:       lipgloss.NewStyle().Faint(true),
	}
}

// KeyMap defines the scroll bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

// DefaultKeyMap returns the default scroll bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Left:     key.NewBinding(key.WithKeys("left", "h")),
		Right:    key.NewBinding(key.WithKeys("right", "l")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "space")),
		Top:      key.NewBinding(key.WithKeys("home", "g")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G")),
	}
}

type line struct {
	text   string
	tokens []chroma.Token
}

// Model is the JSON view component state.
type Model struct {
	styles  Styles
	keys    KeyMap
	width   int
	height  int
	lines   []line
	widest  int
	xOffset int
	yOffset int
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new JSON view model.
func New(opts ...Option) Model {
	m := Model{styles: DefaultStyles(), keys: DefaultKeyMap()}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithSize sets the dimensions.
func WithSize(width, height int) Option {
	return func(m *Model) { m.width, m.height = width, height }
}

// SetStyles sets the styles.
func (m *Model) SetStyles(s Styles) { m.styles = s }

// SetSize sets the dimensions.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.clamp()
}

// LineCount returns the number of lines.
func (m Model) LineCount() int { return len(m.lines) }

// MaxWidth returns the widest line.
func (m Model) MaxWidth() int { return m.widest }

// Text returns the document as displayed, without styling.
func (m Model) Text() string {
	texts := make([]string, len(m.lines))
	for i, l := range m.lines {
		texts[i] = l.text
	}
	return strings.Join(texts, "\n")
}

// Offset returns the scroll position.
func (m Model) Offset() (x, y int) { return m.xOffset, m.yOffset }

// SetValue shows value as indented JSON. A nil value clears the view.
func (m *Model) SetValue(value any) {
	if value == nil {
		m.setText("")
		return
	}
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		m.setText("{}\n  Error formatting JSON: " + err.Error())
		return
	}
	m.setText(string(b))
}

// SetJSON shows an already encoded document, re-indented.
func (m *Model) SetJSON(raw []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		m.setText(string(raw))
		return
	}
	m.setText(buf.String())
}

func (m *Model) setText(text string) {
	m.lines, m.widest = nil, 0
	m.xOffset, m.yOffset = 0, 0
	if text == "" {
		return
	}
	texts := strings.Split(text, "\n")
	tokens := tokenizeLines(text)
	if len(tokens) != len(texts) {
		tokens = nil
	}
	m.lines = make([]line, len(texts))
	for i, t := range texts {
		m.lines[i].text = t
		if tokens != nil {
			m.lines[i].tokens = tokens[i]
		}
		m.widest = max(m.widest, lipgloss.Width(t))
	}
}

// Update scrolls on key presses.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	page := max(m.height-1, 1)
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.yOffset--
	case key.Matches(keyMsg, m.keys.Down):
		m.yOffset++
	case key.Matches(keyMsg, m.keys.Left):
		m.xOffset -= 4
	case key.Matches(keyMsg, m.keys.Right):
		m.xOffset += 4
	case key.Matches(keyMsg, m.keys.PageUp):
		m.yOffset -= page
	case key.Matches(keyMsg, m.keys.PageDown):
		m.yOffset += page
	case key.Matches(keyMsg, m.keys.Top):
		m.xOffset, m.yOffset = 0, 0
	case key.Matches(keyMsg, m.keys.Bottom):
		m.yOffset = len(m.lines)
	}
	m.clamp()
	return m, nil
}

func (m *Model) clamp() {
	m.yOffset = mathutil.Clamp(m.yOffset, 0, max(len(m.lines)-m.height, 0))
	m.xOffset = mathutil.Clamp(m.xOffset, 0, max(m.widest-m.width, 0))
}

// View renders the visible window, exactly height lines of width cells.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	out := make([]string, m.height)
	for i := range out {
		if r := m.RenderLine(m.yOffset+i, m.xOffset, m.width); r != "" {
			out[i] = r
		} else {
			out[i] = strings.Repeat(" ", m.width)
		}
	}
	return strings.Join(out, "\n")
}

// RenderLine renders a single line with horizontal scroll and syntax
// highlighting.
func (m Model) RenderLine(index, offset, width int) string {
	if width <= 0 || index < 0 || index >= len(m.lines) {
		return ""
	}
	offset = max(offset, 0)
	l := m.lines[index]
	if l.tokens == nil {
		return m.styles.Text.Render(pad(ansi.Cut(l.text, offset, offset+width), width))
	}

	end := offset + width
	var b strings.Builder
	col := 0
	for _, token := range l.tokens {
		tokenWidth := lipgloss.Width(token.Value)
		start, stop := col, col+tokenWidth
		col = stop
		if stop <= offset || tokenWidth == 0 {
			continue
		}
		if start >= end {
			break
		}
		segment := ansi.Cut(token.Value,
			mathutil.Clamp(offset-start, 0, tokenWidth),
			mathutil.Clamp(end-start, 0, tokenWidth))
		b.WriteString(m.styleFor(token).Render(segment))
	}
	return pad(b.String(), width)
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func (m Model) styleFor(token chroma.Token) lipgloss.Style {
	switch {
	case token.Type == chroma.NameTag:
		return m.styles.Key
	case token.Type.InSubCategory(chroma.LiteralString):
		return m.styles.String
	case token.Type.InSubCategory(chroma.LiteralNumber):
		return m.styles.Number
	case token.Type.InCategory(chroma.Keyword):
		if token.Value == "null" {
			return m.styles.Null
		}
		return m.styles.Bool
	case token.Type == chroma.Punctuation:
		return m.styles.Punctuation
	default:
		return m.styles.Text
	}
}

// tokenizeLines lexes the document once and splits tokens at newlines.
func tokenizeLines(text string) [][]chroma.Token {
	if jsonLexer == nil {
		return nil
	}
	iterator, err := jsonLexer.Tokenise(nil, text)
	if err != nil {
		return nil
	}
	lines := [][]chroma.Token{nil}
	for _, token := range iterator.Tokens() {
		if token.Type == chroma.EOFType {
			break
		}
		for i, part := range strings.Split(token.Value, "\n") {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				lines[len(lines)-1] = append(lines[len(lines)-1], chroma.Token{Type: token.Type, Value: part})
			}
		}
	}
	return lines
}

var jsonLexer = func() chroma.Lexer {
	lexer := lexers.Get("json")
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}()
