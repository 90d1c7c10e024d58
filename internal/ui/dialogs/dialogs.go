// Package dialogs provides a dialog stack and message types.
package dialogs

import (
	"slices"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/kpumuk/lazyscope/internal/ui/layer"
)

// DialogID identifies a dialog instance.
type DialogID string

// DialogModel represents a dialog component that can be displayed.
type DialogModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (DialogModel, tea.Cmd)
	View() string
	Position() (int, int)
	ID() DialogID
}

// CloseCallback allows dialogs to perform cleanup when closed.
type CloseCallback interface {
	Close() tea.Cmd
}

// OpenDialogMsg is sent to open a new dialog.
type OpenDialogMsg struct {
	Model DialogModel
}

// CloseDialogMsg is sent to close the topmost dialog.
type CloseDialogMsg struct{}

// Open returns a command that opens m.
func Open(m DialogModel) tea.Cmd {
	return func() tea.Msg { return OpenDialogMsg{Model: m} }
}

// Close returns a command that closes the topmost dialog.
func Close() tea.Msg {
	return CloseDialogMsg{}
}

// Stack manages open dialogs. The last dialog is active and receives
// every message except window resizes, which go to all of them.
type Stack struct {
	width, height int
	dialogs       []DialogModel
	keys          KeyMap
}

// NewStack creates an empty dialog stack.
func NewStack() Stack {
	return Stack{keys: DefaultKeyMap()}
}

// Update handles dialog lifecycle and forwards messages to the active dialog.
func (s Stack) Update(msg tea.Msg) (Stack, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		cmds := make([]tea.Cmd, 0, len(s.dialogs))
		for i := range s.dialogs {
			var cmd tea.Cmd
			s.dialogs[i], cmd = s.dialogs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return s, tea.Batch(cmds...)
	case OpenDialogMsg:
		return s.open(msg.Model)
	case CloseDialogMsg:
		return s.closeTop()
	case tea.KeyPressMsg:
		if len(s.dialogs) > 0 && key.Matches(msg, s.keys.Close) {
			return s.closeTop()
		}
	}

	if len(s.dialogs) == 0 {
		return s, nil
	}
	top := len(s.dialogs) - 1
	var cmd tea.Cmd
	s.dialogs[top], cmd = s.dialogs[top].Update(msg)
	return s, cmd
}

// Render draws every dialog over bg, bottom first.
func (s Stack) Render(bg string) string {
	for _, d := range s.dialogs {
		row, col := d.Position()
		bg = layer.Place(bg, d.View(), col, row)
	}
	return bg
}

// Dialogs returns the open dialogs, bottom first.
func (s Stack) Dialogs() []DialogModel {
	return s.dialogs
}

// HasDialogs reports whether any dialog is open.
func (s Stack) HasDialogs() bool {
	return len(s.dialogs) > 0
}

// ActiveModel returns the topmost dialog or nil.
func (s Stack) ActiveModel() DialogModel {
	if len(s.dialogs) == 0 {
		return nil
	}
	return s.dialogs[len(s.dialogs)-1]
}

// ActiveDialogID returns the topmost dialog id or "".
func (s Stack) ActiveDialogID() DialogID {
	if m := s.ActiveModel(); m != nil {
		return m.ID()
	}
	return ""
}

func (s Stack) closeTop() (Stack, tea.Cmd) {
	if len(s.dialogs) == 0 {
		return s, nil
	}
	top := s.dialogs[len(s.dialogs)-1]
	s.dialogs = slices.Clone(s.dialogs[:len(s.dialogs)-1])
	if c, ok := top.(CloseCallback); ok {
		return s, c.Close()
	}
	return s, nil
}

func (s Stack) open(m DialogModel) (Stack, tea.Cmd) {
	if m == nil {
		return s, nil
	}
	if s.ActiveDialogID() == m.ID() {
		return s, nil
	}

	// A dialog already in the stack moves to the top and keeps its state.
	dialogs := slices.Clone(s.dialogs)
	if idx := slices.IndexFunc(dialogs, func(d DialogModel) bool { return d.ID() == m.ID() }); idx >= 0 {
		m = dialogs[idx]
		dialogs = slices.Delete(dialogs, idx, idx+1)
	}
	s.dialogs = append(dialogs, m)

	initCmd := m.Init()
	updated, sizeCmd := m.Update(tea.WindowSizeMsg{Width: s.width, Height: s.height})
	s.dialogs[len(s.dialogs)-1] = updated
	return s, tea.Batch(initCmd, sizeCmd)
}
