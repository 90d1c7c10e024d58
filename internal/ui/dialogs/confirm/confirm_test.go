package confirm

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/golden"

	"github.com/kpumuk/lazyscope/internal/ui/dialogs"
)

func keyCode(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

func keyText(text string) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Text: text, Code: []rune(text)[0]})
}

func updateModel(t *testing.T, m *Model, msg tea.Msg) (*Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(*Model)
	if !ok {
		t.Fatalf("Update returned %T, want *Model", next)
	}
	return updated, cmd
}

func collectMsgs(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	switch m := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, collectMsgs(t, c)...)
		}
		return out
	default:
		return []tea.Msg{m}
	}
}

func newClearDialog() *Model {
	return New(
		WithTitle("Clear data"),
		WithMessage("Clear all samples?"),
		WithTarget("clear"),
	)
}

func TestConfirmAnswers(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		keys []tea.KeyPressMsg
		want bool
	}{
		"y":            {keys: []tea.KeyPressMsg{keyText("y")}, want: true},
		"n":            {keys: []tea.KeyPressMsg{keyText("n")}, want: false},
		"enter":        {keys: []tea.KeyPressMsg{keyCode(tea.KeyEnter)}, want: false},
		"toggle enter": {keys: []tea.KeyPressMsg{keyCode(tea.KeyTab), keyCode(tea.KeyEnter)}, want: true},
		"toggle twice": {keys: []tea.KeyPressMsg{keyCode(tea.KeyLeft), keyCode(tea.KeyRight), keyCode(tea.KeyEnter)}, want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			m := newClearDialog()
			var cmd tea.Cmd
			for _, k := range tc.keys {
				m, cmd = updateModel(t, m, k)
			}
			var action *ActionMsg
			var closed bool
			for _, msg := range collectMsgs(t, cmd) {
				switch msg := msg.(type) {
				case ActionMsg:
					action = &msg
				case dialogs.CloseDialogMsg:
					closed = true
				}
			}
			if action == nil || !closed {
				t.Fatalf("action = %v, closed = %v; want both", action, closed)
			}
			if action.Confirmed != tc.want || action.Target != "clear" {
				t.Fatalf("action = %+v, want Confirmed=%v Target=clear", *action, tc.want)
			}
		})
	}
}

func TestConfirmToggleTracksSelection(t *testing.T) {
	t.Parallel()

	m := newClearDialog()
	if m.YesSelected() {
		t.Fatal("yes selected initially")
	}
	m, cmd := updateModel(t, m, keyCode(tea.KeyTab))
	if !m.YesSelected() || cmd != nil {
		t.Fatalf("after tab: YesSelected = %v, cmd = %v", m.YesSelected(), cmd)
	}
}

func TestConfirmSizing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		width, height    int
		wantW, wantH     int
		wantRow, wantCol int
	}{
		{name: "wide", width: 80, height: 24, wantW: 40, wantH: 5, wantRow: 9, wantCol: 20},
		{name: "min width", width: 50, height: 24, wantW: 36, wantH: 5, wantRow: 9, wantCol: 7},
		{name: "short", width: 80, height: 5, wantW: 40, wantH: 3, wantRow: 1, wantCol: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, _ := updateModel(t, newClearDialog(), tea.WindowSizeMsg{Width: tt.width, Height: tt.height})
			row, col := m.Position()
			if m.width != tt.wantW || m.height != tt.wantH || row != tt.wantRow || col != tt.wantCol {
				t.Fatalf("geometry = %dx%d at (%d,%d), want %dx%d at (%d,%d)",
					m.width, m.height, row, col, tt.wantW, tt.wantH, tt.wantRow, tt.wantCol)
			}
		})
	}
}

func TestConfirmLabels(t *testing.T) {
	t.Parallel()

	m := New(WithLabels(" Clear ", ""))
	if m.yesLabel != "Clear" || m.noLabel != "No" {
		t.Fatalf("labels = %q/%q, want Clear/No", m.yesLabel, m.noLabel)
	}
}

func TestGoldenConfirmDialog(t *testing.T) {
	m, _ := updateModel(t, newClearDialog(), tea.WindowSizeMsg{Width: 80, Height: 24})
	golden.RequireEqual(t, []byte(ansi.Strip(m.View())))
}
