package dialogs

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

type testDialog struct {
	id        DialogID
	initCalls int
	updates   []tea.Msg
	width     int
	height    int
	row       int
	col       int
	view      string
}

func (d *testDialog) Init() tea.Cmd {
	d.initCalls++
	return nil
}

func (d *testDialog) Update(msg tea.Msg) (DialogModel, tea.Cmd) {
	d.updates = append(d.updates, msg)
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		d.width = size.Width
		d.height = size.Height
	}
	return d, nil
}

func (d *testDialog) View() string {
	return d.view
}

func (d *testDialog) Position() (int, int) {
	return d.row, d.col
}

func (d *testDialog) ID() DialogID {
	return d.id
}

type closeDialog struct {
	testDialog
	closed bool
	msg    tea.Msg
}

func (d *closeDialog) Close() tea.Cmd {
	d.closed = true
	if d.msg == nil {
		return nil
	}
	return func() tea.Msg { return d.msg }
}

func TestStackOpenClose(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	stack, _ = stack.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	dialog := &testDialog{id: "a"}
	stack, _ = stack.Update(OpenDialogMsg{Model: dialog})

	if !stack.HasDialogs() {
		t.Fatal("expected dialogs to be present")
	}
	if dialog.initCalls != 1 {
		t.Fatalf("init calls = %d, want %d", dialog.initCalls, 1)
	}
	if dialog.width != 80 || dialog.height != 24 {
		t.Fatalf("dialog size = %dx%d, want 80x24", dialog.width, dialog.height)
	}
	if got := stack.ActiveDialogID(); got != "a" {
		t.Fatalf("active id = %q, want %q", got, "a")
	}

	stack, _ = stack.Update(CloseDialogMsg{})
	if stack.HasDialogs() {
		t.Fatal("expected dialogs to be closed")
	}
}

func TestStackReusesExistingDialog(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	stack, _ = stack.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	dialogA := &testDialog{id: "a"}
	dialogB := &testDialog{id: "b"}
	stack, _ = stack.Update(OpenDialogMsg{Model: dialogA})
	stack, _ = stack.Update(OpenDialogMsg{Model: dialogB})

	dialogA2 := &testDialog{id: "a"}
	stack, _ = stack.Update(OpenDialogMsg{Model: dialogA2})

	if got := stack.ActiveModel(); got != dialogA {
		t.Fatalf("active model = %p, want %p", got, dialogA)
	}
	if len(stack.Dialogs()) != 2 {
		t.Fatalf("dialogs len = %d, want %d", len(stack.Dialogs()), 2)
	}

	initCalls := dialogA.initCalls
	stack, _ = stack.Update(OpenDialogMsg{Model: dialogA})
	if dialogA.initCalls != initCalls {
		t.Fatalf("init calls = %d, want %d", dialogA.initCalls, initCalls)
	}
	if len(stack.Dialogs()) != 2 {
		t.Fatalf("dialogs len = %d, want %d", len(stack.Dialogs()), 2)
	}
}

func TestStackCloseCallback(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	dialog := &closeDialog{
		testDialog: testDialog{id: "close"},
		msg:        tea.QuitMsg{},
	}

	stack, _ = stack.Update(OpenDialogMsg{Model: dialog})
	_, cmd := stack.Update(CloseDialogMsg{})
	if !dialog.closed {
		t.Fatal("expected Close to be called")
	}
	if cmd == nil {
		t.Fatal("expected close cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("unexpected close message type %T", cmd())
	}
}

func TestStackForwardsUpdatesToActive(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	dialogA := &testDialog{id: "a"}
	dialogB := &testDialog{id: "b"}
	stack, _ = stack.Update(OpenDialogMsg{Model: dialogA})
	stack, _ = stack.Update(OpenDialogMsg{Model: dialogB})

	key := tea.KeyPressMsg(tea.Key{Text: "x", Code: 'x'})
	_, _ = stack.Update(key)

	if len(dialogA.updates) != 1 {
		t.Fatalf("dialogA updates = %d, want %d", len(dialogA.updates), 1)
	}
	if len(dialogB.updates) != 2 {
		t.Fatalf("dialogB updates = %d, want %d", len(dialogB.updates), 2)
	}
	if dialogB.updates[len(dialogB.updates)-1] != key {
		t.Fatalf("dialogB last update = %T, want key msg", dialogB.updates[len(dialogB.updates)-1])
	}
}


func TestStackEscClosesTopDialog(t *testing.T) {
	t.Parallel()

	s := NewStack()
	dialogA := &testDialog{id: "a"}
	dialogB := &testDialog{id: "b"}
	s, _ = s.Update(OpenDialogMsg{Model: dialogA})
	s, _ = s.Update(OpenDialogMsg{Model: dialogB})

	s, _ = s.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyEscape}))
	if got := s.ActiveDialogID(); got != "a" {
		t.Fatalf("active id = %q, want %q", got, "a")
	}
	for _, msg := range dialogB.updates {
		if _, ok := msg.(tea.KeyPressMsg); ok {
			t.Fatal("esc should not reach the closed dialog")
		}
	}

	// Without dialogs esc is ignored.
	s, _ = s.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyEscape}))
	s, cmd := s.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyEscape}))
	if s.HasDialogs() || cmd != nil {
		t.Fatalf("HasDialogs = %v, cmd = %v", s.HasDialogs(), cmd)
	}
}

func TestStackRenderPlacesDialogs(t *testing.T) {
	t.Parallel()

	s := NewStack()
	s, _ = s.Update(OpenDialogMsg{Model: &testDialog{id: "a", row: 1, col: 2, view: "ab"}})
	s, _ = s.Update(OpenDialogMsg{Model: &testDialog{id: "b", row: 2, col: 0, view: "xyz\nqq"}})

	bg := strings.Join([]string{"......", "......", "......", "......"}, "\n")
	got := ansi.Strip(s.Render(bg))
	want := strings.Join([]string{"......", "..ab..", "xyz...", "qq...."}, "\n")
	if got != want {
		t.Fatalf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestOpenCommand(t *testing.T) {
	t.Parallel()

	d := &testDialog{id: "a"}
	msg, ok := Open(d)().(OpenDialogMsg)
	if !ok || msg.Model != d {
		t.Fatalf("Open() produced %#v", msg)
	}
	if _, ok := Close().(CloseDialogMsg); !ok {
		t.Fatal("Close() did not produce CloseDialogMsg")
	}
}
