package table

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/ansi/parser"
	"github.com/charmbracelet/x/exp/golden"
)

func blankStyles() Styles {
	return Styles{
		Text:      lipgloss.NewStyle(),
		Muted:     lipgloss.NewStyle(),
		Header:    lipgloss.NewStyle(),
		Selected:  lipgloss.NewStyle(),
		Separator: lipgloss.NewStyle(),
	}
}

func row(id string, cells ...string) Row {
	return Row{ID: id, Cells: cells}
}

func keyCode(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

func keyText(text string) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Text: text, Code: []rune(text)[0]})
}

func numbered(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		id := string(rune('a' + i))
		rows[i] = row(id, id)
	}
	return rows
}

func TestApplyHorizontalScroll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		line         string
		offset       int
		visibleWidth int
		want         string
	}{
		{name: "NoOffset", line: "abcdef", offset: 0, visibleWidth: 4, want: "abcd"},
		{name: "OffsetWithinLine", line: "abcdef", offset: 2, visibleWidth: 4, want: "cdef"},
		{name: "OffsetBeyondLine", line: "abcdef", offset: 6, visibleWidth: 4, want: "    "},
		{name: "PadWhenShort", line: "abcdef", offset: 4, visibleWidth: 6, want: "ef    "},
		{name: "ZeroWidth", line: "abcdef", offset: 0, visibleWidth: 0, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := applyHorizontalScroll(tc.line, tc.offset, tc.visibleWidth); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestApplyHorizontalScroll_ANSIIntegrity(t *testing.T) {
	t.Parallel()

	line := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("abcdef")
	got := applyHorizontalScroll(line, 2, 3)
	if lipgloss.Width(got) != 3 {
		t.Fatalf("want width 3, got %d", lipgloss.Width(got))
	}
	if ansi.Strip(got) != "cde" {
		t.Fatalf("want cde, got %q", ansi.Strip(got))
	}

	p := ansi.NewParser()
	for i := range len(got) {
		p.Advance(got[i])
	}
	if p.State() != parser.GroundState {
		t.Fatalf("ANSI sequence left open in %q", got)
	}
}

func TestEmptyMessage(t *testing.T) {
	t.Parallel()

	m := New(
		WithColumns([]Column{{Title: "A", Width: 3}}),
		WithStyles(blankStyles()),
		WithWidth(12),
		WithEmptyMessage("Nothing here"),
	)
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 3 || lines[2] != "Nothing here" {
		t.Fatalf("unexpected view: %q", lines)
	}

	m.SetEmptyMessage("Nada")
	if !strings.Contains(m.View(), "Nada") {
		t.Fatalf("SetEmptyMessage did not apply")
	}
}

func TestColumnsGrowAndAlign(t *testing.T) {
	t.Parallel()

	m := New(
		WithColumns([]Column{
			{Title: "Name", Width: 2},
			{Title: "Value", Width: 3, Align: lipgloss.Right},
		}),
		WithRows([]Row{row("a", "alpha", "1"), row("b", "b", "12345678")}),
		WithStyles(blankStyles()),
		WithWidth(40),
	)
	lines := strings.Split(m.View(), "\n")
	want := []string{
		"Name     Value",
		"──────────────",
		"alpha        1",
		"b     12345678",
	}
	for i, w := range want {
		if got := strings.TrimRight(lines[i], " "); got != w {
			t.Fatalf("line %d = %q, want %q", i, got, w)
		}
	}
}

func TestUpdate_KeyHandling(t *testing.T) {
	t.Parallel()

	base := New(
		WithColumns([]Column{{Title: "A", Width: 1}, {Title: "B", Width: 10}}),
		WithRows(numbered(6)),
		WithStyles(blankStyles()),
		WithWidth(5),
		WithHeight(4),
	)

	tests := []struct {
		name       string
		start      int
		msg        tea.Msg
		wantCursor int
		wantX      int
	}{
		{name: "down", start: 0, msg: keyCode(tea.KeyDown), wantCursor: 1},
		{name: "j", start: 0, msg: keyText("j"), wantCursor: 1},
		{name: "up clamps", start: 0, msg: keyCode(tea.KeyUp), wantCursor: 0},
		{name: "k", start: 2, msg: keyText("k"), wantCursor: 1},
		{name: "page down", start: 0, msg: keyCode(tea.KeyPgDown), wantCursor: 2},
		{name: "end", start: 0, msg: keyCode(tea.KeyEnd), wantCursor: 5},
		{name: "G", start: 1, msg: keyText("G"), wantCursor: 5},
		{name: "g", start: 4, msg: keyText("g"), wantCursor: 0},
		{name: "right", start: 0, msg: keyCode(tea.KeyRight), wantX: 4},
		{name: "ignored", start: 3, msg: tea.WindowSizeMsg{Width: 1}, wantCursor: 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := base
			m.SetCursor(tc.start)
			m, _ = m.Update(tc.msg)
			if m.Cursor() != tc.wantCursor {
				t.Fatalf("cursor = %d, want %d", m.Cursor(), tc.wantCursor)
			}
			if m.xOffset != tc.wantX {
				t.Fatalf("xOffset = %d, want %d", m.xOffset, tc.wantX)
			}
		})
	}
}

func TestSelectionKeepsVisible(t *testing.T) {
	t.Parallel()

	m := New(
		WithColumns([]Column{{Title: "A", Width: 1}}),
		WithRows(numbered(5)),
		WithStyles(blankStyles()),
		WithWidth(10),
		WithHeight(4),
	)
	m.MoveDown(3)
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 4 {
		t.Fatalf("want 4 lines, got %d", len(lines))
	}
	if strings.TrimSpace(lines[2]) != "c" || strings.TrimSpace(lines[3]) != "d" {
		t.Fatalf("unexpected visible rows: %q", lines[2:])
	}
}

func TestScrollRightClamps(t *testing.T) {
	t.Parallel()

	m := New(
		WithColumns([]Column{{Title: "A", Width: 1}, {Title: "B", Width: 1}}),
		WithRows([]Row{row("1", "x", "abcdefg")}),
		WithStyles(blankStyles()),
		WithWidth(5),
	)
	m.ScrollRight()
	m.ScrollRight()
	if m.xOffset != 4 {
		t.Fatalf("xOffset = %d, want 4", m.xOffset)
	}
	m.ScrollLeft()
	m.ScrollLeft()
	if m.xOffset != 0 {
		t.Fatalf("xOffset = %d, want 0", m.xOffset)
	}
}

func TestSetRows_ClampsCursor(t *testing.T) {
	t.Parallel()

	m := New(WithColumns([]Column{{Title: "A", Width: 1}}), WithRows(numbered(3)), WithWidth(10), WithHeight(4))
	m.SetCursor(2)
	m.SetRows([]Row{row("z", "1")})
	if m.Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0", m.Cursor())
	}
}

func TestSetRows_PreservesSelectionByID(t *testing.T) {
	t.Parallel()

	m := New(WithColumns([]Column{{Title: "A", Width: 1}}), WithRows(numbered(2)), WithWidth(10), WithHeight(4))
	m.SetCursor(0)
	m.SetRows([]Row{row("x", "x"), row("a", "a"), row("b", "b")})
	if r, ok := m.SelectedRow(); !ok || r.ID != "a" {
		t.Fatalf("selected %+v, want row a", r)
	}
}

func TestFollowTracksNewRows(t *testing.T) {
	t.Parallel()

	m := New(
		WithColumns([]Column{{Title: "A", Width: 1}}),
		WithFollow(true),
		WithWidth(10),
		WithHeight(4),
	)
	m.SetRows(numbered(3))
	if m.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", m.Cursor())
	}
	m.SetRows(numbered(5))
	if m.Cursor() != 4 || m.yOffset != 3 {
		t.Fatalf("cursor = %d yOffset = %d, want 4 and 3", m.Cursor(), m.yOffset)
	}

	m.SetCursor(1)
	m.SetRows(numbered(6))
	if r, _ := m.SelectedRow(); r.ID != "b" {
		t.Fatalf("moved away from the end, selection should stay: %+v", r)
	}
}

func TestGoldenTable(t *testing.T) {
	m := New(
		WithColumns([]Column{
			{Title: "Channel", Width: 8},
			{Title: "Min", Width: 6, Align: lipgloss.Right},
			{Title: "Max", Width: 6, Align: lipgloss.Right},
		}),
		WithRows([]Row{
			row("a", "sine-0", "-1", "1"),
			row("b", "sine-1", "-0.5", "0.5"),
		}),
		WithWidth(24),
		WithHeight(5),
	)
	golden.RequireEqual(t, []byte(ansi.Strip(m.View())))
}
