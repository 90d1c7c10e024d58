package frame

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/golden"
)

func TestFrameLineCountAndWidth(t *testing.T) {
	t.Parallel()

	for _, size := range [][2]int{{10, 4}, {3, 2}, {40, 12}} {
		box := New(
			WithSize(size[0], size[1]),
			WithTitle("A rather long title"),
			WithMeta("meta"),
			WithFooter("footer"),
			WithContent("hi\nthis line is far too wide for the box"),
		)

		lines := strings.Split(box.View(), "\n")
		if len(lines) != size[1] {
			t.Fatalf("%v: want %d lines, got %d", size, size[1], len(lines))
		}
		for i, line := range lines {
			if lipgloss.Width(line) != size[0] {
				t.Fatalf("%v line %d: want width %d, got %d: %q", size, i, size[0], lipgloss.Width(line), line)
			}
		}
	}
}

func TestFrameTooSmall(t *testing.T) {
	t.Parallel()

	if New(WithSize(1, 5)).View() != "" || New(WithSize(5, 1)).View() != "" {
		t.Fatalf("expected empty view for a degenerate size")
	}
}

func TestFrameInnerSize(t *testing.T) {
	t.Parallel()

	w, h := New(WithSize(20, 6), WithPadding(1)).InnerSize()
	if w != 16 || h != 4 {
		t.Fatalf("InnerSize() = %d, %d, want 16, 4", w, h)
	}
}

func TestFrameFocusStyles(t *testing.T) {
	t.Parallel()

	styles := Styles{
		Focused: StyleState{Border: lipgloss.NewStyle().Foreground(lipgloss.Color("1"))},
		Blurred: StyleState{},
	}
	focused := New(WithStyles(styles), WithFocused(true), WithTitle("T"), WithSize(8, 3))
	blurred := New(WithStyles(styles), WithTitle("T"), WithSize(8, 3))

	if !strings.Contains(focused.View(), "\x1b[") {
		t.Fatalf("expected focused view to contain ANSI sequences")
	}
	if strings.Contains(blurred.View(), "\x1b[") {
		t.Fatalf("expected blurred view to avoid ANSI sequences")
	}
}

func TestGoldenFrameBasic(t *testing.T) {
	box := New(
		WithSize(20, 4),
		WithTitle("Scope"),
		WithContent("hello"),
	)

	golden.RequireEqual(t, []byte(ansi.Strip(box.View())))
}

func TestGoldenFrameWithMetaAndFooter(t *testing.T) {
	box := New(
		WithSize(30, 5),
		WithTitle("Scope"),
		WithMeta("3 ch"),
		WithFooter("x 1.5"),
		WithContent("row 1\nrow 2"),
	)

	golden.RequireEqual(t, []byte(ansi.Strip(box.View())))
}
