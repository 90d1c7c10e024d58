package helpbar

import (
	"strings"
	"testing"

	"charm.land/bubbles/v2/key"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/golden"
)

func testBindings() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select")),
		key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func TestViewDimensions(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		width     int
		wantEmpty bool
	}{
		"zero width": {width: 0, wantEmpty: true},
		"tiny":       {width: 5},
		"narrow":     {width: 20},
		"wide":       {width: 60},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			m := New(WithWidth(tc.width), WithBindings(testBindings()), WithBrand("lazyscope"))
			output := m.View()
			if tc.wantEmpty {
				if output != "" {
					t.Fatalf("expected empty output, got %q", output)
				}
				return
			}
			if w := ansi.StringWidth(output); w != tc.width {
				t.Fatalf("expected width %d, got %d", tc.width, w)
			}
		})
	}
}

func TestDisabledBindingsAreHidden(t *testing.T) {
	t.Parallel()

	bindings := testBindings()
	bindings[1].SetEnabled(false)
	out := ansi.Strip(New(WithWidth(60), WithBindings(bindings)).View())
	if strings.Contains(out, "select") {
		t.Fatalf("disabled binding rendered: %q", out)
	}
	if !strings.Contains(out, "help") {
		t.Fatalf("expected help hint: %q", out)
	}
}

func TestNarrowDropsBrandFirst(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(New(WithWidth(30), WithBindings(testBindings()), WithBrand("lazyscope")).View())
	if strings.Contains(out, "lazyscope") {
		t.Fatalf("brand should be dropped: %q", out)
	}
	if !strings.Contains(out, "quit") || !strings.Contains(out, "help") {
		t.Fatalf("hints should survive: %q", out)
	}
}

func TestGoldenHelpbar(t *testing.T) {
	m := New(WithWidth(40), WithBindings(testBindings()), WithBrand("lazyscope"))
	golden.RequireEqual(t, []byte(ansi.Strip(m.View())))
}
