package theme

import "charm.land/lipgloss/v2"
import "charm.land/lipgloss/v2/compat"

// Theme defines all colors used throughout the UI.
type Theme struct {
	// Base colors
	Primary compat.CompleteAdaptiveColor

	// Text colors
	Text      compat.CompleteAdaptiveColor
	TextMuted compat.CompleteAdaptiveColor

	// Background colors
	StatusBarBg compat.CompleteAdaptiveColor

	// Border colors
	Border      compat.AdaptiveColor
	BorderFocus compat.CompleteAdaptiveColor

	// Accent colors
	TableSelectedFg compat.AdaptiveColor
	TableSelectedBg compat.AdaptiveColor
	Success         compat.AdaptiveColor
	Warning         compat.AdaptiveColor
	Error           compat.AdaptiveColor

	// Plot colors
	Axis      compat.AdaptiveColor
	Selection compat.AdaptiveColor
	Cursor    compat.AdaptiveColor

	// Status bar colors
	StatusText compat.CompleteAdaptiveColor
}

// DefaultTheme is the adaptive color scheme used by default.
// Use Open Color palette when possible to define colors: https://yeun.github.io/open-color/
var DefaultTheme = Theme{
	Primary: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#0b7285"), ANSI256: lipgloss.Color("30"), ANSI: lipgloss.Color("6")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#3bc9db"), ANSI256: lipgloss.Color("80"), ANSI: lipgloss.Color("14")},
	},

	// Text
	Text: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#111827"), ANSI256: lipgloss.Color("0"), ANSI: lipgloss.Color("0")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#F9FAFB"), ANSI256: lipgloss.Color("15"), ANSI: lipgloss.Color("15")},
	},
	TextMuted: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#6B7280"), ANSI256: lipgloss.Color("240"), ANSI: lipgloss.Color("8")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#9CA3AF"), ANSI256: lipgloss.Color("250"), ANSI: lipgloss.Color("7")},
	},

	// Backgrounds
	StatusBarBg: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#1098ad"), ANSI256: lipgloss.Color("31"), ANSI: lipgloss.Color("6")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#0c8599"), ANSI256: lipgloss.Color("30"), ANSI: lipgloss.Color("6")},
	},

	// Borders
	Border: compat.AdaptiveColor{
		Light: lipgloss.Color("#D1D5DB"), // Gray-300
		Dark:  lipgloss.Color("#374151"), // Gray-700
	},
	BorderFocus: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#0b7285"), ANSI256: lipgloss.Color("30"), ANSI: lipgloss.Color("6")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#3bc9db"), ANSI256: lipgloss.Color("80"), ANSI: lipgloss.Color("14")},
	},

	// Accents
	TableSelectedFg: compat.AdaptiveColor{
		Light: lipgloss.Color("229"),
		Dark:  lipgloss.Color("229"),
	},
	TableSelectedBg: compat.AdaptiveColor{
		Light: lipgloss.Color("24"),
		Dark:  lipgloss.Color("24"),
	},
	Success: compat.AdaptiveColor{
		Light: lipgloss.Color("#16A34A"),
		Dark:  lipgloss.Color("#22C55E"),
	},
	Warning: compat.AdaptiveColor{
		Light: lipgloss.Color("#e67700"),
		Dark:  lipgloss.Color("#fcc419"),
	},
	Error: compat.AdaptiveColor{
		Light: lipgloss.Color("#FF0000"),
		Dark:  lipgloss.Color("#FF0000"),
	},

	// Plot
	Axis: compat.AdaptiveColor{
		Light: lipgloss.Color("#495057"),
		Dark:  lipgloss.Color("#adb5bd"),
	},
	Selection: compat.AdaptiveColor{
		Light: lipgloss.Color("#d0ebff"),
		Dark:  lipgloss.Color("#1c2a3a"),
	},
	Cursor: compat.AdaptiveColor{
		Light: lipgloss.Color("#adb5bd"),
		Dark:  lipgloss.Color("#495057"),
	},

	// Status bar
	StatusText: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#f8f9fa"), ANSI256: lipgloss.Color("255"), ANSI: lipgloss.Color("15")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#f8f9fa"), ANSI256: lipgloss.Color("255"), ANSI: lipgloss.Color("15")},
	},
}

// Styles holds all lipgloss styles derived from a theme
type Styles struct {
	// Status bar
	StatusBar   lipgloss.Style
	StatusFill  lipgloss.Style
	StatusLabel lipgloss.Style
	StatusValue lipgloss.Style
	StatusOK    lipgloss.Style
	StatusWarn  lipgloss.Style

	// Help bar
	HelpBar  lipgloss.Style
	HelpItem lipgloss.Style
	HelpKey  lipgloss.Style
	HelpQuit lipgloss.Style

	// Content
	ViewTitle lipgloss.Style
	ViewText  lipgloss.Style
	ViewMuted lipgloss.Style

	// Table
	TableHeader    lipgloss.Style
	TableSelected  lipgloss.Style
	TableSeparator lipgloss.Style

	// Layout helpers
	BoxPadding  lipgloss.Style
	BorderStyle lipgloss.Style
	FocusBorder lipgloss.Style

	// Plot
	PlotLabel     lipgloss.Style
	PlotSelection lipgloss.Style
	PlotEdge      lipgloss.Style
	PlotCursor    lipgloss.Style
	PlotMuted     lipgloss.Style

	// Errors
	ErrorTitle  lipgloss.Style
	ErrorBorder lipgloss.Style
}

// NewStyles creates a Styles instance from the default adaptive theme.
func NewStyles() Styles {
	t := DefaultTheme
	return Styles{
		// Status bar
		StatusBar: lipgloss.NewStyle().
			Foreground(t.StatusText).
			Background(t.StatusBarBg),

		StatusFill: lipgloss.NewStyle().
			Background(t.StatusBarBg),

		StatusLabel: lipgloss.NewStyle().
			Foreground(t.StatusText).
			Background(t.StatusBarBg),

		StatusValue: lipgloss.NewStyle().
			Foreground(t.StatusText).
			Background(t.StatusBarBg).
			Bold(true),

		StatusOK: lipgloss.NewStyle().
			Foreground(t.StatusText).
			Background(t.StatusBarBg).
			Bold(true),

		StatusWarn: lipgloss.NewStyle().
			Foreground(t.Warning).
			Background(t.StatusBarBg).
			Bold(true),

		// Help bar
		HelpBar: lipgloss.NewStyle().
			Padding(0, 1),

		HelpItem: lipgloss.NewStyle().
			Foreground(t.TextMuted).
			PaddingRight(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Border).
			Padding(0, 1),

		HelpQuit: lipgloss.NewStyle().
			Foreground(t.TextMuted).
			PaddingRight(1),

		// Content
		ViewTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		ViewText: lipgloss.NewStyle().
			Foreground(t.Text),

		ViewMuted: lipgloss.NewStyle().
			Foreground(t.TextMuted),

		// Table
		TableHeader: lipgloss.NewStyle().
			Foreground(t.Text).
			Bold(true),

		TableSelected: lipgloss.NewStyle().
			Foreground(t.TableSelectedFg).
			Background(t.TableSelectedBg),

		TableSeparator: lipgloss.NewStyle().
			Foreground(t.Border),

		// Layout helpers
		BoxPadding: lipgloss.NewStyle().
			Padding(0, 1),

		BorderStyle: lipgloss.NewStyle().
			Foreground(t.Border),

		FocusBorder: lipgloss.NewStyle().
			Foreground(t.BorderFocus),

		// Plot
		PlotLabel: lipgloss.NewStyle().
			Foreground(t.Axis),

		PlotSelection: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection),

		PlotEdge: lipgloss.NewStyle().
			Foreground(t.Primary),

		PlotCursor: lipgloss.NewStyle().
			Foreground(t.Cursor),

		PlotMuted: lipgloss.NewStyle().
			Foreground(t.TextMuted).
			Italic(true),

		// Errors
		ErrorTitle: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		ErrorBorder: lipgloss.NewStyle().
			Foreground(t.Error),
	}
}
