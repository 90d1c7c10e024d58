package ui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/kpumuk/lazyscope/internal/graph"
	"github.com/kpumuk/lazyscope/internal/selection"
	"github.com/kpumuk/lazyscope/internal/ui/components/jsonview"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs/confirm"
	devtoolsdialog "github.com/kpumuk/lazyscope/internal/ui/dialogs/devtools"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs/help"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs/inspect"
)

// graphState is what the inspect dialog shows when nothing is selected.
type graphState struct {
	Source    string            `json:"source"`
	Connected bool              `json:"connected"`
	Paused    bool              `json:"paused"`
	Version   uint64            `json:"version"`
	Samples   int               `json:"samples"`
	Dropped   uint64            `json:"dropped"`
	Channels  []string          `json:"channels"`
	Domain    graph.Domain      `json:"domain"`
	Viewport  graph.Viewport    `json:"viewport"`
	ZoomMode  string            `json:"zoomMode"`
	ZoomX     graph.Transform   `json:"zoomX"`
	ZoomY     graph.Transform   `json:"zoomY"`
	Survey    []selection.Point `json:"survey,omitempty"`
	Delta     *selection.Delta  `json:"delta,omitempty"`
}

func (a App) graphState() graphState {
	snap := a.frame.Snapshot
	var delta *selection.Delta
	if d, ok := a.survey.Delta(); ok {
		delta = &d
	}
	channels := make([]string, 0, len(snap.Order))
	for _, id := range snap.Order {
		channels = append(channels, a.channelName(id))
	}
	return graphState{
		Source:    a.src.Name(),
		Connected: a.src.Connected(),
		Paused:    a.paused,
		Version:   snap.Version,
		Samples:   snap.Len(),
		Dropped:   a.store.Dropped(),
		Channels:  channels,
		Domain:    a.frame.Domain,
		Viewport:  a.frame.Viewport,
		ZoomMode:  a.graph.Zoom().Mode().String(),
		ZoomX:     a.frame.ZoomX,
		ZoomY:     a.frame.ZoomY,
		Survey:    a.survey.Points(),
		Delta:     delta,
	}
}

func (a App) openInspect() tea.Cmd {
	title, value := "Graph", any(a.graphState())
	if a.analysis != nil {
		title, value = "Selection", *a.analysis
	}
	return dialogs.Open(inspect.New(
		inspect.WithStyles(inspect.Styles{
			Title:  a.styles.ViewTitle,
			Border: a.styles.FocusBorder,
			Muted:  a.styles.ViewMuted,
			JSON:   jsonview.DefaultStyles(),
		}),
		inspect.WithTitle(title),
		inspect.WithValue(value),
	))
}

func (a App) openDevTools() tea.Cmd {
	return dialogs.Open(devtoolsdialog.New(
		devtoolsdialog.WithStyles(devtoolsdialog.Styles{
			Title:          a.styles.ViewTitle,
			Border:         a.styles.FocusBorder,
			Text:           a.styles.ViewText,
			Muted:          a.styles.ViewMuted,
			Prompt:         a.styles.HelpKey,
			Placeholder:    a.styles.ViewMuted,
			TableHeader:    a.styles.TableHeader,
			TableSelected:  a.styles.TableSelected,
			TableSeparator: a.styles.TableSeparator,
		}),
		devtoolsdialog.WithTracker(a.tracker),
	))
}

func (a App) openConfirmClear() tea.Cmd {
	return dialogs.Open(confirm.New(
		confirm.WithStyles(confirm.Styles{
			Title:        a.styles.ViewTitle,
			Border:       a.styles.FocusBorder,
			Text:         a.styles.ViewText,
			Button:       a.styles.ViewMuted,
			ButtonActive: a.styles.TableSelected,
		}),
		confirm.WithTitle("Clear data"),
		confirm.WithMessage(fmt.Sprintf("Drop all %d samples from %s?", a.frame.Snapshot.Len(), a.src.Name())),
		confirm.WithTarget(clearTarget),
		confirm.WithLabels("Clear", "Keep"),
	))
}

var helpTitles = []string{"Zoom", "Pan", "Selection", "Data", "General"}

func (a App) helpSections() []help.Section {
	groups := a.keys.FullHelp()
	sections := make([]help.Section, 0, len(groups)+1)
	for i, group := range groups {
		sections = append(sections, help.Section{Title: helpTitles[i], Bindings: group})
	}
	return append(sections, help.Section{
		Title: "Mouse",
		Lines: []string{
			"wheel  zoom at pointer",
			"drag   pan, or select in selection mode",
			"click  clear the selection, or mark a point in survey mode",
		},
	})
}

func (a App) openHelp() tea.Cmd {
	return dialogs.Open(help.New(
		help.WithStyles(help.Styles{
			Title:   a.styles.ViewTitle,
			Border:  a.styles.FocusBorder,
			Section: a.styles.ViewTitle,
			Key:     a.styles.HelpKey,
			Desc:    a.styles.ViewText,
			Muted:   a.styles.ViewMuted,
		}),
		help.WithSections(a.helpSections()),
	))
}
