package ui

import (
	"fmt"
	"strconv"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/kpumuk/lazyscope/internal/selection"
	"github.com/kpumuk/lazyscope/internal/ui/components/table"
	"github.com/kpumuk/lazyscope/internal/ui/format"
	"github.com/kpumuk/lazyscope/internal/ui/theme"
)

var statisticsColumns = []table.Column{
	{Title: "Channel", Width: 12},
	{Title: "Min", Width: 8, Align: lipgloss.Right},
	{Title: "Max", Width: 8, Align: lipgloss.Right},
	{Title: "Avg", Width: 8, Align: lipgloss.Right},
	{Title: "RMS", Width: 8, Align: lipgloss.Right},
	{Title: "P-P", Width: 8, Align: lipgloss.Right},
	{Title: "N", Width: 6, Align: lipgloss.Right},
	{Title: "Span", Width: 8, Align: lipgloss.Right},
}

func newStatisticsTable(styles theme.Styles) table.Model {
	return table.New(
		table.WithColumns(statisticsColumns),
		table.WithStyles(table.Styles{
			Text:      styles.ViewText,
			Muted:     styles.ViewMuted,
			Header:    styles.TableHeader,
			Selected:  styles.ViewText,
			Separator: styles.TableSeparator,
		}),
		table.WithEmptyMessage("Press s, then drag across the plot to select a range."),
	)
}

// statisticsRows lists one row per channel of res.
func statisticsRows(res *selection.Result) []table.Row {
	if res == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(res.Channels))
	for _, c := range res.Channels {
		rows = append(rows, table.Row{
			ID: c.ChannelID,
			Cells: []string{
				c.Name,
				format.Value(c.Min),
				format.Value(c.Max),
				format.Value(c.Average),
				format.Value(c.RMS),
				format.Value(c.PeakToPeak),
				strconv.Itoa(c.SampleCount),
				format.Span(c.TimeSpanMs),
			},
		})
	}
	return rows
}

func (a *App) updateStatistics() {
	a.stats.SetRows(statisticsRows(a.analysis))
	a.stats.SetEmptyMessage(a.statisticsEmptyMessage())
	if a.ready && a.statsBox.Height() != a.statisticsHeight() {
		a.resize()
	}
}

func (a App) statisticsEmptyMessage() string {
	switch {
	case a.analysis != nil:
		return "No samples in the selected range."
	case a.selector.Enabled():
		return "Drag across the plot to select a range."
	}
	return "Press s, then drag across the plot to select a range."
}

// statisticsHeight fits every channel row, up to a third of the window.
func (a App) statisticsHeight() int {
	rows := 1
	if a.analysis != nil {
		rows = max(len(a.analysis.Channels), 1)
	}
	return min(rows+4, max(a.height/3, 5))
}

func (a App) statisticsMeta() string {
	if a.analysis == nil {
		return ""
	}
	res := a.analysis
	label := a.axisFormatter()
	return fmt.Sprintf("%s to %s, %d samples",
		label(res.StartMs, time.Millisecond),
		label(res.EndMs, time.Millisecond),
		res.TotalSamples,
	)
}
