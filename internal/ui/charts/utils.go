// Package charts holds text layout helpers shared by chart components.
package charts

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// ApplyYAxisLabels prepends right-aligned labels to chart lines. Lines
// without a label get spacing so the plot stays aligned.
func ApplyYAxisLabels(lines []string, labels map[int]string, width int, style lipgloss.Style) []string {
	if width <= 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		raw := ansi.Truncate(labels[i], width, "")
		prefix := strings.Repeat(" ", max(width-lipgloss.Width(raw), 0))
		if raw != "" {
			raw = style.Render(raw)
		}
		out = append(out, prefix+raw+" "+line)
	}
	return out
}

// PlaceLabels builds a line of the given width with each label centred
// on its column. A label that would overlap the previous one is skipped.
func PlaceLabels(width int, columns []int, labels []string) string {
	if width <= 0 {
		return ""
	}
	line := []rune(strings.Repeat(" ", width))
	lastEnd := -1
	for i, label := range labels {
		if label == "" || i >= len(columns) {
			continue
		}
		labelRunes := []rune(label)
		start := max(columns[i]-len(labelRunes)/2, 0)
		end := min(start+len(labelRunes), width)
		if start <= lastEnd+1 || end-start < len(labelRunes) {
			continue
		}
		copy(line[start:end], labelRunes)
		lastEnd = end - 1
	}
	return string(line)
}

// RenderCentered centers content within a given width and height.
// Handles multi-line content by centering vertically and horizontally.
func RenderCentered(width, height int, value string) string {
	if height < 1 {
		return ""
	}
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(" ", max(width, 0))
	}
	if width <= 0 {
		return strings.Join(lines, "\n")
	}

	contentLines := strings.Split(value, "\n")
	startLine := max((height-len(contentLines))/2, 0)
	for i, contentLine := range contentLines {
		lineIdx := startLine + i
		if lineIdx >= height {
			break
		}
		trimmed := ansi.Truncate(contentLine, width, "")
		pad := max((width-lipgloss.Width(trimmed))/2, 0)
		lines[lineIdx] = strings.Repeat(" ", pad) + trimmed + strings.Repeat(" ", max(width-pad-lipgloss.Width(trimmed), 0))
	}

	return strings.Join(lines, "\n")
}
