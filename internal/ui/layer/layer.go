// Package layer composes rendered blocks on top of each other by cell
// position, keeping the styling of both layers intact.
package layer

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Place draws fg over bg with its top-left corner at column x, row y.
// Rows of fg that fall outside bg are dropped.
func Place(bg, fg string, x, y int) string {
	if fg == "" {
		return bg
	}
	bgLines := strings.Split(bg, "\n")
	for i, line := range strings.Split(fg, "\n") {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// Center draws fg in the middle of a width x height bg.
func Center(bg, fg string, width, height int) string {
	x := max((width-lipgloss.Width(fg))/2, 0)
	y := max((height-lipgloss.Height(fg))/2, 0)
	return Place(bg, fg, x, y)
}

func splice(line, insert string, x int) string {
	x = max(x, 0)
	lineWidth := ansi.StringWidth(line)
	if lineWidth < x {
		line += strings.Repeat(" ", x-lineWidth)
		lineWidth = x
	}
	insertWidth := ansi.StringWidth(insert)
	left := ansi.Truncate(line, x, "")
	var right string
	if x+insertWidth < lineWidth {
		right = ansi.TruncateLeft(line, x+insertWidth, "")
	}
	return left + "\x1b[0m" + insert + "\x1b[0m" + right
}
