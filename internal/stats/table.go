package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one text table column.
type column struct {
	title string
	right bool
}

// roundColumns lays out RoundTableHeaders with the numeric columns right aligned.
func roundColumns() []column {
	cols := make([]column, len(RoundTableHeaders))
	for i, title := range RoundTableHeaders {
		cols[i] = column{title: title, right: i >= 1 && i <= 4}
	}
	return cols
}

// textTable renders rows under cols as aligned lines. The header is followed
// by a rule as wide as each column. Missing cells render blank.
func textTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i := range cols {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(row, i)))
		}
	}

	titles := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
		rule[i] = strings.Repeat("-", widths[i])
	}
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, joinCells(cols, titles, widths), strings.Join(rule, " "))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, row, widths))
	}
	return lines
}

func joinCells(cols []column, row []string, widths []int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := cell(row, i)
		if c.right {
			parts[i] = runewidth.FillLeft(v, widths[i])
		} else {
			parts[i] = runewidth.FillRight(v, widths[i])
		}
	}
	return strings.Join(parts, " ")
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
