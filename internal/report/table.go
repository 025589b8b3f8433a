package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth keeps separator cells at least "---".
const minColumnWidth = 3

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ")

// renderTable lays out a markdown table whose columns are padded to the widest cell by
// display width, so wide characters stay aligned in a terminal.
func renderTable(header []string, rows [][]string) []string {
	colCount := len(header)

	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, escapeRow(header, colCount))

	for _, row := range rows {
		cells = append(cells, escapeRow(row, colCount))
	}

	widths := make([]int, colCount)
	for i := range widths {
		widths[i] = minColumnWidth
	}

	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	separator := make([]string, colCount)
	for i, w := range widths {
		separator[i] = strings.Repeat("-", w)
	}

	lines := make([]string, 0, len(cells)+1)
	lines = append(lines, formatRow(cells[0], widths), formatRow(separator, widths))

	for _, row := range cells[1:] {
		lines = append(lines, formatRow(row, widths))
	}

	return lines
}

func escapeRow(row []string, colCount int) []string {
	out := make([]string, colCount)
	for i := 0; i < colCount && i < len(row); i++ {
		out[i] = cellEscaper.Replace(strings.TrimSpace(row[i]))
	}

	return out
}

func formatRow(row []string, widths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for i, cell := range row {
		sb.WriteString(" ")
		sb.WriteString(cell)

		if padding := widths[i] - runewidth.StringWidth(cell); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
