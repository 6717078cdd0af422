package console

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable prints header and rows as a bordered table. maxRows <= 0 prints every row;
// otherwise a footer notes how many were left out.
func RenderTable(w io.Writer, header []string, rows [][]string, maxRows int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	h := make(table.Row, len(header))
	for i, name := range header {
		h[i] = name
	}
	t.AppendHeader(h)

	shown := rows
	if maxRows > 0 && len(rows) > maxRows {
		shown = rows[:maxRows]
	}
	for _, row := range shown {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		t.AppendRow(r)
	}

	if hidden := len(rows) - len(shown); hidden > 0 {
		t.AppendFooter(table.Row{fmt.Sprintf("... %d more rows", hidden)})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
