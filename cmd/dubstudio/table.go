package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws rows under headers in a rounded box. Columns past the
// end of aligns are left-aligned; short rows are padded with empty cells.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment, colorize bool) string {
	if len(headers) == 0 {
		return ""
	}
	toRow := func(cells []string) table.Row {
		row := make(table.Row, len(headers))
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		return row
	}

	tw := table.NewWriter()
	style := table.StyleRounded
	if colorize {
		style.Color.Header = text.Colors{text.Bold}
	}
	tw.SetStyle(style)
	tw.AppendHeader(toRow(headers))
	for _, cells := range rows {
		tw.AppendRow(toRow(cells))
	}

	var columns []table.ColumnConfig
	for i, a := range aligns {
		if a == alignRight && i < len(headers) {
			columns = append(columns, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignLeft})
		}
	}
	tw.SetColumnConfigs(columns)
	return tw.Render()
}

func printTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) {
	_, _ = io.WriteString(w, renderTable(headers, rows, aligns, shouldColorize(w))+"\n")
}
