package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one output column; numeric columns are right aligned.
type column struct {
	name    string
	numeric bool
}

var (
	recordColumns = []column{
		{name: "ID", numeric: true},
		{name: "Flow"},
		{name: "Status"},
		{name: "Claimant"},
		{name: "Retries", numeric: true},
		{name: "Created"},
	}
	statusColumns = []column{
		{name: "Flow"},
		{name: "Status"},
		{name: "Count", numeric: true},
	}
)

func renderTable(columns []column, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.name
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
