// Package charts builds bar charts for office statistics and raw distance
// sequences. A Chart is a plain value; drawing happens only in Render so every
// call works on its own go-chart canvas.
package charts

import (
	"fmt"

	"office-stats/internal/table"
)

// Bar is one category and its value.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart describes a vertical bar chart.
type Chart struct {
	Title      string `json:"title"`
	XAxisTitle string `json:"x_axis_title"`
	YAxisTitle string `json:"y_axis_title"`
	// LabelRotation rotates the category labels, in degrees.
	LabelRotation float64 `json:"label_rotation"`
	Bars          []Bar   `json:"bars"`
}

// Comparison draws the average distance of every office in t. It returns nil
// when there is nothing to compare: fewer than two rows or no average
// distance column.
func Comparison(t *table.Table) *Chart {
	if t.Len() < 2 {
		return nil
	}
	avgCol, ok := t.ColumnByRole(table.RoleAverageDistance)
	if !ok {
		return nil
	}
	nameCol, hasName := t.ColumnByRole(table.RoleIdentifier)

	avgLabel := t.Columns[avgCol].Label
	c := &Chart{
		Title:         fmt.Sprintf("%s from Optimal Office Location to Schools", avgLabel),
		XAxisTitle:    "",
		YAxisTitle:    avgLabel,
		LabelRotation: 45,
		Bars:          make([]Bar, 0, t.Len()),
	}
	for _, row := range t.Rows {
		label := row.Key
		if hasName && !row.Cells[nameCol].IsEmpty() {
			label = row.Cells[nameCol].String()
		}
		v, _ := row.Cells[avgCol].Number()
		c.Bars = append(c.Bars, Bar{Label: label, Value: v})
	}
	return c
}
