// Package table holds the in-memory tabular form shared by the statistics
// builder, the chart renderers and the exporters.
package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Role tags what a column means independent of its display label.
type Role int

const (
	RoleOther Role = iota
	RoleIdentifier
	RoleSchoolCount
	RoleLatitude
	RoleLongitude
	RoleTotalDistance
	RoleAverageDistance
	RoleMaxDistance
	RoleFarthestSchool
	RoleDistanceMethod
)

var roleNames = map[Role]string{
	RoleOther:           "other",
	RoleIdentifier:      "identifier",
	RoleSchoolCount:     "school_count",
	RoleLatitude:        "latitude",
	RoleLongitude:       "longitude",
	RoleTotalDistance:   "total_distance",
	RoleAverageDistance: "average_distance",
	RoleMaxDistance:     "max_distance",
	RoleFarthestSchool:  "farthest_school",
	RoleDistanceMethod:  "distance_method",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "other"
}

// IsDistance reports whether the column holds a distance in kilometres.
func (r Role) IsDistance() bool {
	return r == RoleTotalDistance || r == RoleAverageDistance || r == RoleMaxDistance
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Column is one entry of the table schema.
type Column struct {
	Label string `json:"label"`
	Role  Role   `json:"role"`
}

// Kind is the dynamic type of a Cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindInt
	KindFloat
)

// Cell is a single typed value. The zero Cell is empty.
type Cell struct {
	kind Kind
	text string
	i    int
	f    float64
}

func Empty() Cell            { return Cell{} }
func Text(s string) Cell     { return Cell{kind: KindText, text: s} }
func Int(v int) Cell         { return Cell{kind: KindInt, i: v} }
func Float(v float64) Cell   { return Cell{kind: KindFloat, f: v} }
func (c Cell) Kind() Kind    { return c.kind }
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// Number returns the numeric value of an int or float cell.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case KindInt:
		return float64(c.i), true
	case KindFloat:
		return c.f, true
	}
	return 0, false
}

// String renders the cell the way it is written to CSV. Floats always carry a
// decimal point so 5 prints as "5.0"; empty cells print as "".
func (c Cell) String() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindInt:
		return strconv.Itoa(c.i)
	case KindFloat:
		return formatFloat(c.f)
	}
	return ""
}

// Value returns the cell as a plain Go value: nil, string, int or float64.
func (c Cell) Value() any {
	switch c.kind {
	case KindText:
		return c.text
	case KindInt:
		return c.i
	case KindFloat:
		return c.f
	}
	return nil
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.kind == KindFloat && (math.IsNaN(c.f) || math.IsInf(c.f, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value())
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Row is one keyed line of the table. Cells line up with Table.Columns.
type Row struct {
	Key   string `json:"key"`
	Cells []Cell `json:"cells"`
}

// Table is an ordered, labeled set of rows.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// New returns an empty table with the given schema.
func New(columns ...Column) *Table {
	return &Table{Columns: columns, Rows: []Row{}}
}

// Append adds a row. The number of cells must match the schema.
func (t *Table) Append(key string, cells ...Cell) error {
	if len(cells) != len(t.Columns) {
		return eris.Errorf("table: row %q has %d cells, schema has %d columns", key, len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, Row{Key: key, Cells: cells})
	return nil
}

// Len is the number of rows; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Header returns the column labels in order.
func (t *Table) Header() []string {
	if t == nil {
		return nil
	}
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	return labels
}

// ColumnByRole returns the index of the first column with role r.
func (t *Table) ColumnByRole(r Role) (int, bool) {
	if t == nil {
		return -1, false
	}
	for i, c := range t.Columns {
		if c.Role == r {
			return i, true
		}
	}
	return -1, false
}

// ColumnByLabel returns the index of the column labeled label.
func (t *Table) ColumnByLabel(label string) (int, bool) {
	if t == nil {
		return -1, false
	}
	for i, c := range t.Columns {
		if c.Label == label {
			return i, true
		}
	}
	return -1, false
}

// Cell returns the cell at row i under the column labeled label.
func (t *Table) Cell(i int, label string) (Cell, bool) {
	col, ok := t.ColumnByLabel(label)
	if !ok || i < 0 || i >= t.Len() {
		return Cell{}, false
	}
	return t.Rows[i].Cells[col], true
}

// Records renders every row as strings, without a header and without the row
// key.
func (t *Table) Records() [][]string {
	if t == nil {
		return nil
	}
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			rec[j] = c.String()
		}
		out[i] = rec
	}
	return out
}
