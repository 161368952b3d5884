// Package stats turns upstream per-office statistics into a presentation table.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"office-stats/internal/models"
	"office-stats/internal/table"
)

// ErrMixedDistanceMethods is returned when offices in one mapping report
// methods that resolve to different labels.
var ErrMixedDistanceMethods = eris.New("stats: offices use different distance methods")

const DefaultMethodLabel = "Haversine"

// MethodLabel resolves the single label used for a whole mapping. Offices that
// do not report a method are ignored; when none reports one the label is
// Haversine.
func MethodLabel(offices map[string]models.OfficeStatistics) (string, error) {
	label := ""
	for _, name := range officeNames(offices) {
		m, ok := offices[name].Method()
		if !ok {
			continue
		}
		switch {
		case label == "":
			label = m.Label()
		case label != m.Label():
			return "", eris.Wrapf(ErrMixedDistanceMethods, "office %q reports %s, expected %s", name, m.Label(), label)
		}
	}
	if label == "" {
		return DefaultMethodLabel, nil
	}
	return label, nil
}

// Columns returns the schema for a given method label.
func Columns(label string, withMethod bool) []table.Column {
	cols := []table.Column{
		{Label: "Education Office", Role: table.RoleIdentifier},
		{Label: "Number of Schools", Role: table.RoleSchoolCount},
		{Label: "Latitude", Role: table.RoleLatitude},
		{Label: "Longitude", Role: table.RoleLongitude},
		{Label: fmt.Sprintf("Total %s Distance (km)", label), Role: table.RoleTotalDistance},
		{Label: fmt.Sprintf("Average %s Distance (km)", label), Role: table.RoleAverageDistance},
		{Label: fmt.Sprintf("Maximum %s Distance (km)", label), Role: table.RoleMaxDistance},
		{Label: "Farthest School", Role: table.RoleFarthestSchool},
	}
	if withMethod {
		cols = append(cols, table.Column{Label: "Distance Method", Role: table.RoleDistanceMethod})
	}
	return cols
}

// Build converts the mapping into a table with one row per office, ordered by
// office name. An empty mapping yields a nil table and no error. The caller's
// mapping is only read.
func Build(offices map[string]models.OfficeStatistics) (*table.Table, error) {
	if len(offices) == 0 {
		return nil, nil
	}

	label, err := MethodLabel(offices)
	if err != nil {
		return nil, err
	}

	withMethod := false
	for _, s := range offices {
		if _, ok := s.Method(); ok {
			withMethod = true
			break
		}
	}

	t := table.New(Columns(label, withMethod)...)
	for _, name := range officeNames(offices) {
		s := offices[name]
		cells := []table.Cell{
			table.Text(name),
			intCell(s.SchoolCount),
			floatCell(s.Latitude),
			floatCell(s.Longitude),
			distanceCell(s.TotalDistance),
			distanceCell(s.AverageDistance),
			distanceCell(s.MaxDistance),
			textCell(s.FarthestSchool),
		}
		if withMethod {
			if m, ok := s.Method(); ok {
				cells = append(cells, table.Text(string(m)))
			} else {
				cells = append(cells, table.Empty())
			}
		}
		if err := t.Append(name, cells...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Round2 rounds to two decimal places, ties to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func officeNames(offices map[string]models.OfficeStatistics) []string {
	names := make([]string, 0, len(offices))
	for name := range offices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func intCell(v *int) table.Cell {
	if v == nil {
		return table.Empty()
	}
	return table.Int(*v)
}

func floatCell(v *float64) table.Cell {
	if v == nil {
		return table.Empty()
	}
	return table.Float(*v)
}

func distanceCell(v *float64) table.Cell {
	if v == nil {
		return table.Empty()
	}
	return table.Float(Round2(*v))
}

func textCell(v *string) table.Cell {
	if v == nil {
		return table.Empty()
	}
	return table.Text(*v)
}
