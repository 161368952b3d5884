package stats

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"office-stats/internal/models"
	"office-stats/internal/table"
)

func officeA() models.OfficeStatistics {
	return models.OfficeStatistics{
		SchoolCount:     models.Ptr(2),
		Latitude:        models.Ptr(21.5),
		Longitude:       models.Ptr(39.2),
		TotalDistance:   models.Ptr(10.0),
		AverageDistance: models.Ptr(5.0),
		MaxDistance:     models.Ptr(6.0),
		FarthestSchool:  models.Ptr("School X"),
		DistanceMethod:  models.Ptr(models.MethodManhattan),
	}
}

func TestBuildSingleManhattanOffice(t *testing.T) {
	tbl, err := Build(map[string]models.OfficeStatistics{"Office A": officeA()})
	require.NoError(t, err)
	require.NotNil(t, tbl)

	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{
		"Education Office",
		"Number of Schools",
		"Latitude",
		"Longitude",
		"Total Manhattan Distance (km)",
		"Average Manhattan Distance (km)",
		"Maximum Manhattan Distance (km)",
		"Farthest School",
		"Distance Method",
	}, tbl.Header())

	avg, ok := tbl.Cell(0, "Average Manhattan Distance (km)")
	require.True(t, ok)
	v, _ := avg.Number()
	assert.Equal(t, 5.0, v)

	assert.Equal(t, []string{"Office A", "2", "21.5", "39.2", "10.0", "5.0", "6.0", "School X", "manhattan"}, tbl.Records()[0])
	assert.Equal(t, "Office A", tbl.Rows[0].Key)
}

func TestBuildEmpty(t *testing.T) {
	tbl, err := Build(nil)
	assert.NoError(t, err)
	assert.Nil(t, tbl)

	tbl, err = Build(map[string]models.OfficeStatistics{})
	assert.NoError(t, err)
	assert.Nil(t, tbl)
}

func TestBuildOneRowPerOfficeSortedByName(t *testing.T) {
	offices := map[string]models.OfficeStatistics{
		"Office C": officeA(),
		"Office A": officeA(),
		"Office B": officeA(),
	}
	tbl, err := Build(offices)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	var keys []string
	for _, r := range tbl.Rows {
		keys = append(keys, r.Key)
		assert.Len(t, r.Cells, len(tbl.Columns))
	}
	assert.Equal(t, []string{"Office A", "Office B", "Office C"}, keys)
}

func TestBuildColumnRoles(t *testing.T) {
	tbl, err := Build(map[string]models.OfficeStatistics{"Office A": officeA()})
	require.NoError(t, err)

	want := []table.Role{
		table.RoleIdentifier,
		table.RoleSchoolCount,
		table.RoleLatitude,
		table.RoleLongitude,
		table.RoleTotalDistance,
		table.RoleAverageDistance,
		table.RoleMaxDistance,
		table.RoleFarthestSchool,
		table.RoleDistanceMethod,
	}
	for i, c := range tbl.Columns {
		assert.Equal(t, want[i], c.Role, c.Label)
	}
}

func TestBuildRoundsDistancesOnly(t *testing.T) {
	s := models.OfficeStatistics{
		SchoolCount:     models.Ptr(3),
		Latitude:        models.Ptr(21.123456),
		Longitude:       models.Ptr(39.987654),
		TotalDistance:   models.Ptr(10.456),
		AverageDistance: models.Ptr(3.48533),
		MaxDistance:     models.Ptr(7.999),
	}
	tbl, err := Build(map[string]models.OfficeStatistics{"Office": s})
	require.NoError(t, err)

	for _, tc := range []struct {
		label string
		want  float64
	}{
		{"Total Haversine Distance (km)", 10.46},
		{"Average Haversine Distance (km)", 3.49},
		{"Maximum Haversine Distance (km)", 8.0},
		{"Latitude", 21.123456},
		{"Longitude", 39.987654},
	} {
		c, ok := tbl.Cell(0, tc.label)
		require.True(t, ok, tc.label)
		v, _ := c.Number()
		assert.Equal(t, tc.want, v, tc.label)
	}
}

func TestBuildRoundsTiesToEven(t *testing.T) {
	tbl, err := Build(map[string]models.OfficeStatistics{"A": {
		TotalDistance:   models.Ptr(0.125),
		AverageDistance: models.Ptr(2.375),
		MaxDistance:     models.Ptr(10.625),
	}})
	require.NoError(t, err)

	rec := tbl.Records()[0]
	assert.Equal(t, []string{"0.12", "2.38", "10.62"}, rec[4:7])
}

func TestBuildMethodLabelResolution(t *testing.T) {
	tests := []struct {
		name      string
		method    *models.DistanceMethod
		wantLabel string
		hasColumn bool
	}{
		{"manhattan", models.Ptr(models.MethodManhattan), "Manhattan", true},
		{"haversine", models.Ptr(models.MethodHaversine), "Haversine", true},
		{"unknown", models.Ptr(models.DistanceMethod("Unknown")), "Haversine", true},
		{"absent", nil, "Haversine", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := officeA()
			s.DistanceMethod = tt.method
			tbl, err := Build(map[string]models.OfficeStatistics{"A": s, "B": s})
			require.NoError(t, err)

			for _, role := range []table.Role{table.RoleTotalDistance, table.RoleAverageDistance, table.RoleMaxDistance} {
				idx, ok := tbl.ColumnByRole(role)
				require.True(t, ok)
				assert.Contains(t, tbl.Columns[idx].Label, " "+tt.wantLabel+" Distance (km)")
			}
			_, ok := tbl.ColumnByRole(table.RoleDistanceMethod)
			assert.Equal(t, tt.hasColumn, ok)
			if tt.hasColumn {
				assert.Len(t, tbl.Columns, 9)
			} else {
				assert.Len(t, tbl.Columns, 8)
			}
		})
	}
}

func TestBuildMissingFieldsAreEmptyCells(t *testing.T) {
	offices := map[string]models.OfficeStatistics{
		"Bare":  {},
		"Other": {DistanceMethod: models.Ptr(models.MethodHaversine)},
	}
	tbl, err := Build(offices)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	bare := tbl.Rows[0]
	assert.Equal(t, "Bare", bare.Key)
	assert.Equal(t, "Bare", bare.Cells[0].String())
	for _, c := range bare.Cells[1:] {
		assert.True(t, c.IsEmpty())
	}
	assert.Equal(t, "haversine", tbl.Rows[1].Cells[8].String())
}

func TestBuildRejectsMixedMethods(t *testing.T) {
	b := officeA()
	b.DistanceMethod = models.Ptr(models.MethodHaversine)
	tbl, err := Build(map[string]models.OfficeStatistics{"A": officeA(), "B": b})
	assert.Nil(t, tbl)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMixedDistanceMethods))
}

func TestBuildMixedWithAbsentMethodIsUniform(t *testing.T) {
	b := officeA()
	b.DistanceMethod = nil
	tbl, err := Build(map[string]models.OfficeStatistics{"A": officeA(), "B": b})
	require.NoError(t, err)
	_, ok := tbl.ColumnByLabel("Average Manhattan Distance (km)")
	assert.True(t, ok)
	assert.True(t, tbl.Rows[1].Cells[8].IsEmpty())
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	s := officeA()
	s.TotalDistance = models.Ptr(10.4567)
	offices := map[string]models.OfficeStatistics{"A": s}

	_, err := Build(offices)
	require.NoError(t, err)
	assert.Equal(t, 10.4567, *offices["A"].TotalDistance)
	assert.Len(t, offices, 1)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.46, Round2(10.456))
	assert.Equal(t, 3.14, Round2(3.14159))
	assert.Equal(t, 0.0, Round2(0.001))
	assert.Equal(t, -1.23, Round2(-1.234))

	// Exact ties go to the even neighbour.
	assert.Equal(t, 0.12, Round2(0.125))
	assert.Equal(t, 2.38, Round2(2.375))
	assert.Equal(t, 10.62, Round2(10.625))
	assert.Equal(t, -0.12, Round2(-0.125))
}

func TestSummarize(t *testing.T) {
	assert.Nil(t, Summarize(nil, "Manhattan"))

	s := Summarize([]float64{4, 1, 7}, "")
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 7.0, s.Max)
	assert.Equal(t, 12.0, s.Total)
	assert.Equal(t, 4.0, s.Average)
	assert.Equal(t, "Haversine", s.MethodLabel)

	single := Summarize([]float64{5}, "Manhattan")
	assert.Equal(t, 5.0, single.Min)
	assert.Equal(t, 5.0, single.Max)
	assert.Equal(t, "Manhattan", single.MethodLabel)
}
