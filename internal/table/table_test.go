package table

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellString(t *testing.T) {
	assert.Equal(t, "", Empty().String())
	assert.Equal(t, "School X", Text("School X").String())
	assert.Equal(t, "2", Int(2).String())
	assert.Equal(t, "5.0", Float(5).String())
	assert.Equal(t, "21.5", Float(21.5).String())
	assert.Equal(t, "10.46", Float(10.46).String())
	assert.Equal(t, "-0.25", Float(-0.25).String())
}

func TestCellNumber(t *testing.T) {
	v, ok := Int(3).Number()
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = Float(1.5).Number()
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = Text("1.5").Number()
	assert.False(t, ok)
	_, ok = Empty().Number()
	assert.False(t, ok)
}

func TestCellJSON(t *testing.T) {
	out, err := json.Marshal([]Cell{Empty(), Text("a"), Int(1), Float(2.5), Float(math.NaN())})
	require.NoError(t, err)
	assert.JSONEq(t, `[null, "a", 1, 2.5, null]`, string(out))
}

func TestTableAppendAndLookup(t *testing.T) {
	tbl := New(
		Column{Label: "Name", Role: RoleIdentifier},
		Column{Label: "Average", Role: RoleAverageDistance},
	)
	require.NoError(t, tbl.Append("a", Text("a"), Float(1)))
	require.NoError(t, tbl.Append("b", Text("b"), Empty()))
	assert.Error(t, tbl.Append("c", Text("c")))

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"Name", "Average"}, tbl.Header())
	assert.Equal(t, [][]string{{"a", "1.0"}, {"b", ""}}, tbl.Records())

	idx, ok := tbl.ColumnByRole(RoleAverageDistance)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = tbl.ColumnByRole(RoleMaxDistance)
	assert.False(t, ok)

	c, ok := tbl.Cell(1, "Average")
	assert.True(t, ok)
	assert.True(t, c.IsEmpty())
	_, ok = tbl.Cell(5, "Average")
	assert.False(t, ok)
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Header())
	assert.Nil(t, tbl.Records())
	_, ok := tbl.ColumnByRole(RoleIdentifier)
	assert.False(t, ok)
}

func TestRole(t *testing.T) {
	assert.True(t, RoleTotalDistance.IsDistance())
	assert.True(t, RoleAverageDistance.IsDistance())
	assert.True(t, RoleMaxDistance.IsDistance())
	assert.False(t, RoleLatitude.IsDistance())
	assert.Equal(t, "average_distance", RoleAverageDistance.String())
	assert.Equal(t, "other", Role(99).String())

	out, err := json.Marshal(Column{Label: "Latitude", Role: RoleLatitude})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label": "Latitude", "role": "latitude"}`, string(out))
}
