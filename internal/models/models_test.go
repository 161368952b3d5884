package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMethodLabel(t *testing.T) {
	assert.Equal(t, "Manhattan", MethodManhattan.Label())
	assert.Equal(t, "Haversine", MethodHaversine.Label())
	assert.Equal(t, "Haversine", DistanceMethod("Unknown").Label())
	assert.Equal(t, "Haversine", DistanceMethod("").Label())
	// Matching is exact, as upstream always reports lower case.
	assert.Equal(t, "Haversine", DistanceMethod("Manhattan").Label())
}

func TestOfficeStatisticsMethod(t *testing.T) {
	_, ok := OfficeStatistics{}.Method()
	assert.False(t, ok)

	m, ok := OfficeStatistics{DistanceMethod: Ptr(MethodManhattan)}.Method()
	assert.True(t, ok)
	assert.Equal(t, MethodManhattan, m)
}

func TestValidate(t *testing.T) {
	valid := map[string]OfficeStatistics{
		"Office A": {SchoolCount: Ptr(2), TotalDistance: Ptr(10.0), AverageDistance: Ptr(5.0), MaxDistance: Ptr(6.0)},
		"Office B": {},
	}
	require.NoError(t, Validate(valid))
	require.NoError(t, Validate(nil))

	tests := []struct {
		name    string
		offices map[string]OfficeStatistics
	}{
		{"negative count", map[string]OfficeStatistics{"A": {SchoolCount: Ptr(-1)}}},
		{"negative total", map[string]OfficeStatistics{"A": {TotalDistance: Ptr(-0.5)}}},
		{"negative average", map[string]OfficeStatistics{"A": {AverageDistance: Ptr(-2.0)}}},
		{"negative max", map[string]OfficeStatistics{"A": {MaxDistance: Ptr(-3.0)}}},
		{"blank name", map[string]OfficeStatistics{"  ": {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate(tt.offices))
		})
	}
}

func TestValidateAllowsNegativeCoordinates(t *testing.T) {
	offices := map[string]OfficeStatistics{
		"South": {Latitude: Ptr(-33.9), Longitude: Ptr(-70.6)},
	}
	assert.NoError(t, Validate(offices))
}

func TestStandardizeOfficeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "Unknown"},
		{"   ", "Unknown"},
		{"مكتب 1", "مكتب 1"},
		{"مكتب 2 - بنين", "مكتب 2"},
		{"مكتب 2 -بنات", "مكتب 2"},
		{"مكتب التعليم بالشمال", "مكتب تعليم الشمال"},
		{"  مكتب 3  ", "مكتب 3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StandardizeOfficeName(tt.in), "input %q", tt.in)
	}
}
