package models

import (
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

// DistanceMethod names the metric the upstream calculation used.
type DistanceMethod string

const (
	MethodManhattan DistanceMethod = "manhattan"
	MethodHaversine DistanceMethod = "haversine"
)

// Label is the human readable name used in column headers and chart titles.
// Anything that is not manhattan is reported as Haversine.
func (m DistanceMethod) Label() string {
	if m == MethodManhattan {
		return "Manhattan"
	}
	return "Haversine"
}

// OfficeStatistics is the per-office summary produced upstream. Every field is
// optional: a nil pointer means the upstream never reported the value.
type OfficeStatistics struct {
	SchoolCount     *int            `json:"school_count,omitempty" validate:"omitempty,gte=0"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	TotalDistance   *float64        `json:"total_distance,omitempty" validate:"omitempty,gte=0"`
	AverageDistance *float64        `json:"average_distance,omitempty" validate:"omitempty,gte=0"`
	MaxDistance     *float64        `json:"max_distance,omitempty" validate:"omitempty,gte=0"`
	FarthestSchool  *string         `json:"farthest_school,omitempty"`
	DistanceMethod  *DistanceMethod `json:"distance_method,omitempty"`
}

// Method returns the reported method and whether one was reported at all.
func (s OfficeStatistics) Method() (DistanceMethod, bool) {
	if s.DistanceMethod == nil {
		return "", false
	}
	return *s.DistanceMethod, true
}

// Ptr returns a pointer to v. Handy when assembling OfficeStatistics literals.
func Ptr[T any](v T) *T {
	return &v
}

var validate = validator.New()

// Validate checks every office in the mapping. Office names must not be blank
// and counts and distances must not be negative.
func Validate(offices map[string]OfficeStatistics) error {
	names := make([]string, 0, len(offices))
	for name := range offices {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return eris.New("models: office name is blank")
		}
		if err := validate.Struct(offices[name]); err != nil {
			return eris.Wrapf(err, "models: invalid statistics for office %q", name)
		}
	}
	return nil
}

var genderSuffix = regexp.MustCompile(`-\s*(بنين|بنات)$`)

// Applied in order; later pairs see the output of earlier ones.
var prefixFixes = [][2]string{
	{"بال", "ال"},
	{"التعليم", "تعليم"},
	{"بر", "ر"},
	{"بأ", "أ"},
	{"بخ", "خ"},
}

// StandardizeOfficeName folds the spelling variants found in school registers
// onto one office name: gender suffixes ("- بنين", "- بنات") are dropped and
// common prefixes are normalized. Blank names become "Unknown".
func StandardizeOfficeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown"
	}
	name = genderSuffix.ReplaceAllString(name, "")
	for _, fix := range prefixFixes {
		name = strings.ReplaceAll(name, fix[0], fix[1])
	}
	return strings.TrimSpace(name)
}
