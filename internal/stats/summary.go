package stats

import "math"

// Summary describes a raw distance sequence, e.g. the pairwise distances
// between selected schools.
type Summary struct {
	Count       int     `json:"count"`
	Min         float64 `json:"min_distance"`
	Max         float64 `json:"max_distance"`
	Average     float64 `json:"avg_distance"`
	Total       float64 `json:"total_distance"`
	MethodLabel string  `json:"method_label"`
}

// Summarize returns nil for an empty sequence.
func Summarize(distances []float64, methodLabel string) *Summary {
	if len(distances) == 0 {
		return nil
	}
	if methodLabel == "" {
		methodLabel = DefaultMethodLabel
	}
	s := &Summary{
		Count:       len(distances),
		Min:         math.Inf(1),
		Max:         math.Inf(-1),
		MethodLabel: methodLabel,
	}
	for _, d := range distances {
		s.Total += d
		s.Min = math.Min(s.Min, d)
		s.Max = math.Max(s.Max, d)
	}
	s.Average = s.Total / float64(len(distances))
	return s
}
