package charts

import (
	"fmt"
)

// HistogramBins is the number of equal-width bins used by Histogram.
const HistogramBins = 15

// Bin is a half-open interval [Lower, Upper) except for the last bin, which
// also holds Upper.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Bins splits distances into n equal-width bins over [min, max]. When every
// value is the same a single bin holds them all.
func Bins(distances []float64, n int) []Bin {
	if len(distances) == 0 || n < 1 {
		return nil
	}
	lo, hi := distances[0], distances[0]
	for _, d := range distances[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(distances)}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, d := range distances {
		idx := int((d - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

// Histogram draws the frequency of distances. methodLabel names the metric in
// the titles and defaults to Haversine. An empty sequence yields nil.
func Histogram(distances []float64, methodLabel string) *Chart {
	if len(distances) == 0 {
		return nil
	}
	if methodLabel == "" {
		methodLabel = "Haversine"
	}

	bins := Bins(distances, HistogramBins)
	c := &Chart{
		Title:         fmt.Sprintf("Distribution of %s Distances Between Schools", methodLabel),
		XAxisTitle:    fmt.Sprintf("%s Distance (km)", methodLabel),
		YAxisTitle:    "Frequency",
		LabelRotation: 45,
		Bars:          make([]Bar, len(bins)),
	}
	for i, b := range bins {
		label := fmt.Sprintf("%.2f-%.2f", b.Lower, b.Upper)
		if b.Lower == b.Upper {
			label = fmt.Sprintf("%.2f", b.Lower)
		}
		c.Bars[i] = Bar{Label: label, Value: float64(b.Count)}
	}
	return c
}
