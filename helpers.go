package main

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Helper functions to derive chart axes
func findMin(values ...[]float64) float64 {
	minVal := math.Inf(1)
	for _, vs := range values {
		for _, v := range vs {
			if v < minVal {
				minVal = v
			}
		}
	}
	return minVal
}

func findMax(values ...[]float64) float64 {
	maxVal := math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	return maxVal
}

// axisRange pads [lo, hi] by 5% of its span on both sides, or by 0.5 when the
// span is zero, since the chart library rejects empty ranges.
func axisRange(lo, hi float64) *chart.ContinuousRange {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		lo, hi = 0, 1
	}
	if hi <= lo {
		return &chart.ContinuousRange{Min: lo - 0.5, Max: lo + 0.5}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// countRange starts at zero and leaves headroom above hi.
func countRange(hi float64) *chart.ContinuousRange {
	if math.IsInf(hi, 0) || hi <= 0 {
		hi = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: hi * 1.05}
}

// categoryAxis places labelled ticks on an x-axis spanning [lo, hi]. The
// chart library sizes an axis with explicit ticks from its first and last
// tick, so unlabelled ticks pin both ends.
func categoryAxis(lo, hi float64, ticks []chart.Tick) chart.XAxis {
	bounded := make([]chart.Tick, 0, len(ticks)+2)
	bounded = append(bounded, chart.Tick{Value: lo})
	bounded = append(bounded, ticks...)
	bounded = append(bounded, chart.Tick{Value: hi})
	return chart.XAxis{
		Range: &chart.ContinuousRange{Min: lo, Max: hi},
		Ticks: bounded,
	}
}
