package main

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is a named RTT sample sequence in milliseconds, in the order the
// probes appear in the file at Path.
type Series struct {
	Name    string
	Path    string
	Samples []float64
}

// Summary holds the descriptive statistics printed for a series.
type Summary struct {
	Name   string
	Count  int
	Min    float64
	Mean   float64
	Max    float64
	StdDev float64
	P95    float64
	P99    float64
}

// Summarize computes the summary of a non-empty series. StdDev is the
// population standard deviation.
func Summarize(s Series) Summary {
	return Summary{
		Name:   s.Name,
		Count:  len(s.Samples),
		Min:    floats.Min(s.Samples),
		Mean:   stat.Mean(s.Samples, nil),
		Max:    floats.Max(s.Samples),
		StdDev: stat.PopStdDev(s.Samples, nil),
		P95:    Percentile(s.Samples, 95),
		P99:    Percentile(s.Samples, 99),
	}
}

// Percentile returns the p-th percentile of values, interpolating linearly
// between the two order statistics around the fractional index p/100*(n-1).
// values is not modified. NaN is returned for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// RollingValue is one entry of a rolling statistic. Valid is false until the
// window has filled.
type RollingValue struct {
	Value float64
	Valid bool
}

// RollingStdDev returns the population standard deviation of each trailing
// window of values. The result is empty when there are fewer values than the
// window; otherwise it has one entry per value with the first window-1
// entries invalid.
func RollingStdDev(values []float64, window int) []RollingValue {
	if window < 1 || len(values) < window {
		return nil
	}
	out := make([]RollingValue, len(values))
	for i := window - 1; i < len(values); i++ {
		out[i] = RollingValue{Value: popStdDev(values[i-window+1 : i+1]), Valid: true}
	}
	return out
}

// popStdDev is exact for constant windows, where a mean that does not
// round-trip would otherwise leave a tiny non-zero residue.
func popStdDev(window []float64) float64 {
	first := window[0]
	constant := true
	for _, v := range window[1:] {
		if v != first {
			constant = false
			break
		}
	}
	if constant {
		return 0
	}
	return stat.PopStdDev(window, nil)
}

// Bin is a histogram bucket covering [Lo, Hi). The last bin of a histogram
// also includes Hi.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// HistogramBins counts values into n equal-width bins spanning [lo, hi].
// Values outside the range are ignored. A zero-width range is widened by 0.5
// on each side.
func HistogramBins(values []float64, n int, lo, hi float64) []Bin {
	if n < 1 {
		return nil
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[n-1].Hi = hi

	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}

// BoxStats describes a box-and-whisker glyph.
type BoxStats struct {
	Q1        float64
	Median    float64
	Q3        float64
	WhiskerLo float64
	WhiskerHi float64
	Outliers  []float64
}

// Box computes quartiles with the Percentile rule. Whiskers end at the most
// extreme samples within 1.5 IQR of the box; anything beyond is an outlier.
func Box(values []float64) BoxStats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	b := BoxStats{
		Q1:     percentileSorted(sorted, 25),
		Median: percentileSorted(sorted, 50),
		Q3:     percentileSorted(sorted, 75),
	}
	iqr := b.Q3 - b.Q1
	loFence := b.Q1 - 1.5*iqr
	hiFence := b.Q3 + 1.5*iqr

	b.WhiskerLo, b.WhiskerHi = b.Q1, b.Q3
	for _, v := range sorted {
		if v >= loFence {
			b.WhiskerLo = math.Min(v, b.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= hiFence {
			b.WhiskerHi = math.Max(sorted[i], b.Q3)
			break
		}
	}
	for _, v := range sorted {
		if v < loFence || v > hiFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}

// CDF returns the empirical cumulative distribution of values: the sorted
// samples and, for the k-th of n, the fraction k/n.
func CDF(values []float64) ([]float64, []float64) {
	xs := make([]float64, len(values))
	copy(xs, values)
	sort.Float64s(xs)

	ys := make([]float64, len(xs))
	n := float64(len(xs))
	for i := range xs {
		ys[i] = float64(i+1) / n
	}
	return xs, ys
}
