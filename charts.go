package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"
)

// Output file names, fixed so downstream reports can link them.
const (
	HistogramFile   = "rtt_histogram.png"
	BoxPlotFile     = "rtt_boxplot.png"
	TimeSeriesFile  = "rtt_timeseries.png"
	CDFFile         = "rtt_cdf.png"
	PercentilesFile = "rtt_percentiles_p95_p99.png"
	JitterFile      = "rtt_jitter_rolling_std.png"
)

// ChartOptions controls the rendering of every chart.
type ChartOptions struct {
	Width        int
	Height       int
	DPI          float64
	Bins         int
	SharedBins   bool
	JitterWindow int
	Workers      int
}

// ChartOptionsFromConfig extracts the rendering options from config.
func ChartOptionsFromConfig(config *Config) ChartOptions {
	return ChartOptions{
		Width:        config.Render.Width,
		Height:       config.Render.Height,
		DPI:          config.Render.DPI,
		Bins:         config.RTTCompare.Bins,
		SharedBins:   config.RTTCompare.SharedBins,
		JitterWindow: config.RTTCompare.JitterWindow,
		Workers:      config.RTTCompare.Workers,
	}
}

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
}

func seriesColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

func lineStyle(i int) chart.Style {
	return chart.Style{
		StrokeColor: seriesColor(i),
		StrokeWidth: 2,
	}
}

// fillStyle is translucent so overlapping areas stay visible.
func fillStyle(i int) chart.Style {
	return chart.Style{
		StrokeColor: seriesColor(i),
		StrokeWidth: 1,
		FillColor:   seriesColor(i).WithAlpha(150),
	}
}

type chartBuilder func(data []Series, opts ChartOptions) chart.Chart

var charts = []struct {
	file  string
	build chartBuilder
}{
	{HistogramFile, histogramChart},
	{BoxPlotFile, boxPlotChart},
	{TimeSeriesFile, timeSeriesChart},
	{CDFFile, cdfChart},
	{PercentilesFile, percentilesChart},
	{JitterFile, jitterChart},
}

// RenderAll writes the six comparison charts for data into outDir and
// returns their paths. Up to opts.Workers charts render at once; the first
// failure cancels the charts not yet started.
func RenderAll(ctx context.Context, outDir string, data []Series, opts ChartOptions) ([]string, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	paths := make([]string, len(charts))
	for i, c := range charts {
		c := c
		path := filepath.Join(outDir, c.file)
		paths[i] = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeChart(path, c.build(data, opts)); err != nil {
				return err
			}
			logger.Debug().Str("path", path).Msg("chart written")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// writeChart renders ch as PNG into path. The file is always closed and is
// removed again if rendering fails.
func writeChart(path string, ch chart.Chart) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create chart")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := ch.Render(chart.PNG, file); err != nil {
		return errors.Wrapf(err, "render %s", filepath.Base(path))
	}
	return nil
}

func newChart(title string, opts ChartOptions) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		DPI:        opts.DPI,
		Background: chart.Style{Padding: chart.Box{Top: 80, Left: 24, Right: 32, Bottom: 24}},
	}
}

func withLegend(ch chart.Chart) chart.Chart {
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func samples(data []Series) [][]float64 {
	out := make([][]float64, len(data))
	for i, s := range data {
		out[i] = s.Samples
	}
	return out
}

// stepOutline traces the top of a bar histogram starting and ending on the
// zero line, so a filled line series draws the bars.
func stepOutline(bins []Bin) ([]float64, []float64) {
	xs := make([]float64, 0, 2*len(bins)+2)
	ys := make([]float64, 0, 2*len(bins)+2)
	xs = append(xs, bins[0].Lo)
	ys = append(ys, 0)
	for _, b := range bins {
		xs = append(xs, b.Lo, b.Hi)
		ys = append(ys, float64(b.Count), float64(b.Count))
	}
	xs = append(xs, bins[len(bins)-1].Hi)
	ys = append(ys, 0)
	return xs, ys
}

func histogramChart(data []Series, opts ChartOptions) chart.Chart {
	all := samples(data)
	sharedLo, sharedHi := findMin(all...), findMax(all...)

	var series []chart.Series
	var edges [][]float64
	maxCount := 0.0
	for i, s := range data {
		lo, hi := findMin(s.Samples), findMax(s.Samples)
		if opts.SharedBins {
			lo, hi = sharedLo, sharedHi
		}
		xs, ys := stepOutline(HistogramBins(s.Samples, opts.Bins, lo, hi))
		edges = append(edges, xs)
		maxCount = max(maxCount, findMax(ys))
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   fillStyle(i),
			XValues: xs,
			YValues: ys,
		})
	}

	ch := newChart("RTT Histogram", opts)
	ch.XAxis = chart.XAxis{Name: "RTT (ms)", Range: axisRange(findMin(edges...), findMax(edges...))}
	ch.YAxis = chart.YAxis{Name: "Count", Range: countRange(maxCount)}
	ch.Series = series
	return withLegend(ch)
}

const boxHalfWidth = 0.25

func segment(x0, y0, x1, y1 float64, style chart.Style) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Style:   style,
		XValues: []float64{x0, x1},
		YValues: []float64{y0, y1},
	}
}

func boxPlotChart(data []Series, opts ChartOptions) chart.Chart {
	var series []chart.Series
	ticks := make([]chart.Tick, len(data))
	medianStyle := chart.Style{StrokeColor: chart.ColorBlack, StrokeWidth: 3}

	for i, s := range data {
		x := float64(i + 1)
		b := Box(s.Samples)
		st := lineStyle(i)
		l, r := x-boxHalfWidth, x+boxHalfWidth

		series = append(series,
			chart.ContinuousSeries{
				Style:   st,
				XValues: []float64{l, r, r, l, l},
				YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1},
			},
			segment(l, b.Median, r, b.Median, medianStyle),
			segment(x, b.Q1, x, b.WhiskerLo, st),
			segment(x, b.Q3, x, b.WhiskerHi, st),
			segment(x-boxHalfWidth/2, b.WhiskerLo, x+boxHalfWidth/2, b.WhiskerLo, st),
			segment(x-boxHalfWidth/2, b.WhiskerHi, x+boxHalfWidth/2, b.WhiskerHi, st),
		)
		if len(b.Outliers) > 0 {
			xs := make([]float64, len(b.Outliers))
			for j := range xs {
				xs[j] = x
			}
			series = append(series, chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
					DotColor:    seriesColor(i),
				},
				XValues: xs,
				YValues: b.Outliers,
			})
		}
		ticks[i] = chart.Tick{Value: x, Label: s.Name}
	}

	all := samples(data)
	ch := newChart("RTT Distribution Comparison", opts)
	ch.XAxis = categoryAxis(0.5, float64(len(data))+0.5, ticks)
	ch.YAxis = chart.YAxis{Name: "RTT (ms)", Range: axisRange(findMin(all...), findMax(all...))}
	ch.Series = series
	return ch
}

func timeSeriesChart(data []Series, opts ChartOptions) chart.Chart {
	var series []chart.Series
	longest := 0
	for i, s := range data {
		xs := make([]float64, len(s.Samples))
		for j := range xs {
			xs[j] = float64(j + 1)
		}
		longest = max(longest, len(xs))
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   lineStyle(i),
			XValues: xs,
			YValues: s.Samples,
		})
	}

	all := samples(data)
	ch := newChart("RTT per packet", opts)
	ch.XAxis = chart.XAxis{Name: "ICMP Sequence", Range: axisRange(1, float64(longest))}
	ch.YAxis = chart.YAxis{Name: "RTT (ms)", Range: axisRange(findMin(all...), findMax(all...))}
	ch.Series = series
	return withLegend(ch)
}

func cdfChart(data []Series, opts ChartOptions) chart.Chart {
	var series []chart.Series
	for i, s := range data {
		xs, ys := CDF(s.Samples)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   lineStyle(i),
			XValues: xs,
			YValues: ys,
		})
	}

	all := samples(data)
	ch := newChart("RTT CDF", opts)
	ch.XAxis = chart.XAxis{Name: "RTT (ms)", Range: axisRange(findMin(all...), findMax(all...))}
	ch.YAxis = chart.YAxis{Name: "CDF", Range: &chart.ContinuousRange{Min: 0, Max: 1.05}}
	ch.Series = series
	return withLegend(ch)
}

var tailPercentiles = []float64{95, 99}

// percentilesChart groups one bar per series under each percentile.
func percentilesChart(data []Series, opts ChartOptions) chart.Chart {
	const groupWidth = 0.7
	barWidth := groupWidth / float64(len(data))

	var series []chart.Series
	highest := 0.0
	for i, s := range data {
		left := -groupWidth/2 + float64(i)*barWidth
		var xs, ys []float64
		for g, p := range tailPercentiles {
			v := Percentile(s.Samples, p)
			highest = max(highest, v)
			x0 := float64(g) + left
			x1 := x0 + barWidth
			xs = append(xs, x0, x0, x1, x1)
			ys = append(ys, 0, v, v, 0)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   fillStyle(i),
			XValues: xs,
			YValues: ys,
		})
	}

	ticks := make([]chart.Tick, len(tailPercentiles))
	for g, p := range tailPercentiles {
		ticks[g] = chart.Tick{Value: float64(g), Label: fmt.Sprintf("p%g", p)}
	}

	ch := newChart("Tail RTT Comparison (Percentiles)", opts)
	ch.XAxis = categoryAxis(-0.6, float64(len(tailPercentiles))-0.4, ticks)
	ch.YAxis = chart.YAxis{Name: "RTT (ms)", Range: countRange(highest)}
	ch.Series = series
	return withLegend(ch)
}

// jitterChart plots the rolling standard deviation of each series against
// its 0-based sample index. Series too short for one window are left out.
func jitterChart(data []Series, opts ChartOptions) chart.Chart {
	var series []chart.Series
	var xsAll, ysAll [][]float64
	for i, s := range data {
		var xs, ys []float64
		for j, v := range RollingStdDev(s.Samples, opts.JitterWindow) {
			if !v.Valid {
				continue
			}
			xs = append(xs, float64(j))
			ys = append(ys, v.Value)
		}
		if len(xs) == 0 {
			continue
		}
		xsAll = append(xsAll, xs)
		ysAll = append(ysAll, ys)
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%s (rolling std, w=%d)", s.Name, opts.JitterWindow),
			Style:   lineStyle(i),
			XValues: xs,
			YValues: ys,
		})
	}

	ch := newChart("Jitter Over Time (Rolling STD of RTT)", opts)
	ch.XAxis = chart.XAxis{Name: "ICMP sequence index", Range: axisRange(findMin(xsAll...), findMax(xsAll...))}
	ch.YAxis = chart.YAxis{Name: "Rolling std of RTT (ms)", Range: countRange(findMax(ysAll...))}
	if len(series) == 0 {
		ch.XAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
		ch.Series = []chart.Series{chart.AnnotationSeries{
			Annotations: []chart.Value2{{
				XValue: 0.25,
				YValue: 0.5,
				Label:  fmt.Sprintf("not enough samples for a %d-sample window", opts.JitterWindow),
			}},
		}}
		return ch
	}
	ch.Series = series
	return withLegend(ch)
}
