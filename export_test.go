package main

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	batches [][]*write.Point
	err     error
}

func (f *fakeWriter) WritePoint(_ context.Context, point ...*write.Point) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, point)
	return nil
}

func (f *fakeWriter) lines() []string {
	var out []string
	for _, b := range f.batches {
		for _, p := range b {
			out = append(out, strings.TrimSpace(write.PointToLineProtocol(p, time.Millisecond)))
		}
	}
	return out
}

func TestNewExporterDisabledWithoutHost(t *testing.T) {
	e, err := NewExporter(DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestNewExporter(t *testing.T) {
	config := DefaultConfig()
	config.InfluxDB.Host = "localhost"
	config.InfluxDB.PingInterval = "500ms"

	e, err := NewExporter(config)
	require.NoError(t, err)
	require.NotNil(t, e)
	defer e.Close()
	assert.Equal(t, 500*time.Millisecond, e.interval)
	assert.Equal(t, "rtt", e.measurement)
	assert.NotEmpty(t, e.run)
}

func TestExport(t *testing.T) {
	w := &fakeWriter{}
	e := newExporter(w, "rtt", time.Second)
	e.source = "probe-1"
	e.run = "run-1"
	e.start = time.Unix(1700000000, 0)

	series := []Series{
		{Name: "Baseline", Path: "/tmp/base.txt", Samples: []float64{10, 20, 30}},
		{Name: "Aggressive", Path: "agg.txt", Samples: []float64{40}},
	}
	summaries := []Summary{Summarize(series[0]), Summarize(series[1])}

	require.NoError(t, e.Export(context.Background(), series, summaries))

	lines := w.lines()
	require.Len(t, lines, 6)
	assert.Equal(t,
		"rtt,file=base.txt,run=run-1,series=Baseline,source=probe-1 rtt_ms=10,seq=1i 1700000000000",
		lines[0])
	assert.Equal(t,
		"rtt,file=base.txt,run=run-1,series=Baseline,source=probe-1 rtt_ms=30,seq=3i 1700000002000",
		lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "rtt_summary,file=base.txt,run=run-1,series=Baseline,source=probe-1 "))
	assert.Contains(t, lines[3], "count=3i")
	assert.Contains(t, lines[3], "p95_ms=29")
	assert.Contains(t, lines[5], "series=Aggressive")
}

func TestExportBatches(t *testing.T) {
	w := &fakeWriter{}
	e := newExporter(w, "rtt", time.Second)

	samples := make([]float64, exportBatchSize+500)
	for i := range samples {
		samples[i] = float64(i % 50)
	}
	s := Series{Name: "Baseline", Path: "base.txt", Samples: samples}

	require.NoError(t, e.Export(context.Background(), []Series{s}, []Summary{Summarize(s)}))
	require.Len(t, w.batches, 2)
	assert.Len(t, w.batches[0], exportBatchSize)
	assert.Len(t, w.batches[1], 501)
}

func TestExportError(t *testing.T) {
	w := &fakeWriter{err: fmt.Errorf("unauthorized")}
	e := newExporter(w, "rtt", time.Second)
	s := Series{Name: "Baseline", Samples: []float64{1}}

	err := e.Export(context.Background(), []Series{s}, []Summary{Summarize(s)})
	assert.ErrorContains(t, err, "export Baseline: unauthorized")
}
