package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/pkg/errors"
)

const exportBatchSize = 5000

// pointWriter is the part of the InfluxDB blocking write API the exporter
// needs.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Exporter writes parsed samples and their summaries to InfluxDB.
type Exporter struct {
	writer      pointWriter
	measurement string
	source      string
	run         string
	start       time.Time
	interval    time.Duration
	close       func()
}

// NewExporter connects to the InfluxDB configured in config. It returns nil
// when no host is configured.
func NewExporter(config *Config) (*Exporter, error) {
	if config.InfluxDB.Host == "" {
		return nil, nil
	}
	interval, err := config.pingInterval()
	if err != nil {
		return nil, err
	}

	scheme := "http"
	if config.InfluxDB.TLS {
		scheme = "https"
	}
	options := influxdb2.DefaultOptions()
	options.SetPrecision(time.Millisecond)
	options.SetHTTPRequestTimeout(30)

	influxURL := fmt.Sprintf("%s://%s:%d", scheme, config.InfluxDB.Host, config.InfluxDB.Port)
	client := influxdb2.NewClientWithOptions(influxURL, config.InfluxDB.Token, options)

	e := newExporter(client.WriteAPIBlocking(config.InfluxDB.Org, config.InfluxDB.Bucket),
		config.InfluxDB.Measurement, interval)
	e.close = client.Close
	logger.Info().Str("url", influxURL).Str("bucket", config.InfluxDB.Bucket).Str("run", e.run).Msg("influxdb export enabled")
	return e, nil
}

func newExporter(w pointWriter, measurement string, interval time.Duration) *Exporter {
	source, err := os.Hostname()
	if err != nil {
		source = "unknown"
	}
	return &Exporter{
		writer:      w,
		measurement: measurement,
		source:      source,
		run:         uuid.NewString(),
		start:       time.Now(),
		interval:    interval,
	}
}

// Close releases the InfluxDB client.
func (e *Exporter) Close() {
	if e.close != nil {
		e.close()
	}
}

func (e *Exporter) tags(s Series) map[string]string {
	return map[string]string{
		"source": e.source,
		"series": s.Name,
		"file":   filepath.Base(s.Path),
		"run":    e.run,
	}
}

// samplePoints builds one point per sample. Ping output carries no clock, so
// sample i is placed i intervals after the run start.
func (e *Exporter) samplePoints(s Series) []*write.Point {
	tags := e.tags(s)
	points := make([]*write.Point, len(s.Samples))
	for i, rtt := range s.Samples {
		points[i] = influxdb2.NewPoint(
			e.measurement,
			tags,
			map[string]interface{}{
				"rtt_ms": rtt,
				"seq":    i + 1,
			},
			e.start.Add(time.Duration(i)*e.interval),
		)
	}
	return points
}

func (e *Exporter) summaryPoint(s Series, sum Summary) *write.Point {
	return influxdb2.NewPoint(
		fmt.Sprintf("%s_summary", e.measurement),
		e.tags(s),
		map[string]interface{}{
			"count":  sum.Count,
			"min_ms": sum.Min,
			"avg_ms": sum.Mean,
			"max_ms": sum.Max,
			"std_ms": sum.StdDev,
			"p95_ms": sum.P95,
			"p99_ms": sum.P99,
		},
		e.start,
	)
}

// Export writes every sample of each series followed by its summary.
func (e *Exporter) Export(ctx context.Context, series []Series, summaries []Summary) error {
	for i, s := range series {
		points := append(e.samplePoints(s), e.summaryPoint(s, summaries[i]))
		for len(points) > 0 {
			n := min(exportBatchSize, len(points))
			if err := e.writer.WritePoint(ctx, points[:n]...); err != nil {
				return errors.Wrapf(err, "export %s", s.Name)
			}
			points = points[n:]
		}
		logger.Info().Str("series", s.Name).Int("points", len(s.Samples)+1).Msg("exported to influxdb")
	}
	return nil
}
