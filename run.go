package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Run compares the ping outputs at baselinePath and aggressivePath. Both are
// parsed before anything is written, so an unparsable input leaves no
// output behind.
func Run(ctx context.Context, config *Config, baselinePath, aggressivePath string, stdout io.Writer) error {
	baseline, err := loadSeries(config.RTTCompare.Labels.Baseline, baselinePath)
	if err != nil {
		return err
	}
	aggressive, err := loadSeries(config.RTTCompare.Labels.Aggressive, aggressivePath)
	if err != nil {
		return err
	}
	data := []Series{baseline, aggressive}
	for _, s := range data {
		logger.Info().Str("series", s.Name).Str("file", s.Path).Int("samples", len(s.Samples)).Msg("parsed ping output")
	}

	outDir := config.RTTCompare.OutDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	paths, err := RenderAll(ctx, outDir, data, ChartOptionsFromConfig(config))
	if err != nil {
		return errors.Wrap(err, "render charts")
	}
	logger.Info().Str("outdir", outDir).Int("charts", len(paths)).Msg("charts written")

	summaries := make([]Summary, len(data))
	for i, s := range data {
		summaries[i] = Summarize(s)
	}
	if err := WriteSummary(stdout, summaries...); err != nil {
		return errors.Wrap(err, "write summary")
	}

	exporter, err := NewExporter(config)
	if err != nil {
		return err
	}
	if exporter == nil {
		return nil
	}
	defer exporter.Close()
	if err := exporter.Export(ctx, data, summaries); err != nil {
		logger.Error().Err(err).Msg("influxdb export failed")
		return err
	}
	return nil
}
