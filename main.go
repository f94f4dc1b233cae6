package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagValues holds the command line. Flags the user sets override the config
// file, which overrides the built-in defaults.
type flagValues struct {
	configPath   string
	baseline     string
	aggressive   string
	outDir       string
	bins         int
	jitterWindow int
	sharedBins   bool
	workers      int
	logLevel     string
}

func (f *flagValues) apply(flags *pflag.FlagSet, config *Config) {
	if flags.Changed("outdir") {
		config.RTTCompare.OutDir = f.outDir
	}
	if flags.Changed("bins") {
		config.RTTCompare.Bins = f.bins
	}
	if flags.Changed("jitter_window") {
		config.RTTCompare.JitterWindow = f.jitterWindow
	}
	if flags.Changed("shared-bins") {
		config.RTTCompare.SharedBins = f.sharedBins
	}
	if flags.Changed("workers") {
		config.RTTCompare.Workers = f.workers
	}
	if flags.Changed("log-level") {
		config.Logging.Level = f.logLevel
	}
}

func newRootCmd() *cobra.Command {
	var f flagValues

	cmd := &cobra.Command{
		Use:   "rttcompare --baseline FILE --aggressive FILE",
		Short: "Compare the RTT of two ping runs",
		Long: "rttcompare parses the RTT of every reply in two ping outputs and renders histogram, " +
			"box plot, time series, CDF, tail percentile and rolling jitter charts as PNG files.",
		Args: cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(f.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), config)
			if err := config.Validate(); err != nil {
				return err
			}

			closeLog, err := setupLogging(config)
			if err != nil {
				return err
			}
			defer closeLog()

			return Run(cmd.Context(), config, f.baseline, f.aggressive, cmd.OutOrStdout())
		},
	}

	defaults := DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&f.baseline, "baseline", "", "path to baseline ping output")
	flags.StringVar(&f.aggressive, "aggressive", "", "path to aggressive ping output")
	flags.StringVar(&f.outDir, "outdir", defaults.RTTCompare.OutDir, "output folder for PNGs")
	flags.IntVar(&f.bins, "bins", defaults.RTTCompare.Bins, "histogram bins")
	flags.IntVar(&f.jitterWindow, "jitter_window", defaults.RTTCompare.JitterWindow, "rolling std window")
	flags.BoolVar(&f.sharedBins, "shared-bins", defaults.RTTCompare.SharedBins, "align histogram bins of both series over their joint range")
	flags.IntVar(&f.workers, "workers", defaults.RTTCompare.Workers, "charts rendered concurrently")
	flags.StringVarP(&f.configPath, "config", "c", "", "path to YAML config file")
	flags.StringVar(&f.logLevel, "log-level", defaults.Logging.Level, "log level: debug, info, warning, error, fatal")
	_ = cmd.MarkFlagRequired("baseline")
	_ = cmd.MarkFlagRequired("aggressive")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
