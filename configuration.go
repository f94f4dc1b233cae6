package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	RTTCompare struct {
		OutDir       string `yaml:"outdir"`
		Bins         int    `yaml:"bins"`
		JitterWindow int    `yaml:"jitter_window"`
		SharedBins   bool   `yaml:"shared_bins"`
		Workers      int    `yaml:"workers"`
		Labels       struct {
			Baseline   string `yaml:"baseline"`
			Aggressive string `yaml:"aggressive"`
		} `yaml:"labels"`
	} `yaml:"rttcompare"`

	Render struct {
		Width  int     `yaml:"width"`
		Height int     `yaml:"height"`
		DPI    float64 `yaml:"dpi"`
	} `yaml:"render"`

	Logging struct {
		Enabled bool   `yaml:"enabled"`
		Logfile string `yaml:"logfile"`
		Level   string `yaml:"level"`
	} `yaml:"logging"`

	InfluxDB struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		TLS          bool   `yaml:"tls"`
		Org          string `yaml:"org"`
		Bucket       string `yaml:"bucket"`
		Measurement  string `yaml:"measurement"`
		Token        string `yaml:"token"`
		PingInterval string `yaml:"ping_interval"`
	} `yaml:"influxdb"`
}

// DefaultConfig returns the configuration used when no config file is given.
// A 6.4x4.8in figure at 200 DPI is 1280x960 pixels.
func DefaultConfig() *Config {
	var config Config
	config.RTTCompare.OutDir = "graphs"
	config.RTTCompare.Bins = 25
	config.RTTCompare.JitterWindow = 10
	config.RTTCompare.Workers = 1
	config.RTTCompare.Labels.Baseline = "Baseline"
	config.RTTCompare.Labels.Aggressive = "Aggressive"

	config.Render.Width = 1280
	config.Render.Height = 960
	config.Render.DPI = 200

	config.Logging.Logfile = "rttcompare.log"
	config.Logging.Level = "info"

	config.InfluxDB.Port = 8086
	config.InfluxDB.TLS = true
	config.InfluxDB.Measurement = "rtt"
	config.InfluxDB.PingInterval = "1s"
	return &config
}

// ParseDuration parses a human-readable duration string
func ParseDuration(s string) (time.Duration, error) {
	// Handle hour notation specially
	if strings.HasSuffix(s, "hr") {
		h, err := strconv.Atoi(strings.TrimSuffix(s, "hr"))
		if err != nil {
			return 0, err
		}
		return time.Duration(h) * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// LoadConfig loads the application configuration from a YAML file on top of
// DefaultConfig. Keys missing from the file keep their default values.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()
	if filepath == "" {
		return config, nil
	}

	var data, err = os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", filepath)
	}

	return config, nil
}

// Validate rejects settings no run can succeed with.
func (c *Config) Validate() error {
	switch {
	case c.RTTCompare.Bins < 1:
		return errors.Errorf("bins must be positive, got %d", c.RTTCompare.Bins)
	case c.RTTCompare.JitterWindow < 1:
		return errors.Errorf("jitter window must be positive, got %d", c.RTTCompare.JitterWindow)
	case c.RTTCompare.Workers < 1:
		return errors.Errorf("workers must be positive, got %d", c.RTTCompare.Workers)
	case c.RTTCompare.OutDir == "":
		return errors.New("output directory must not be empty")
	case c.Render.Width < 1 || c.Render.Height < 1:
		return errors.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	case c.Render.DPI <= 0:
		return errors.Errorf("render dpi must be positive, got %v", c.Render.DPI)
	}
	if c.InfluxDB.Host != "" {
		if _, err := c.pingInterval(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) pingInterval() (time.Duration, error) {
	d, err := ParseDuration(c.InfluxDB.PingInterval)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid ping interval %q", c.InfluxDB.PingInterval)
	}
	if d <= 0 {
		return 0, errors.Errorf("ping interval must be positive, got %s", d)
	}
	return d, nil
}
