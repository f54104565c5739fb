// Package config loads evaluator settings from a YAML file, a .env file and
// REGEVAL_* environment variables.
package config

import (
	"strings"

	"github.com/tpalab/regeval/dataset"
	"github.com/tpalab/regeval/pkg/errors"
)

// Config is the complete evaluator configuration.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset" mapstructure:"dataset"`
	CV         CVConfig         `yaml:"cv" mapstructure:"cv"`
	ElasticNet ElasticNetConfig `yaml:"elastic_net" mapstructure:"elastic_net"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Plot       PlotConfig       `yaml:"plot" mapstructure:"plot"`
}

// DatasetConfig selects the input file and the design contract.
type DatasetConfig struct {
	Path           string `yaml:"path" mapstructure:"path"`
	LeadingColumns int    `yaml:"leading_columns" mapstructure:"leading_columns"`
	Label          string `yaml:"label" mapstructure:"label"`
	Identifier     string `yaml:"identifier" mapstructure:"identifier"`
	AddConstant    bool   `yaml:"add_constant" mapstructure:"add_constant"`
}

// Design returns the design contract described by c.
func (c DatasetConfig) Design() dataset.Design {
	return dataset.Design{
		LeadingColumns: c.LeadingColumns,
		Label:          c.Label,
		Identifier:     c.Identifier,
		AddConstant:    c.AddConstant,
	}
}

// CVConfig configures the k-fold splitter.
type CVConfig struct {
	Splits  int    `yaml:"splits" mapstructure:"splits"`
	Seed    uint64 `yaml:"seed" mapstructure:"seed"`
	Shuffle bool   `yaml:"shuffle" mapstructure:"shuffle"`
}

// ElasticNetConfig holds the ElasticNet hyperparameters.
type ElasticNetConfig struct {
	Alpha   float64 `yaml:"alpha" mapstructure:"alpha"`
	L1Ratio float64 `yaml:"l1_ratio" mapstructure:"l1_ratio"`
	MaxIter int     `yaml:"max_iter" mapstructure:"max_iter"`
	Tol     float64 `yaml:"tol" mapstructure:"tol"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// PlotConfig enables diagnostic plots when Dir is set.
type PlotConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// Default returns the configuration that reproduces the reference run.
func Default() Config {
	return Config{
		Dataset: DatasetConfig{
			Path:           "TPA_12_full.dta",
			LeadingColumns: 2,
			Identifier:     "code",
			AddConstant:    true,
		},
		CV: CVConfig{Splits: 5, Seed: 12345, Shuffle: true},
		ElasticNet: ElasticNetConfig{
			Alpha:   1.0,
			L1Ratio: 1.0,
			MaxIter: 1000,
			Tol:     1e-4,
		},
		Log: LogConfig{Level: "warn", Format: "console"},
	}
}

// ApplyDefaults fills fields whose zero value is never meaningful.
func (c *Config) ApplyDefaults() {
	def := Default()
	if c.Dataset.Path == "" {
		c.Dataset.Path = def.Dataset.Path
	}
	if c.CV.Splits == 0 {
		c.CV.Splits = def.CV.Splits
	}
	if c.ElasticNet.MaxIter == 0 {
		c.ElasticNet.MaxIter = def.ElasticNet.MaxIter
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Dataset.LeadingColumns < 0 {
		return errors.NewValidationError("dataset.leading_columns", "must be non-negative", c.Dataset.LeadingColumns)
	}
	if c.CV.Splits < 2 {
		return errors.NewValidationError("cv.splits", "must be at least 2", c.CV.Splits)
	}
	if c.ElasticNet.Alpha < 0 {
		return errors.NewValidationError("elastic_net.alpha", "must be non-negative", c.ElasticNet.Alpha)
	}
	if c.ElasticNet.L1Ratio < 0 || c.ElasticNet.L1Ratio > 1 {
		return errors.NewValidationError("elastic_net.l1_ratio", "must be in [0, 1]", c.ElasticNet.L1Ratio)
	}
	if c.ElasticNet.MaxIter < 1 {
		return errors.NewValidationError("elastic_net.max_iter", "must be positive", c.ElasticNet.MaxIter)
	}
	if c.ElasticNet.Tol < 0 {
		return errors.NewValidationError("elastic_net.tol", "must be non-negative", c.ElasticNet.Tol)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("log.level", "must be one of [debug, info, warn, error]", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.NewValidationError("log.format", "must be one of [json, console]", c.Log.Format)
	}
	return nil
}
