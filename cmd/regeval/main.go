// Command regeval fits OLS and Lasso models to a Stata table and prints
// in-sample metrics and cross-validation scores.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tpalab/regeval/config"
	"github.com/tpalab/regeval/dataset"
	"github.com/tpalab/regeval/evaluate"
	"github.com/tpalab/regeval/pkg/errors"
	"github.com/tpalab/regeval/pkg/log"
	"github.com/tpalab/regeval/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		log.GetLogger().Error("regeval failed", err, log.ErrorCodeKey, log.ErrorCode(err))
		stop()
		os.Exit(1)
	}
}

type flags struct {
	configFile string
	envFile    string
	data       string
	seed       uint64
	plotDir    string
	logLevel   string
	logFormat  string
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "regeval",
		Short:         "Evaluate OLS and Lasso regressions on a Stata dataset",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(loaderOptions(cmd, f)...)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg.Log, logOut); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configFile, "config", "", "YAML config file (default: ./regeval.yml if present)")
	fs.StringVar(&f.envFile, "env-file", "", ".env file (default: ./.env if present)")
	fs.StringVar(&f.data, "data", "", "Stata .dta or .dta.xz file")
	fs.Uint64Var(&f.seed, "seed", 0, "cross-validation shuffle seed")
	fs.StringVar(&f.plotDir, "plot-dir", "", "write diagnostic plots into this directory")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "", "console or json")
	return cmd
}

// loaderOptions maps explicitly set flags onto config overrides.
func loaderOptions(cmd *cobra.Command, f flags) []config.LoaderOption {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	changed := cmd.Flags().Changed
	if changed("data") {
		opts = append(opts, config.WithOverride("dataset.path", f.data))
	}
	if changed("seed") {
		opts = append(opts, config.WithOverride("cv.seed", f.seed))
	}
	if changed("plot-dir") {
		opts = append(opts, config.WithOverride("plot.dir", f.plotDir))
	}
	if changed("log-level") {
		opts = append(opts, config.WithOverride("log.level", f.logLevel))
	}
	if changed("log-format") {
		opts = append(opts, config.WithOverride("log.format", f.logFormat))
	}
	return opts
}

func setupLogging(cfg config.LogConfig, w io.Writer) error {
	if err := log.SetupLogger(cfg.Level, cfg.Format, w); err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	log.RegisterWarningSink(log.NewZerologLogger(w, level, cfg.Format))
	return nil
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := log.GetLogger().With(log.ComponentKey, "regeval")

	tbl, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	clean := tbl.DropNA()
	logger.Info("dropped rows with missing values",
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, clean.Len(),
		log.DroppedKey, tbl.Len()-clean.Len(),
	)

	X, y, features, err := cfg.Dataset.Design().Build(clean)
	if err != nil {
		return errors.Wrapf(err, "build design matrix from %s", cfg.Dataset.Path)
	}
	logger.Debug("design matrix built", log.FeaturesKey, len(features), "features", features)

	_, err = evaluate.Run(ctx, cfg, X, y, features, evaluate.DefaultSpecs(cfg.ElasticNet), report.New(out))
	return err
}
