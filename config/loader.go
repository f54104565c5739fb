package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tpalab/regeval/pkg/errors"
)

// EnvPrefix prefixes environment variables, e.g. REGEVAL_CV_SEED.
const EnvPrefix = "REGEVAL"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file without overriding variables already set.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string         // explicit config file, must exist when set
	EnvFile    string         // explicit .env file, must exist when set
	Overrides  map[string]any // viper keys set last, e.g. from CLI flags
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithOverride sets key (dotted viper form, e.g. "cv.seed") after every
// other source has been read.
func WithOverride(key string, value any) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Overrides == nil {
			lc.Overrides = make(map[string]any)
		}
		lc.Overrides[key] = value
	}
}

var (
	configSearchPaths = []string{"./regeval.yml", "./regeval.yaml", "./config/regeval.yml"}
	envSearchPaths    = []string{"./.env.regeval", "./.env"}
)

// Load resolves configuration with increasing precedence: defaults, config
// file, .env and REGEVAL_* environment variables, then overrides.
func Load(opts ...LoaderOption) (*Config, error) {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	configFile := lc.ConfigFile
	if configFile != "" && !lc.FileSystem.Exists(configFile) {
		return nil, errors.Newf("config file %s not found", configFile)
	}
	if configFile == "" {
		configFile = firstExisting(lc.FileSystem, configSearchPaths)
	}

	envFile := lc.EnvFile
	if envFile != "" && !lc.FileSystem.Exists(envFile) {
		return nil, errors.Newf("env file %s not found", envFile)
	}
	if envFile == "" {
		envFile = firstExisting(lc.FileSystem, envSearchPaths)
	}

	v := viper.New()
	setDefaults(v, Default())

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configFile)
		}
	}

	if envFile != "" {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			return nil, errors.Wrapf(err, "load env file %s", envFile)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range lc.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal.
func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("dataset.path", def.Dataset.Path)
	v.SetDefault("dataset.leading_columns", def.Dataset.LeadingColumns)
	v.SetDefault("dataset.label", def.Dataset.Label)
	v.SetDefault("dataset.identifier", def.Dataset.Identifier)
	v.SetDefault("dataset.add_constant", def.Dataset.AddConstant)
	v.SetDefault("cv.splits", def.CV.Splits)
	v.SetDefault("cv.seed", def.CV.Seed)
	v.SetDefault("cv.shuffle", def.CV.Shuffle)
	v.SetDefault("elastic_net.alpha", def.ElasticNet.Alpha)
	v.SetDefault("elastic_net.l1_ratio", def.ElasticNet.L1Ratio)
	v.SetDefault("elastic_net.max_iter", def.ElasticNet.MaxIter)
	v.SetDefault("elastic_net.tol", def.ElasticNet.Tol)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("plot.dir", def.Plot.Dir)
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}
