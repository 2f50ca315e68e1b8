// Package config loads the service configuration from a YAML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/accidentcast/forecaster/registry"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "ACCIDENTCAST"

var (
	ErrNoSeries          = errors.New("at least one series is required")
	ErrDuplicateSeries   = errors.New("series configured twice")
	ErrEmptySeriesKey    = errors.New("series key is required")
	ErrInvalidMaxHorizon = errors.New("max horizon days must be positive")
	ErrInvalidDashDays   = errors.New("dashboard days must be within the max horizon")
	ErrAddrRequired      = errors.New("server address is required")
)

// Config represents the complete service configuration
type Config struct {
	Logging  string         `yaml:"logging" default:"info"`
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Forecast ForecastConfig `yaml:"forecast"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	// Series defaults to the five historical series when left empty
	Series []SeriesConfig `yaml:"series"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" default:":8000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	// AllowedOrigins is a comma separated list of CORS origins
	AllowedOrigins string `yaml:"allowed_origins" default:"*"`
}

// DataConfig locates the model artifacts and the CSV inputs
type DataConfig struct {
	ModelsDir     string `yaml:"models_dir" default:"models"`
	RegressorsDir string `yaml:"regressors_dir" default:"data"`
	HistoryPath   string `yaml:"history_path" default:"data/nbr_acc_jour.csv"`
}

type ForecastConfig struct {
	MaxHorizonDays         int    `yaml:"max_horizon_days" default:"365"`
	DashboardDays          int    `yaml:"dashboard_days" default:"181"`
	MissingRegressorPolicy string `yaml:"missing_regressor_policy" default:"absent"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// SeriesConfig maps a series to its artifact. Model is relative to the models directory and
// defaults to the historical file name of the series.
type SeriesConfig struct {
	Key   string `yaml:"key"`
	Model string `yaml:"model"`
}

// env holds the environment overrides. Unset variables leave the loaded value untouched.
type env struct {
	Logging                string `envconfig:"LOG_LEVEL"`
	Addr                   string `envconfig:"ADDR"`
	ModelsDir              string `envconfig:"MODELS_DIR"`
	RegressorsDir          string `envconfig:"REGRESSORS_DIR"`
	HistoryPath            string `envconfig:"HISTORY_PATH"`
	MaxHorizonDays         int    `envconfig:"MAX_HORIZON_DAYS"`
	MissingRegressorPolicy string `envconfig:"MISSING_REGRESSOR_POLICY"`
}

// Load reads the YAML file at path, which may not exist, then applies the variables of a
// .env file in the working directory and of the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}

	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
				return nil, fmt.Errorf("unable to parse %s, %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if len(cfg.Series) == 0 {
		for _, key := range series.DefaultKeys() {
			cfg.Series = append(cfg.Series, SeriesConfig{Key: key.String()})
		}
	}
	for i := range cfg.Series {
		if cfg.Series[i].Model == "" {
			cfg.Series[i].Model = series.DefaultModelFile(series.Key(cfg.Series[i].Key))
		}
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return err
	}
	if e.Logging != "" {
		c.Logging = e.Logging
	}
	if e.Addr != "" {
		c.Server.Addr = e.Addr
	}
	if e.ModelsDir != "" {
		c.Data.ModelsDir = e.ModelsDir
	}
	if e.RegressorsDir != "" {
		c.Data.RegressorsDir = e.RegressorsDir
	}
	if e.HistoryPath != "" {
		c.Data.HistoryPath = e.HistoryPath
	}
	if e.MaxHorizonDays != 0 {
		c.Forecast.MaxHorizonDays = e.MaxHorizonDays
	}
	if e.MissingRegressorPolicy != "" {
		c.Forecast.MissingRegressorPolicy = e.MissingRegressorPolicy
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Logging); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return ErrAddrRequired
	}
	if c.Forecast.MaxHorizonDays <= 0 {
		return ErrInvalidMaxHorizon
	}
	if c.Forecast.DashboardDays < 1 || c.Forecast.DashboardDays > c.Forecast.MaxHorizonDays {
		return fmt.Errorf("%d not in [1, %d], %w", c.Forecast.DashboardDays, c.Forecast.MaxHorizonDays, ErrInvalidDashDays)
	}
	if _, err := service.ParseMissingPolicy(c.Forecast.MissingRegressorPolicy); err != nil {
		return err
	}
	if len(c.Series) == 0 {
		return ErrNoSeries
	}
	seen := make(map[string]struct{}, len(c.Series))
	for _, s := range c.Series {
		if s.Key == "" {
			return ErrEmptySeriesKey
		}
		if _, exists := seen[s.Key]; exists {
			return fmt.Errorf("%q, %w", s.Key, ErrDuplicateSeries)
		}
		seen[s.Key] = struct{}{}
	}
	return nil
}

// SeriesSet returns the configured series
func (c *Config) SeriesSet() series.Set {
	keys := make([]series.Key, len(c.Series))
	for i, s := range c.Series {
		keys[i] = series.Key(s.Key)
	}
	return series.NewSet(keys)
}

// Entries returns the registry entries of the configured series
func (c *Config) Entries() []registry.Entry {
	res := make([]registry.Entry, len(c.Series))
	for i, s := range c.Series {
		path := s.Model
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.Data.ModelsDir, path)
		}
		res[i] = registry.Entry{Key: series.Key(s.Key), Path: path}
	}
	return res
}

// ServiceOptions returns the forecast service options
func (c *Config) ServiceOptions() (service.Options, error) {
	policy, err := service.ParseMissingPolicy(c.Forecast.MissingRegressorPolicy)
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{
		MaxHorizonDays: c.Forecast.MaxHorizonDays,
		MissingPolicy:  policy,
	}, nil
}
