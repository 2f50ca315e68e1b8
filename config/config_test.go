package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/accidentcast/forecaster/registry"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Logging)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "models", cfg.Data.ModelsDir)
	assert.Equal(t, "data/nbr_acc_jour.csv", cfg.Data.HistoryPath)
	assert.Equal(t, 365, cfg.Forecast.MaxHorizonDays)
	assert.Equal(t, 181, cfg.Forecast.DashboardDays)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, series.DefaultKeys(), cfg.SeriesSet().Keys())

	entries := cfg.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, registry.Entry{
		Key:  series.TotalAccidents,
		Path: filepath.Join("models", "Prophet_model_tot_acc.json"),
	}, entries[0])

	opt, err := cfg.ServiceOptions()
	require.NoError(t, err)
	assert.Equal(t, service.Options{MaxHorizonDays: 365, MissingPolicy: service.PolicyAbsent}, opt)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "config.yaml", `
logging: debug
server:
  addr: ":9000"
data:
  models_dir: /srv/models
forecast:
  max_horizon_days: 200
  dashboard_days: 90
metrics:
  enabled: false
series:
  - key: total_accidents
  - key: custom
    model: custom_model.json
`)
	writeFile(t, dir, ".env", "ACCIDENTCAST_REGRESSORS_DIR=/srv/regressors\n")
	t.Cleanup(func() { os.Unsetenv("ACCIDENTCAST_REGRESSORS_DIR") })
	t.Setenv("ACCIDENTCAST_ADDR", ":9100")
	t.Setenv("ACCIDENTCAST_MISSING_REGRESSOR_POLICY", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Logging)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, "/srv/models", cfg.Data.ModelsDir)
	assert.Equal(t, "/srv/regressors", cfg.Data.RegressorsDir)
	assert.Equal(t, 200, cfg.Forecast.MaxHorizonDays)
	assert.Equal(t, 90, cfg.Forecast.DashboardDays)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, []registry.Entry{
		{Key: series.TotalAccidents, Path: "/srv/models/Prophet_model_tot_acc.json"},
		{Key: "custom", Path: "/srv/models/custom_model.json"},
	}, cfg.Entries())

	opt, err := cfg.ServiceOptions()
	require.NoError(t, err)
	assert.Equal(t, service.PolicyError, opt.MissingPolicy)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "server: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testData := map[string]struct {
		mutate func(c *Config)
		err    error
	}{
		"valid": {
			mutate: func(c *Config) {},
		},
		"bad log level": {
			mutate: func(c *Config) { c.Logging = "loud" },
		},
		"no addr": {
			mutate: func(c *Config) { c.Server.Addr = "" },
			err:    ErrAddrRequired,
		},
		"zero horizon": {
			mutate: func(c *Config) { c.Forecast.MaxHorizonDays = 0 },
			err:    ErrInvalidMaxHorizon,
		},
		"dashboard beyond horizon": {
			mutate: func(c *Config) { c.Forecast.DashboardDays = 400 },
			err:    ErrInvalidDashDays,
		},
		"unknown policy": {
			mutate: func(c *Config) { c.Forecast.MissingRegressorPolicy = "drop" },
			err:    service.ErrUnknownPolicy,
		},
		"no series": {
			mutate: func(c *Config) { c.Series = nil },
			err:    ErrNoSeries,
		},
		"empty key": {
			mutate: func(c *Config) { c.Series = []SeriesConfig{{Model: "a.json"}} },
			err:    ErrEmptySeriesKey,
		},
		"duplicate": {
			mutate: func(c *Config) {
				c.Series = []SeriesConfig{{Key: "total_accidents"}, {Key: "total_accidents"}}
			},
			err: ErrDuplicateSeries,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cfg, err := Load("")
			require.NoError(t, err)
			td.mutate(cfg)

			err = cfg.Validate()
			switch {
			case name == "valid":
				assert.NoError(t, err)
			case td.err == nil:
				assert.Error(t, err)
			default:
				assert.ErrorIs(t, err, td.err)
			}
		})
	}
}
