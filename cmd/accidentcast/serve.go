package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/accidentcast/forecaster/api"
	"github.com/accidentcast/forecaster/config"
	"github.com/accidentcast/forecaster/dashboard"
	"github.com/accidentcast/forecaster/history"
	"github.com/accidentcast/forecaster/regressor"
	"github.com/accidentcast/forecaster/registry"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	serveProfile    string
	serveProfileDir string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction API and the dashboard",
	Long: `Loads every configured model artifact and serves the prediction endpoint, its
OpenAPI documentation, health and metrics, and the dashboard pages.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveProfile, "profile", "", "profile the server (cpu, mem)")
	serveCmd.Flags().StringVar(&serveProfileDir, "profile-dir", ".", "directory of the profile output")
}

// app holds every component built from the configuration
type app struct {
	registry  *registry.Registry
	service   *service.Service
	dashboard *dashboard.Dashboard
	gatherer  prometheus.Gatherer
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	reg, err := registry.Load(ctx, cfg.Entries(), logger)
	if err != nil {
		return nil, err
	}
	svcOpt, err := cfg.ServiceOptions()
	if err != nil {
		return nil, err
	}
	hist, err := history.Load(cfg.Data.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load history, %w", err)
	}
	store := regressor.NewStore(cfg.Data.RegressorsDir)
	if err := checkSeries(cfg.SeriesSet(), store, hist); err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc := service.New(reg, store, svcOpt, promReg, logger)

	return &app{
		registry:  reg,
		service:   svc,
		dashboard: dashboard.New(svc, reg, hist),
		gatherer:  promReg,
	}, nil
}

// checkSeries makes sure every configured series has a readable regressor table and a
// history column before anything is served
func checkSeries(set series.Set, store *regressor.Store, hist *history.Table) error {
	for _, key := range set.Keys() {
		tbl, err := store.Load(key)
		if err != nil {
			return fmt.Errorf("unable to load regressors of %q, %w", key, err)
		}
		if !hist.Has(key) {
			return fmt.Errorf("no history column for %q, %w", key, series.ErrUnknownSeries)
		}
		logger.WithFields(logrus.Fields{
			"series":     key,
			"regressors": tbl.Len(),
		}).Debug("Series data checked")
	}
	return nil
}

func startProfile(mode, dir string) (interface{ Stop() }, error) {
	switch mode {
	case "":
		return nil, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook), nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.NoShutdownHook), nil
	}
	return nil, fmt.Errorf("unknown profile mode %q", mode)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("Configuration loaded")

	prof, err := startProfile(serveProfile, serveProfileDir)
	if err != nil {
		return err
	}
	if prof != nil {
		defer prof.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	logger.WithField("series", a.registry.Len()).Info("Models loaded")

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = a.gatherer
	}
	server := api.New(api.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MetricsEnabled:  cfg.Metrics.Enabled,
		DashboardDays:   cfg.Forecast.DashboardDays,
	}, api.Deps{
		Keys:      a.registry.Keys(),
		Forecasts: a.service,
		Dashboard: a.dashboard,
		Gatherer:  gatherer,
	}, logger)
	if err := server.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.WithField("signal", sig).Info("Received shutdown signal")

	return server.Stop()
}
