package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/accidentcast/forecaster/config"
	"github.com/accidentcast/forecaster/regressor"
	"github.com/accidentcast/forecaster/registry"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var predictFutureOnly bool

//nolint:gochecknoglobals // Cobra commands are typically global
var predictCmd = &cobra.Command{
	Use:   "predict <series> <days>",
	Short: "Print the forecast of a series as JSON records",
	Args:  cobra.ExactArgs(2),
	RunE:  runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().BoolVar(&predictFutureOnly, "future", false, "only print the days after the history")
}

// entryFor returns the registry entry of a configured series
func entryFor(cfg *config.Config, key string) (registry.Entry, error) {
	for _, e := range cfg.Entries() {
		if e.Key.String() == key {
			return e, nil
		}
	}
	return registry.Entry{}, fmt.Errorf("%q is not configured, %w", key, series.ErrUnknownSeries)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	key := args[0]
	days, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("days must be an integer, %w", service.ErrInvalidHorizon)
	}

	entry, err := entryFor(cfg, key)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reg, err := registry.Load(ctx, []registry.Entry{entry}, logger)
	if err != nil {
		return err
	}
	svcOpt, err := cfg.ServiceOptions()
	if err != nil {
		return err
	}
	svc := service.New(reg, regressor.NewStore(cfg.Data.RegressorsDir), svcOpt, nil, logger)

	fc, err := svc.Forecast(ctx, key, days)
	if err != nil {
		return err
	}

	records := fc.Records
	if predictFutureOnly {
		records = fc.Future()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
