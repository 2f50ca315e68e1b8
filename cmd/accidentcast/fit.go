package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/accidentcast/forecaster"
	"github.com/accidentcast/forecaster/forecast/options"
	"github.com/accidentcast/forecaster/history"
	"github.com/accidentcast/forecaster/regressor"
	"github.com/accidentcast/forecaster/series"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ErrNoOutput = errors.New("an output file is required")

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	fitHistory    string
	fitRegressors string
	fitSeries     string
	fitOutput     string
	fitPlot       string
	fitHorizon    int
	fitOutliers   bool
)

//nolint:gochecknoglobals // Cobra commands are typically global
var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a model artifact on the daily history of a series",
	Long: `Fits the series model and its uncertainty model on the daily counts of a series, with
every column of its regressor file as an extra regressor, and writes the JSON artifact.`,
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)
	fitCmd.Flags().StringVar(&fitHistory, "history", "data/nbr_acc_jour.csv", "daily counts file")
	fitCmd.Flags().StringVar(&fitRegressors, "regressors", "data", "directory of the regressor files")
	fitCmd.Flags().StringVar(&fitSeries, "series", series.TotalAccidents.String(), "series to fit")
	fitCmd.Flags().StringVarP(&fitOutput, "output", "o", "", "artifact file to write")
	fitCmd.Flags().StringVar(&fitPlot, "plot", "", "optional html file of the fit")
	fitCmd.Flags().IntVar(&fitHorizon, "horizon", 0, "days plotted after the history")
	fitCmd.Flags().BoolVar(&fitOutliers, "outliers", false, "drop outliers of the residual before the final fit")
}

func runFit(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	if fitOutput == "" {
		return ErrNoOutput
	}
	key := series.Key(fitSeries)

	hist, err := history.Load(fitHistory)
	if err != nil {
		return err
	}
	first, last, err := hist.Span()
	if err != nil {
		return err
	}
	t, y, err := hist.Series(key, first, last)
	if err != nil {
		return err
	}

	opt := forecaster.NewDefaultOptions()
	if !fitOutliers {
		opt.OutlierOptions = nil
	}
	regs, err := regressor.NewStore(fitRegressors).Load(key)
	var joined map[string][]float64
	switch {
	case errors.Is(err, series.ErrUnknownSeries):
		logger.WithField("series", key).Warn("No regressor file, fitting without regressors")
	case err != nil:
		return err
	default:
		for _, name := range regs.Columns() {
			opt.SeriesOptions.RegressorOptions.Regressors = append(
				opt.SeriesOptions.RegressorOptions.Regressors, options.NewRegressor(name))
		}
		joined = regs.Join(t)
	}

	f, err := forecaster.New(opt)
	if err != nil {
		return err
	}
	if err := f.Fit(t, y, joined); err != nil {
		return fmt.Errorf("unable to fit %q, %w", key, err)
	}
	m, err := f.Model()
	if err != nil {
		return err
	}

	out, err := os.Create(fitOutput)
	if err != nil {
		return err
	}
	if err := m.Encode(out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"series": key,
		"days":   len(t),
		"output": fitOutput,
	}).Info("Model written")

	if fitPlot == "" {
		return nil
	}
	plot, err := os.Create(fitPlot)
	if err != nil {
		return err
	}
	defer plot.Close()
	return f.PlotFit(plot, fitHorizon)
}
