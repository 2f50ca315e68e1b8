package main

import (
	"fmt"
	"os"

	"github.com/accidentcast/forecaster"
	"github.com/accidentcast/forecaster/series"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Work with model artifacts",
}

//nolint:gochecknoglobals // Cobra commands are typically global
var modelInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the options and weights of a model artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelInspect,
}

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelInspectCmd)
}

func runModelInspect(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	m, err := forecaster.DecodeModel(file)
	if err != nil {
		return fmt.Errorf("unable to decode %s, %v, %w", args[0], err, series.ErrDataFormat)
	}
	return m.TablePrint(cmd.OutOrStdout(), "", "  ")
}
