package main

import (
	"fmt"
	"os"

	"github.com/accidentcast/forecaster/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile string
	logger  *logrus.Logger
)

//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "accidentcast",
	Short: "Forecasts of French road-accident victims",
	Long: `accidentcast serves daily forecasts of French road-accident victims by severity
from pre-fit additive models, along with their component decomposition and a dashboard.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error, fatal, panic), overrides the config")

	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "./config.yaml"
	}
}

// loadConfig reads the configuration and sets the log level, the flag winning over the file
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel, err := rootCmd.PersistentFlags().GetString("log-level"); err == nil && logLevel != "" {
		cfg.Logging = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	return cfg, nil
}
