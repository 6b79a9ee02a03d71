package cmd

import (
	"fmt"
	"os"

	"cryptorewards-backend/internal/app"
	"cryptorewards-backend/internal/components/serviceutil"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/config"
	"cryptorewards-backend/internal/store"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "rewards-cli",
	Short: "rewards-cli collects and inspects staking and campaign data of Turkish crypto exchanges.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "Path to the config file, it may be missing.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	_, err = telemetry.InitSlog("", "rewards-cli", verbose)
	return cfg, err
}

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.New(cfg.DataDir, telemetry.SlogAPI{})
}

func buildApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Build(cfg, telemetry.SlogAPI{}, verbose)
}

func Execute() {
	if err := rootCmd.ExecuteContext(serviceutil.SignalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
