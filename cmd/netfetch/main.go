package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vertextoedge/netfetch/internal/config"
	"github.com/vertextoedge/netfetch/internal/logger"
)

const version = "0.1.0"

var (
	cfg        *config.Config
	configPath string
	log        *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "netfetch",
	Short:         "Resumable HTTP downloads for text, JSON and binary payloads",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = logger.GetZapLogger()

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
