package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vertextoedge/netfetch/internal/service/maintenance"
	"github.com/vertextoedge/netfetch/internal/service/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the download service with its HTTP control API",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cfg, cfg.Download.OutputDir, log)
		if err != nil {
			return err
		}

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.BindAddr = addr
		}

		maintenanceService := maintenance.New(&maintenance.Config{
			CleanupInterval: cfg.Maintenance.GetCleanupInterval(),
			HistoryMaxAge:   cfg.Maintenance.GetHistoryMaxAge(),
		}, eng.store, log.Named("maintenance"))

		httpServer := server.New(&server.Config{
			BindAddr:     cfg.HTTP.BindAddr,
			ReadTimeout:  cfg.HTTP.GetReadTimeout(),
			WriteTimeout: cfg.HTTP.GetWriteTimeout(),
			IdleTimeout:  cfg.HTTP.GetIdleTimeout(),
		}, server.Deps{
			Store:   eng.store,
			Runtime: eng.runtime,
			Paths:   eng.files,
			Disk:    eng.files,
			Metrics: eng.metrics.Handler(),
		}, log.Named("http"))

		// Rows left running by a previous process are settled before the API
		// can record new ones
		if _, err := maintenanceService.RecoverInterrupted(); err != nil {
			eng.Close() //nolint:errcheck
			return err
		}

		// Create context for graceful shutdown
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		// Start maintenance service
		go func() {
			if err := maintenanceService.Start(ctx); err != nil && err != context.Canceled {
				log.Error("maintenance service stopped with error", zap.Error(err))
			}
		}()

		serverErr := make(chan error, 1)
		go func() {
			serverErr <- httpServer.Start()
		}()

		log.Info("netfetch service started",
			zap.String("version", version),
			zap.String("http_addr", cfg.HTTP.BindAddr),
			zap.String("output_dir", eng.files.RootDir()))

		select {
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping services...")
		case err := <-serverErr:
			if err != nil {
				log.Error("HTTP server failed", zap.Error(err))
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		maintenanceService.Stop()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			log.Error("failed to stop HTTP server gracefully", zap.Error(err))
		}

		if n := eng.runtime.CancelAll(); n > 0 {
			log.Info("cancelling active tasks", zap.Int("count", n))
		}
		if err := eng.Close(); err != nil {
			return err
		}

		log.Info("netfetch service stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides http.bind_addr)")
	rootCmd.AddCommand(serveCmd)
}
