package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"safgati-admin/internal/config"
	"safgati-admin/internal/database"
	"safgati-admin/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (default from SERVER_PORT)")
	serveCmd.Flags().Bool("migrate", true, "Run pending migrations before serving in remote mode")
	rootCmd.AddCommand(serveCmd)
}

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The server has 30 seconds to finish the requests it is handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func runServe(cmd *cobra.Command, args []string) error {
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Server.Port = port
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting Safgati admin API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Store.Mode),
		zap.String("local_driver", cfg.Local.Driver),
	)

	ctx := cmd.Context()
	deps := server.Dependencies{}

	deps.Storage, err = openStorage()
	if err != nil {
		return err
	}

	if cfg.Store.Mode == config.ModeRemote {
		deps.DB, err = openDatabase()
		if err != nil {
			return err
		}

		health := database.Health(ctx, deps.DB)
		log.Info("Database health check", zap.Any("health", health))

		// an unreachable database is not fatal: requests fall back to the local mirror
		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate && health["status"] == "up" {
			if err := database.RunMigrations(deps.DB.DB, log); err != nil {
				log.Error("Migrations failed, continuing with fallback available", zap.Error(err))
			}
		}
	}

	deps.Redis, err = openRedis(ctx)
	if err != nil {
		log.Warn("Redis unavailable, using local sessions and rate limiting", zap.Error(err))
		deps.Redis = nil
	}

	srv, err := server.NewServer(ctx, cfg, log, deps)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
	return nil
}
