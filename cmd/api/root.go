package main

import (
	"context"
	"fmt"
	"os"

	"safgati-admin/internal/config"
	"safgati-admin/internal/database"
	"safgati-admin/internal/localstore"
	"safgati-admin/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "safgati",
	Short: "Safgati admin API",
	Long:  "Admin backend for the Safgati affiliate catalog: HTTP API, schema migrations and local mirror maintenance.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file loaded into the environment")
	rootCmd.PersistentFlags().String("mode", "", "Store mode override: remote or local")
}

func initConfig(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	// a missing default .env is fine; the environment may already be set
	if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
		logger.NewWithDefaults().Warn("Could not load env file", zap.String("path", envFile), zap.Error(err))
	}

	cfg = config.Load()
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.Store.Mode = mode
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func openStorage() (localstore.Storage, error) {
	storage, err := localstore.Open(cfg.Local.Driver, cfg.Local.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}
	return storage, nil
}

func openDatabase() (*sqlx.DB, error) {
	return database.New(cfg.Database)
}

func openRedis(ctx context.Context) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	return database.NewRedis(ctx, cfg.Redis)
}
