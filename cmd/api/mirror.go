package main

import (
	"fmt"

	"safgati-admin/internal/localstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Inspect or reset the local mirror document",
}

var mirrorResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the local mirror with the seed catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMirror(cmd, func(mirror *localstore.Mirror, log *zap.Logger) error {
			if err := mirror.Reset(cmd.Context()); err != nil {
				return err
			}
			log.Info("Local mirror reset", zap.String("driver", cfg.Local.Driver), zap.String("path", cfg.Local.Path))
			return nil
		})
	},
}

var mirrorDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the stored local mirror document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMirror(cmd, func(mirror *localstore.Mirror, log *zap.Logger) error {
			raw, err := mirror.Dump(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		})
	},
}

func withMirror(cmd *cobra.Command, fn func(*localstore.Mirror, *zap.Logger) error) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	storage, err := openStorage()
	if err != nil {
		return err
	}
	defer storage.Close()

	mirror, err := localstore.NewMirror(cmd.Context(), storage, log)
	if err != nil {
		return err
	}
	return fn(mirror, log)
}

func init() {
	mirrorCmd.AddCommand(mirrorResetCmd, mirrorDumpCmd)
	rootCmd.AddCommand(mirrorCmd)
}
