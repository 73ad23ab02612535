package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/voice-diary/agent/storage"
	configx "github.com/tanpawarit/voice-diary/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the notes table if it is missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configx.New[storage.Config]("DATABASE")
		if err != nil {
			return err
		}
		store, err := storage.Open(cmd.Context(), *cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info().Msg("notes schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
