package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/anupamd/picstore/config"
	"github.com/anupamd/picstore/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or verify the database schema",
	Long: `Connect to the configured database, create the metadata tables if
they are missing, and verify the schema matches what the server expects.
The serve command does the same on startup; this command exists for
provisioning pipelines that migrate before rolling out.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	_, closeDB, err := database.Connect(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	closeDB()

	slog.Info("database schema ready",
		"type", cfg.Database.Type,
		"images_table", cfg.Database.ImagesTable,
		"items_table", cfg.Database.ItemsTable)
	return nil
}
