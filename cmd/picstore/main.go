package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anupamd/picstore/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "picstore",
	Short:   "Image upload service with S3-compatible object storage",
	Long: `Picstore is an upload service that stores files and images in an
S3-compatible object store and keeps searchable metadata in SQLite or
PostgreSQL. It parses multipart/form-data itself, so it also accepts
payloads from gateways that re-encode request bodies as base64.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var configFiles []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			configFiles = append(configFiles, configFile)
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: PICSTORE_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: picstore.db, env: PICSTORE_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("endpoint", "", "object store endpoint (default: localhost:9000, env: PICSTORE_STORAGE_ENDPOINT)")
	rootCmd.PersistentFlags().String("bucket", "", "object store bucket (default: picstore, env: PICSTORE_STORAGE_BUCKET)")
	rootCmd.PersistentFlags().String("access-key", "", "object store access key (env: PICSTORE_STORAGE_ACCESS_KEY)")
	rootCmd.PersistentFlags().String("secret-key", "", "object store secret key (env: PICSTORE_STORAGE_SECRET_KEY)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
