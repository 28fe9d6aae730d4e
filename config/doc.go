// Package config provides configuration loading and validation for picstore.
//
// The package handles YAML configuration files, environment variables, and CLI
// flags with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (PICSTORE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with PICSTORE_ prefix:
//
//	PICSTORE_SERVER_PORT=8080
//	PICSTORE_DATABASE_TYPE=postgres
//	PICSTORE_DATABASE_DSN=postgres://localhost/picstore
//	PICSTORE_STORAGE_ENDPOINT=minio.internal:9000
//	PICSTORE_STORAGE_BUCKET=images
//	PICSTORE_LOG_LEVEL=debug
package config
