package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anupamd/picstore"
	"github.com/anupamd/picstore/config"
	"github.com/anupamd/picstore/database"
	picstorehttp "github.com/anupamd/picstore/http"
	"github.com/anupamd/picstore/objectstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the picstore HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	repos, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB()

	slog.Info("connected to database", "type", cfg.Database.Type)

	store, err := objectstore.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("connect object store: %w", err)
	}

	slog.Info("connected to object store", "endpoint", cfg.Storage.Endpoint, "bucket", store.Bucket())

	service, err := picstore.NewService(repos.Images, repos.Items, store, picstore.ServiceConfig{
		Bucket: store.Bucket(),
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handlerConfig := picstorehttp.HandlerConfig{
		MaxBodyBytes: cfg.Server.MaxUploadSize,
		CORS:         cfg.CORS,
	}
	handler := picstorehttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
