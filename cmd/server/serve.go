package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/rpattn/standards/internal/config"
	"github.com/rpattn/standards/internal/db"
	"github.com/rpattn/standards/internal/enrichment"
	"github.com/rpattn/standards/internal/export"
	"github.com/rpattn/standards/internal/ingestion"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/middleware"
	"github.com/rpattn/standards/internal/standards"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), root, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func serve(parent context.Context, root *rootOptions, migrateFirst bool) error {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()
	if !cfg.FromFile {
		log.Info("no config.yaml found, using defaults and env vars")
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrateFirst && !root.inMemory {
		if err := db.RunMigrations(cfg.Database); err != nil {
			return err
		}
	}

	a, err := buildApp(ctx, cfg, root.inMemory, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// workers outlive the signal so the queue can drain on shutdown
	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWorkers()
	if a.queue != nil {
		a.queue.Start(workerCtx)
	}

	mux := http.NewServeMux()
	standards.NewHTTPHandler(a.service, log).RegisterHTTPHandlers("/standards", mux)
	export.NewHTTPHandler(
		export.NewService(a.service, export.WithPublishDirectory(cfg.PublishDir), export.WithLogger(log)),
		log,
	).RegisterHTTPHandlers("/standards", mux)
	enrichment.NewHTTPHandler(a.stores.jobs).RegisterHTTPHandlers("/enrichment", mux)
	mux.Handle("POST /import", ingestion.NewHTTPHandler(ingestion.NewService(a.service, a.stores.standards, log)))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	handler := corsHandler.Handler(
		middleware.LoggingMiddleware(log)(
			middleware.AuthHeaders(
				middleware.DataLoaderMiddleware(a.stores.rules)(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if a.queue != nil {
		if err := a.queue.Shutdown(shutdownCtx); err != nil {
			log.Warn("enrichment queue did not drain", "error", err)
		}
	}
	log.Info("server exited")
	return nil
}
