package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hazman-azhar/kitapay/backend/internal/config"
	"github.com/hazman-azhar/kitapay/backend/internal/health"
	"github.com/hazman-azhar/kitapay/backend/internal/history"
	"github.com/hazman-azhar/kitapay/backend/internal/logging"
	"github.com/hazman-azhar/kitapay/backend/internal/server"
	"github.com/hazman-azhar/kitapay/backend/internal/service"
	"github.com/hazman-azhar/kitapay/backend/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	fundingStore, err := store.NewStore(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		logger.Error("failed to create funding store", "error", err)
		os.Exit(1)
	}
	defer fundingStore.Close()

	historyStore, err := buildHistoryStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create history store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := historyStore.Close(context.Background()); err != nil {
			logger.Warn("closing history store failed", "error", err)
		}
	}()

	healthRegistry := health.NewRegistry()
	payments := service.NewPaymentService(fundingStore, historyStore, healthRegistry, cfg.Resolver.HistoryLookback)
	handlers := server.NewHandlers(logger, payments)

	router := server.NewRouter(logger, server.RouterDependencies{
		Probes: []server.HealthProbe{
			server.ProbeFunc(fundingStore.Ping),
			server.ProbeFunc(historyStore.VerifyConnectivity),
		},
		API:              handlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildHistoryStore connects to the graph when configured and falls back to
// an in-memory history store otherwise, so local development does not
// require a running Neo4j.
func buildHistoryStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (history.Store, error) {
	if cfg.Graph.URI == "" {
		logger.Warn("GRAPH_URI not set, using in-memory payment history")
		return history.NewMemoryStore(), nil
	}

	return history.NewNeo4jStore(ctx, history.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
