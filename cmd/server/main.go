package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/strax84mb/travel-advisor/internal/config"
	"github.com/strax84mb/travel-advisor/internal/graph"
	"github.com/strax84mb/travel-advisor/internal/logging"
	"github.com/strax84mb/travel-advisor/internal/repository"
	"github.com/strax84mb/travel-advisor/internal/server"
	"github.com/strax84mb/travel-advisor/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo := repository.New(graphClient)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure graph schema", "error", err)
		os.Exit(1)
	}

	travelService := service.NewTravelService(repo, logger, service.SearchOptions{
		MaxRounds: cfg.Search.MaxRounds,
		Timeout:   cfg.Search.Timeout,
	})

	deps := server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient},
		API:              server.NewAPIHandlers(logger, travelService),
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowCredentials: cfg.HTTP.AllowCredentials,
	}
	if cfg.HTTP.MetricsEnabled {
		deps.Metrics = promhttp.Handler()
	}
	if cfg.HTTP.SearchRPS > 0 {
		deps.SearchLimiter = rate.NewLimiter(rate.Limit(cfg.HTTP.SearchRPS), cfg.HTTP.SearchBurst)
	}

	srv := server.New(logger, cfg.HTTP, server.NewRouter(logger, deps))

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
	}
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("graph client ready", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
