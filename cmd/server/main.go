package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iudanet/phoneauth/internal/config"
	"github.com/iudanet/phoneauth/internal/crypto"
	"github.com/iudanet/phoneauth/internal/logging"
	"github.com/iudanet/phoneauth/internal/server"
	"github.com/iudanet/phoneauth/internal/server/handlers"
	"github.com/iudanet/phoneauth/internal/server/router"
	"github.com/iudanet/phoneauth/internal/server/storage"
	"github.com/iudanet/phoneauth/internal/server/storage/backend"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(config.WithConfigFile(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.InfoContext(ctx, "PhoneAuth Server starting",
		slog.String("version", Version),
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver))

	store, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	records := storage.NewRecords(store, cfg.Storage.Timeout)
	hasher := crypto.NewHasher(cfg.Security.HashingSecret)
	auth := handlers.NewAuthenticator(logger, records, cfg.Security.RequireToken)

	routes := handlers.Routes(
		handlers.NewHealthHandler(Version),
		handlers.NewUsersHandler(logger, records, records, hasher, auth),
		handlers.NewTokensHandler(logger, records, records, hasher, cfg.Security.TokenTTL),
	)
	dispatcher := router.New(logger, routes, router.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(logger, cfg, dispatcher, registry, []string{
		handlers.RoutePing,
		handlers.RouteUsers,
		handlers.RouteTokens,
	})

	if cfg.Storage.PurgeInterval > 0 {
		// stop выполняется раньше отложенного store.Close
		stop := startJanitor(ctx, logger, records, cfg.Storage.PurgeInterval)
		defer stop()
	}

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("PhoneAuth Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
