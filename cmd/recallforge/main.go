package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	clientapi "github.com/harshit-singhania/recallforge/internal/client/api"
	"github.com/harshit-singhania/recallforge/internal/client/cli"
	"github.com/harshit-singhania/recallforge/internal/client/config"
	"github.com/harshit-singhania/recallforge/internal/client/ingest"
	"github.com/harshit-singhania/recallforge/internal/client/iocli"
	"github.com/harshit-singhania/recallforge/internal/client/session"
	"github.com/harshit-singhania/recallforge/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	flags := pflag.NewFlagSet("recallforge", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	showVersion := flags.Bool("version", false, "Show version information")
	deckID := flags.Int64("deck", 0, "Deck scope for review/ingest (0 = all decks)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()

	args := flags.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()

	boltStorage, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	apiClient := clientapi.NewClient(cfg.ServerURL, boltStorage,
		clientapi.WithTimeout(cfg.HTTPTimeout),
		clientapi.WithLogger(logger),
	)

	// Resolve the session from the persisted token pair before any command
	// runs. A stale pair degrades silently to anonymous.
	sessionMgr := session.NewManager(apiClient, boltStorage, logger)
	if err := sessionMgr.Bootstrap(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap session: %v\n", err)
		os.Exit(1)
	}

	poller := ingest.NewPoller(apiClient, cfg.PollInterval, logger)
	ingester := ingest.NewService(apiClient, poller)

	c := cli.New(stdio, sessionMgr, apiClient, ingester, logger)
	if err := c.Run(ctx, args[0], args[1:], *deckID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func printVersion() {
	fmt.Printf("RecallForge Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
