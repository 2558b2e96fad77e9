package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/config"
	"github.com/cardfeed/backend/internal/kernel"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/seed"
)

func main() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	randSeed := fs.Int64("seed", 0, "fix the fake data generator (0 = random)")
	fs.Usage = usage

	// Parse command
	command := "dev"
	args := os.Args[1:]
	if len(args) > 0 && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}
	_ = fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	_ = logger.Initialize(cfg.LogLevel, "-")
	defer logger.Close()

	ctx := context.Background()

	switch command {
	case "dev", "test", "clean":
	default:
		usage()
		os.Exit(1)
	}

	store, err := kernel.OpenStore(ctx, cfg)
	if err != nil {
		logger.FatalWithFields("❌ Failed to connect to store", err)
	}
	defer store.Close(ctx)

	switch command {
	case "dev":
		run(ctx, store, *randSeed, seed.Dev, cfg)
	case "test":
		run(ctx, store, *randSeed, seed.Test, cfg)
	case "clean":
		if err := seed.NewSeeder(store, *randSeed).Clean(ctx); err != nil {
			logger.FatalWithFields("❌ Failed to clean store", err)
		}
	}
}

func run(ctx context.Context, store repository.Store, randSeed int64, counts seed.Counts, cfg *config.Config) {
	logger.Log.Info("🌱 Seeding store...", zap.String("driver", cfg.StoreDriver))

	created, err := seed.LoadDefaults(ctx, store, seed.Defaults{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Users:         seed.DemoUsers(),
	})
	if err != nil {
		logger.FatalWithFields("❌ Failed to load default accounts", err)
	}
	logger.Log.Info("Default accounts ready", zap.Int("created", created))

	if err := seed.NewSeeder(store, randSeed).Seed(ctx, counts); err != nil {
		logger.FatalWithFields("❌ Seeding failed", err)
	}
}

func usage() {
	fmt.Println("Usage: seed [dev|test|clean] [-seed N]")
	fmt.Println("  dev   - Seed development store with realistic data")
	fmt.Println("  test  - Seed test store with minimal data")
	fmt.Println("  clean - Remove all data (use with caution)")
}
