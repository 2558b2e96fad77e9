package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/config"
	"github.com/cardfeed/backend/internal/kernel"
	"github.com/cardfeed/backend/internal/logger"
)

// migrate brings the configured store's schema up to date. For sqlite and
// postgres that is gorm auto-migration plus the extra indexes; for mongo it
// creates the collection indexes. Both are idempotent.
func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if command != "up" {
		fmt.Println("Usage: migrate [up]")
		fmt.Println("  up - Create or update tables and indexes")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	_ = logger.Initialize(cfg.LogLevel, "-")
	defer logger.Close()

	ctx := context.Background()
	logger.Log.Info("🔄 Connecting to store...", zap.String("driver", cfg.StoreDriver))

	store, err := kernel.OpenStore(ctx, cfg)
	if err != nil {
		logger.FatalWithFields("❌ Migration failed", err)
	}
	if err := store.Close(ctx); err != nil {
		logger.WarnWithFields("Close failed", err)
	}

	logger.Log.Info("✅ Migrations completed successfully!")
}
