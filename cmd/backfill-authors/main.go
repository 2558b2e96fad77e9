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
)

const batchSize = 100

// backfill-authors rewrites the author summary embedded in every post and
// comment from the current user records. Run it after bulk profile edits
// made outside the API.
func main() {
	dryRun := flag.Bool("dry-run", false, "list users without rewriting anything")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	_ = logger.Initialize(cfg.LogLevel, "-")
	defer logger.Close()

	ctx := context.Background()
	k, err := kernel.Bootstrap(ctx, cfg)
	if err != nil {
		logger.FatalWithFields("❌ Failed to initialize services", err)
	}
	defer k.Cleanup(ctx)

	var users, rewritten int64
	for offset := 0; ; offset += batchSize {
		page, total, err := k.Store().Users().ListUsers(ctx, repository.UserQuery{Limit: batchSize, Offset: offset})
		if err != nil {
			logger.FatalWithFields("❌ Failed to list users", err)
		}
		for _, user := range page {
			users++
			if *dryRun {
				fmt.Printf("%s\t%s\n", user.ID, user.DisplayName())
				continue
			}
			n, err := k.Posts().RefreshAuthorSnapshots(ctx, user)
			if err != nil {
				logger.ErrorWithFields("Snapshot refresh failed", err, logger.WithUserID(user.ID))
				continue
			}
			rewritten += n
		}
		if len(page) == 0 || int64(offset+len(page)) >= total {
			break
		}
	}

	logger.Log.Info("✅ Author backfill complete",
		zap.Int64("users", users),
		zap.Int64("documents", rewritten),
		zap.Bool("dry_run", *dryRun))
}
