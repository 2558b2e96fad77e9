package kernel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/cache"
	"github.com/cardfeed/backend/internal/config"
	"github.com/cardfeed/backend/internal/database"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/mongostore"
	"github.com/cardfeed/backend/internal/repository/sqlstore"
	"github.com/cardfeed/backend/internal/storage"
)

// OpenStore connects the store selected by cfg.StoreDriver
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StorePostgres:
		return sqlstore.Open(database.Options{
			Driver:  database.DriverPostgres,
			DSN:     cfg.DatabaseURL,
			Tracing: cfg.OTelEnabled,
		})
	case config.StoreSQLite:
		return sqlstore.Open(database.Options{
			Driver:  database.DriverSQLite,
			DSN:     cfg.SQLitePath,
			Tracing: cfg.OTelEnabled,
		})
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// AuthOptions maps the session and sign-in settings of cfg
func AuthOptions(cfg *config.Config) auth.Options {
	opts := auth.Options{
		JWTSecret:  []byte(cfg.JWTSecret),
		SessionTTL: cfg.SessionTTL,
		AdminEmail: cfg.AdminEmail,
	}
	if cfg.GoogleMode == config.GoogleModeLive && cfg.OAuth != nil {
		opts.Google = auth.NewLiveGoogleProvider(cfg.OAuth.GoogleConfig)
	}
	return opts
}

// Bootstrap opens every piece of infrastructure cfg configures and wires the
// services over it. Redis and S3 are optional; failing to reach them is
// logged and the kernel runs without them. Cleanup closes what was opened.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Kernel, error) {
	k := New()

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	k.SetStore(store).OnCleanup(store.Close)

	if addr := cfg.RedisAddr(); addr != "" {
		client, err := cache.NewRedisClient(addr, cfg.RedisPassword)
		if err != nil {
			logger.WarnWithFields("Redis unavailable, response cache disabled", err, zap.String("address", addr))
		} else {
			k.SetCache(client).OnCleanup(func(context.Context) error { return client.Close() })
		}
	}

	if cfg.AWSBucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
		if err != nil {
			logger.WarnWithFields("S3 unavailable, image uploads disabled", err)
		} else {
			if err := uploader.CheckBucketAccess(ctx); err != nil {
				logger.WarnWithFields("S3 bucket access check failed", err, zap.String("bucket", cfg.AWSBucket))
			}
			k.SetImageUploader(uploader)
		}
	}

	if err := k.Wire(AuthOptions(cfg)); err != nil {
		_ = k.Cleanup(ctx)
		return nil, err
	}
	return k, nil
}
