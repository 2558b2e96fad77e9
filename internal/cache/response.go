package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/metrics"
	"github.com/cardfeed/backend/internal/models"
)

const (
	// ResponseCacheName labels response cache metrics
	ResponseCacheName = "response_cache"
	responsePrefix    = "response:"
	apiPrefix         = "/api/v1"
)

// ResponseKey builds the cache key for a GET response:
// response:{path}[:{query}][:{user_id}]
func ResponseKey(path, query, userID string) string {
	key := responsePrefix + path
	if query != "" {
		key += ":" + query
	}
	if userID != "" {
		key += ":" + userID
	}
	return key
}

// Invalidator drops cached GET responses after a mutation
type Invalidator interface {
	InvalidatePaths(ctx context.Context, paths ...string) error
}

// NoopInvalidator is used when no response cache is configured
type NoopInvalidator struct{}

func (NoopInvalidator) InvalidatePaths(ctx context.Context, paths ...string) error { return nil }

// RedisInvalidator deletes response cache keys stored in redis
type RedisInvalidator struct {
	client *RedisClient
}

func NewRedisInvalidator(client *RedisClient) *RedisInvalidator {
	return &RedisInvalidator{client: client}
}

// InvalidatePaths removes the exact key for each path plus every
// query/user variant of it
func (r *RedisInvalidator) InvalidatePaths(ctx context.Context, paths ...string) error {
	total := 0
	for _, path := range paths {
		exact := ResponseKey(path, "", "")
		if err := r.client.Del(ctx, exact); err != nil {
			return fmt.Errorf("invalidate %s: %w", path, err)
		}
		n, err := r.client.DeleteMatching(ctx, exact+":*")
		if err != nil {
			return fmt.Errorf("invalidate %s: %w", path, err)
		}
		total += n
	}
	metrics.RecordCacheInvalidation(ResponseCacheName, total)
	logger.Log.Debug("Response cache invalidated", zap.Strings("paths", paths), zap.Int("variants", total))
	return nil
}

// PostPaths lists the cached views that show post: its detail pages, the
// feed (category feeds are query variants of it), the author's post list
// and the category counts
func PostPaths(post *models.Post) []string {
	paths := []string{
		apiPrefix + "/posts",
		apiPrefix + "/posts/" + post.ID,
		apiPrefix + "/categories",
	}
	if post.Slug != "" {
		paths = append(paths, apiPrefix+"/posts/slug/"+post.Slug)
	}
	if post.Author.ID != "" {
		paths = append(paths, apiPrefix+"/users/"+post.Author.ID+"/posts")
	}
	return paths
}

// UserPaths lists the cached views that show a user's profile
func UserPaths(userID string) []string {
	return []string{
		apiPrefix + "/users/" + userID,
		apiPrefix + "/users/" + userID + "/posts",
		apiPrefix + "/posts",
	}
}
