// Package kernel wires the CardFeed services together and owns their
// shutdown order.
package kernel

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/cache"
	"github.com/cardfeed/backend/internal/handlers"
	"github.com/cardfeed/backend/internal/interactions"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/posts"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/storage"
	"github.com/cardfeed/backend/internal/users"
)

// Kernel holds all application dependencies and provides type-safe access.
// Infrastructure is registered with Set* methods; Wire then builds the
// domain services on top of it.
type Kernel struct {
	// Core infrastructure
	store       repository.Store
	cache       *cache.RedisClient
	invalidator cache.Invalidator
	uploader    storage.ImageUploader

	// Domain services
	auth        *auth.Service
	posts       *posts.Service
	users       *users.Service
	engine      *interactions.Engine
	inbox       *notifications.Inbox
	broadcaster *notifications.Broadcaster

	// Lifecycle hooks
	cleanupFuncs []func(context.Context) error
	mu           sync.RWMutex
}

// New creates a new empty kernel
func New() *Kernel {
	return &Kernel{
		invalidator:  cache.NoopInvalidator{},
		cleanupFuncs: make([]func(context.Context) error, 0),
	}
}

// ============================================================================
// INFRASTRUCTURE
// ============================================================================

// SetStore registers the backing store
func (k *Kernel) SetStore(store repository.Store) *Kernel {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.store = store
	return k
}

// Store returns the backing store
func (k *Kernel) Store() repository.Store {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.store
}

// SetCache registers the redis client. Mutations then invalidate cached
// GET responses through it.
func (k *Kernel) SetCache(client *cache.RedisClient) *Kernel {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.cache = client
	if client != nil {
		k.invalidator = cache.NewRedisInvalidator(client)
	} else {
		k.invalidator = cache.NoopInvalidator{}
	}
	return k
}

// Cache returns the redis client, or nil when caching is disabled
func (k *Kernel) Cache() *cache.RedisClient {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.cache
}

// Invalidator returns the response cache invalidator
func (k *Kernel) Invalidator() cache.Invalidator {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.invalidator
}

// SetImageUploader registers image storage
func (k *Kernel) SetImageUploader(uploader storage.ImageUploader) *Kernel {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.uploader = uploader
	return k
}

// ImageUploader returns image storage, or nil when uploads are disabled
func (k *Kernel) ImageUploader() storage.ImageUploader {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.uploader
}

// ============================================================================
// DOMAIN SERVICES
// ============================================================================

// Wire builds the domain services from the registered infrastructure
func (k *Kernel) Wire(authOpts auth.Options) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.store == nil {
		return NewInitializationError("Cannot wire services", []string{"store"})
	}

	creator := notifications.NewCreator(k.store.Notifications())
	k.auth = auth.NewService(k.store, authOpts)
	k.posts = posts.NewService(k.store, k.invalidator)
	k.users = users.NewService(k.store, k.posts, k.invalidator)
	k.engine = interactions.NewEngine(k.store, creator, k.invalidator)
	k.inbox = notifications.NewInbox(k.store.Notifications())
	k.broadcaster = notifications.NewBroadcaster(k.store)
	return nil
}

// Auth returns the authentication service
func (k *Kernel) Auth() *auth.Service {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.auth
}

// Posts returns the post service
func (k *Kernel) Posts() *posts.Service {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.posts
}

// Users returns the user and moderation service
func (k *Kernel) Users() *users.Service {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.users
}

// Engine returns the interaction engine
func (k *Kernel) Engine() *interactions.Engine {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.engine
}

// Inbox returns the notification inbox
func (k *Kernel) Inbox() *notifications.Inbox {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.inbox
}

// Broadcaster returns the announcement broadcaster
func (k *Kernel) Broadcaster() *notifications.Broadcaster {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.broadcaster
}

// Handlers builds the HTTP handlers over the wired services
func (k *Kernel) Handlers() *handlers.Handlers {
	k.mu.RLock()
	defer k.mu.RUnlock()

	h := handlers.NewHandlers(handlers.Deps{
		Store:       k.store,
		Auth:        k.auth,
		Posts:       k.posts,
		Users:       k.users,
		Engine:      k.engine,
		Inbox:       k.inbox,
		Broadcaster: k.broadcaster,
	})
	if k.uploader != nil {
		h.SetImageUploader(k.uploader)
	}
	if k.cache != nil {
		h.SetRedisClient(k.cache)
	}
	return h
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// OnCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions are called in LIFO order (last registered, first cleaned up).
func (k *Kernel) OnCleanup(fn func(context.Context) error) *Kernel {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.cleanupFuncs = append(k.cleanupFuncs, fn)
	return k
}

// Cleanup runs every cleanup function in reverse order of registration.
// A failing function does not stop the rest; all failures are returned.
func (k *Kernel) Cleanup(ctx context.Context) error {
	k.mu.Lock()
	funcs := k.cleanupFuncs
	k.cleanupFuncs = nil
	k.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			logger.Log.Error("Cleanup function failed", zap.Int("index", i), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks that all required dependencies are registered.
// Call it after Wire and before starting the server.
func (k *Kernel) Validate() error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	missingDeps := []string{}
	if k.store == nil {
		missingDeps = append(missingDeps, "store")
	}
	if k.auth == nil || k.posts == nil || k.users == nil || k.engine == nil || k.inbox == nil || k.broadcaster == nil {
		missingDeps = append(missingDeps, "domain services (call Wire)")
	}
	if len(missingDeps) > 0 {
		return NewInitializationError("Missing required dependencies", missingDeps)
	}

	if k.cache == nil {
		logger.Log.Info("Response cache disabled (no redis)")
	}
	if k.uploader == nil {
		logger.Log.Info("Image uploads disabled (no S3 bucket)")
	}
	return nil
}
