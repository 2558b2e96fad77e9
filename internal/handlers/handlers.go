// Package handlers exposes the CardFeed services over a JSON HTTP API.
package handlers

import (
	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/cache"
	"github.com/cardfeed/backend/internal/interactions"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/posts"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/storage"
	"github.com/cardfeed/backend/internal/users"
)

// Deps are the services every handler needs
type Deps struct {
	Store       repository.Store
	Auth        auth.AuthServiceInterface
	Posts       *posts.Service
	Users       *users.Service
	Engine      *interactions.Engine
	Inbox       *notifications.Inbox
	Broadcaster *notifications.Broadcaster
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	store       repository.Store
	auth        auth.AuthServiceInterface
	posts       *posts.Service
	users       *users.Service
	engine      *interactions.Engine
	inbox       *notifications.Inbox
	broadcaster *notifications.Broadcaster

	uploader      storage.ImageUploader
	redis         *cache.RedisClient
	secureCookies bool
}

// NewHandlers creates a new handlers instance
func NewHandlers(deps Deps) *Handlers {
	useJSONFieldNames()
	return &Handlers{
		store:       deps.Store,
		auth:        deps.Auth,
		posts:       deps.Posts,
		users:       deps.Users,
		engine:      deps.Engine,
		inbox:       deps.Inbox,
		broadcaster: deps.Broadcaster,
	}
}

// SetImageUploader enables POST /uploads/image
func (h *Handlers) SetImageUploader(uploader storage.ImageUploader) {
	h.uploader = uploader
}

// SetRedisClient lets the health check report on the response cache
func (h *Handlers) SetRedisClient(client *cache.RedisClient) {
	h.redis = client
}

// SetSecureCookies marks session cookies Secure; enable behind TLS
func (h *Handlers) SetSecureCookies(secure bool) {
	h.secureCookies = secure
}
