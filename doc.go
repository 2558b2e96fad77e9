// Package backend provides the CardFeed API server.
//
// The binaries live under cmd/ and the implementation is organized into
// internal packages:
//
// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/server: route table and middleware order
// - internal/interactions: likes, comments and shares with their notifications
// - internal/notifications: notification creation, inboxes and admin broadcasts
// - internal/posts, internal/users: content and account services
// - internal/auth: sessions, passwords and Google sign-in
// - internal/repository: storage interfaces with mongo and gorm backends
// - internal/cache: Redis response cache and invalidation
// - internal/storage: S3 image uploads
// - internal/middleware: auth, rate limiting, metrics, tracing and caching
// - internal/kernel: service wiring and shutdown order
// - internal/cli: the cardfeed admin command-line client
//
// See the individual package documentation for detailed API reference.
package backend
