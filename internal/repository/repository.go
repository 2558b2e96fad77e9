// Package repository defines the storage contract shared by the document
// store (mongostore) and the relational store (sqlstore).
package repository

import (
	"context"
	"errors"

	"github.com/cardfeed/backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned when an id is malformed for the backing store
	ErrInvalidID = errors.New("invalid id")
	// ErrConflict is returned when a unique constraint would be violated
	ErrConflict = errors.New("record already exists")
	// ErrInvalidInput is returned for nil or structurally invalid arguments
	ErrInvalidInput = errors.New("invalid input")
)

// UserQuery filters admin user listings
type UserQuery struct {
	Search  string
	Role    models.Role
	Blocked *bool
	Limit   int
	Offset  int
}

// UserPatch is a partial user update; nil fields are left alone
type UserPatch struct {
	FirstName    *string
	LastName     *string
	Bio          *string
	ProfileImage *string
	Role         *models.Role
	IsBlocked    *bool
	Password     *string
}

// PostSort orders post listings
type PostSort string

const (
	SortNewest  PostSort = "newest"
	SortOldest  PostSort = "oldest"
	SortPopular PostSort = "popular"
)

// PostQuery filters post listings
type PostQuery struct {
	Category string
	AuthorID string
	Search   string
	Sort     PostSort
	Limit    int
	Offset   int
}

// PostPatch is a partial post update
type PostPatch struct {
	Title    *string
	Slug     *string
	Content  *string
	Excerpt  *string
	Category *string
	Image    *string
}

// CategoryCount pairs a category slug with its post count
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// UserRepository handles all storage operations for users
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, query UserQuery) ([]*models.User, int64, error)
	UpdateUser(ctx context.Context, userID string, patch UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
	CountUsers(ctx context.Context, role models.Role, blockedOnly bool) (int64, error)

	// ListUserIDs returns the id of every user; used to resolve "all" audiences
	ListUserIDs(ctx context.Context) ([]string, error)
}

// PostRepository handles storage for posts and their interactions
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPosts(ctx context.Context, query PostQuery) ([]*models.Post, int64, error)
	UpdatePost(ctx context.Context, postID string, patch PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, postID string) error
	DeletePostsByAuthor(ctx context.Context, authorID string) (int64, error)

	// ToggleLike flips userID's membership in the post's like set and moves
	// the counter with it in one atomic step. liked reports the new state.
	ToggleLike(ctx context.Context, postID, userID string) (post *models.Post, liked bool, err error)
	AppendComment(ctx context.Context, postID string, comment *models.Comment) (*models.Post, error)
	IncrementShares(ctx context.Context, postID string) (*models.Post, error)

	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	// AuthorIDsByCategory returns the distinct author ids of posts in category
	AuthorIDsByCategory(ctx context.Context, category string) ([]string, error)

	// UpdateAuthorSnapshots rewrites the embedded author summary on every
	// post and comment authored by author.ID
	UpdateAuthorSnapshots(ctx context.Context, author models.AuthorSummary) (int64, error)
}

// NotificationRepository handles storage for notification inboxes
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipientID string, limit, offset int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)

	// MarkRead returns changed=false when the notification was already read
	// or does not belong to recipientID
	MarkRead(ctx context.Context, notificationID, recipientID string) (changed bool, err error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	DeleteNotification(ctx context.Context, notificationID, recipientID string) (deleted bool, err error)
	DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error)
	DeleteByBroadcast(ctx context.Context, broadcastID string) (int64, error)
	CountNotifications(ctx context.Context) (int64, error)
}

// AnnouncementRepository stores the broadcast log
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error)
	ListAnnouncements(ctx context.Context, limit, offset int) ([]*models.Announcement, int64, error)
}

// Store bundles every repository over one backing connection
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Notifications() NotificationRepository
	Announcements() AnnouncementRepository

	// NewID returns a fresh id in the store's native format
	NewID() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	// Clean removes every record; used by seeding and tests
	Clean(ctx context.Context) error
}

// Paginate clamps limit and offset to sane bounds
func Paginate(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
