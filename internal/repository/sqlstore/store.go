// Package sqlstore implements the repository contract on gorm. Postgres is
// used in production and sqlite for local runs and tests.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardfeed/backend/internal/database"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

// Store is the gorm-backed repository.Store
type Store struct {
	db            *gorm.DB
	users         *userRepository
	posts         *postRepository
	notifications *notificationRepository
	announcements *announcementRepository
}

// New wraps an open, migrated connection
func New(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		users:         &userRepository{db: db},
		posts:         &postRepository{db: db},
		notifications: &notificationRepository{db: db},
		announcements: &announcementRepository{db: db},
	}
}

// Open connects, migrates and returns a Store
func Open(opts database.Options) (*Store, error) {
	db, err := database.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return New(db), nil
}

// OpenMemory opens a private in-memory sqlite store; name isolates tests
func OpenMemory(name string) (*Store, error) {
	return Open(database.Options{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
}

func (s *Store) Users() repository.UserRepository                 { return s.users }
func (s *Store) Posts() repository.PostRepository                 { return s.posts }
func (s *Store) Notifications() repository.NotificationRepository { return s.notifications }
func (s *Store) Announcements() repository.AnnouncementRepository { return s.announcements }

// DB exposes the underlying connection for maintenance commands
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) NewID() string { return uuid.New().String() }

func (s *Store) Ping(ctx context.Context) error {
	return database.Health(s.db.WithContext(ctx))
}

func (s *Store) Close(ctx context.Context) error {
	return database.Close(s.db)
}

// Clean deletes every row, children first
func (s *Store) Clean(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Notification{},
			&models.Announcement{},
			&models.Comment{},
			&models.PostLike{},
			&models.Post{},
			&models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// translate maps gorm errors onto repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrConflict
	}
	return err
}

func requireID(id string) error {
	if id == "" {
		return repository.ErrInvalidID
	}
	return nil
}

var _ repository.Store = (*Store)(nil)
