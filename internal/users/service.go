// Package users implements profiles and admin moderation.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/cache"
	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/posts"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/util"
)

var (
	ErrSelfModeration = apierrors.Forbidden("admins cannot block, demote or delete themselves")
	ErrInvalidRole    = apierrors.ValidationError("role", "role must be user or admin")
)

// ProfileInput is a profile edit; nil fields are unchanged
type ProfileInput struct {
	FirstName    *string
	LastName     *string
	Bio          *string
	ProfileImage *string
}

// CreateInput is an admin-provisioned account
type CreateInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
}

// Stats is the admin dashboard summary
type Stats struct {
	Users         int64                      `json:"users"`
	Admins        int64                      `json:"admins"`
	Blocked       int64                      `json:"blocked"`
	Posts         int64                      `json:"posts"`
	Notifications int64                      `json:"notifications"`
	Announcements int64                      `json:"announcements"`
	Categories    []repository.CategoryCount `json:"categories"`
}

// Service handles user profile and moderation operations
type Service struct {
	store       repository.Store
	posts       *posts.Service
	invalidator cache.Invalidator
}

func NewService(store repository.Store, postService *posts.Service, invalidator cache.Invalidator) *Service {
	if invalidator == nil {
		invalidator = cache.NoopInvalidator{}
	}
	return &Service{store: store, posts: postService, invalidator: invalidator}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.store.Users().GetUser(ctx, userID)
}

// UpdateProfile edits user's profile and refreshes the author snapshots
// embedded in their posts and comments
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, in ProfileInput) (*models.User, error) {
	patch := repository.UserPatch{Bio: in.Bio, ProfileImage: in.ProfileImage}
	if in.FirstName != nil {
		first := strings.TrimSpace(*in.FirstName)
		if first == "" {
			return nil, apierrors.ValidationError("first_name", "first name is required")
		}
		patch.FirstName = &first
	}
	if in.LastName != nil {
		last := strings.TrimSpace(*in.LastName)
		patch.LastName = &last
	}

	updated, err := s.store.Users().UpdateUser(ctx, user.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if updated.Summary() != user.Summary() {
		n, err := s.posts.RefreshAuthorSnapshots(ctx, updated)
		if err != nil {
			logger.WarnWithFields("Author snapshot refresh failed", err, logger.WithUserID(user.ID))
		} else {
			logger.Log.Debug("Author snapshots refreshed", logger.WithUserID(user.ID), zap.Int64("records", n))
		}
	}
	s.invalidateUser(ctx, user.ID)
	return updated, nil
}

// List returns users matching query for the admin console
func (s *Service) List(ctx context.Context, query repository.UserQuery) ([]*models.User, int64, error) {
	if query.Role != "" && query.Role != models.RoleUser && query.Role != models.RoleAdmin {
		return nil, 0, ErrInvalidRole
	}
	return s.store.Users().ListUsers(ctx, query)
}

func (s *Service) SetBlocked(ctx context.Context, admin *models.User, userID string, blocked bool) (*models.User, error) {
	if admin.ID == userID {
		return nil, ErrSelfModeration
	}
	user, err := s.store.Users().UpdateUser(ctx, userID, repository.UserPatch{IsBlocked: &blocked})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("User block state changed",
		logger.WithUserID(userID),
		zap.String("admin_id", admin.ID),
		zap.Bool("blocked", blocked))
	return user, nil
}

func (s *Service) SetRole(ctx context.Context, admin *models.User, userID string, role models.Role) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if admin.ID == userID && role != models.RoleAdmin {
		return nil, ErrSelfModeration
	}
	user, err := s.store.Users().UpdateUser(ctx, userID, repository.UserPatch{Role: &role})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("User role changed",
		logger.WithUserID(userID),
		zap.String("admin_id", admin.ID),
		zap.String("role", string(role)))
	return user, nil
}

// CreateUser provisions an email/password account on behalf of an admin
func (s *Service) CreateUser(ctx context.Context, in CreateInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	if !util.IsValidEmail(email) {
		return nil, apierrors.ValidationError("email", "a valid email is required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, apierrors.ValidationError("first_name", "first name is required")
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Role != models.RoleUser && in.Role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        s.store.NewID(),
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  &hash,
		Role:      in.Role,
		Provider:  models.ProviderAdminCreated,
	}
	if err := s.store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, auth.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.Log.Info("User created by admin", logger.WithUserID(user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Delete removes a user together with their posts and inbox
func (s *Service) Delete(ctx context.Context, admin *models.User, userID string) error {
	if admin.ID == userID {
		return ErrSelfModeration
	}
	if _, err := s.store.Users().GetUser(ctx, userID); err != nil {
		return err
	}

	removedPosts, err := s.store.Posts().DeletePostsByAuthor(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user posts: %w", err)
	}
	removedNotifications, err := s.store.Notifications().DeleteAllForRecipient(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user notifications: %w", err)
	}
	if err := s.store.Users().DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.invalidateUser(ctx, userID)
	if err := s.invalidator.InvalidatePaths(ctx, "/api/v1/categories"); err != nil {
		logger.WarnWithFields("Cache invalidation failed", err, logger.WithUserID(userID))
	}
	logger.Log.Info("User deleted",
		logger.WithUserID(userID),
		zap.String("admin_id", admin.ID),
		zap.Int64("posts", removedPosts),
		zap.Int64("notifications", removedNotifications))
	return nil
}

// Stats gathers dashboard counters
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.Users, err = s.store.Users().CountUsers(ctx, "", false); err != nil {
		return nil, err
	}
	if st.Admins, err = s.store.Users().CountUsers(ctx, models.RoleAdmin, false); err != nil {
		return nil, err
	}
	if st.Blocked, err = s.store.Users().CountUsers(ctx, "", true); err != nil {
		return nil, err
	}
	if _, st.Posts, err = s.store.Posts().ListPosts(ctx, repository.PostQuery{Limit: 1}); err != nil {
		return nil, err
	}
	if st.Notifications, err = s.store.Notifications().CountNotifications(ctx); err != nil {
		return nil, err
	}
	if _, st.Announcements, err = s.store.Announcements().ListAnnouncements(ctx, 1, 0); err != nil {
		return nil, err
	}
	if st.Categories, err = s.store.Posts().CategoryCounts(ctx); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Service) invalidateUser(ctx context.Context, userID string) {
	if err := s.invalidator.InvalidatePaths(ctx, cache.UserPaths(userID)...); err != nil {
		logger.WarnWithFields("Cache invalidation failed", err, logger.WithUserID(userID))
	}
}
