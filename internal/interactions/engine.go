// Package interactions implements like toggling, commenting and sharing,
// along with the notifications those actions send to post authors.
package interactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cardfeed/backend/internal/cache"
	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/metrics"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/telemetry"
)

// MaxCommentLength caps comment text, counted in runes after trimming
const MaxCommentLength = 2000

// LikeResult is the state of a post after ToggleLike
type LikeResult struct {
	Post  *models.Post
	Liked bool
}

// Engine applies post interactions
type Engine struct {
	posts       repository.PostRepository
	creator     *notifications.Creator
	invalidator cache.Invalidator
	newID       func() string
}

// NewEngine creates an engine over the store's posts. A nil invalidator
// disables cache invalidation.
func NewEngine(store repository.Store, creator *notifications.Creator, invalidator cache.Invalidator) *Engine {
	if invalidator == nil {
		invalidator = cache.NoopInvalidator{}
	}
	return &Engine{
		posts:       store.Posts(),
		creator:     creator,
		invalidator: invalidator,
		newID:       store.NewID,
	}
}

// ToggleLike adds user to the post's like set, or removes them if already
// present. A fresh like notifies the post author.
func (e *Engine) ToggleLike(ctx context.Context, postID string, user *models.User) (_ *LikeResult, err error) {
	ctx, span := telemetry.StartInteraction(ctx, "toggle_like", postID, user.ID)
	defer func() { telemetry.End(span, err) }()

	post, liked, err := e.posts.ToggleLike(ctx, postID, user.ID)
	if err != nil {
		return nil, err
	}

	if liked {
		metrics.RecordInteraction("like")
		e.notify(ctx, post, user, models.NotificationLike)
	} else {
		metrics.RecordInteraction("unlike")
	}
	e.invalidate(ctx, post)
	return &LikeResult{Post: post, Liked: liked}, nil
}

// AddComment appends a comment by user and notifies the post author
func (e *Engine) AddComment(ctx context.Context, postID string, user *models.User, text string) (_ *models.Post, err error) {
	ctx, span := telemetry.StartInteraction(ctx, "comment", postID, user.ID)
	defer func() { telemetry.End(span, err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierrors.ValidationError("text", "comment text is required")
	}
	if len([]rune(text)) > MaxCommentLength {
		return nil, apierrors.ValidationError("text", fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	}

	comment := &models.Comment{
		ID:        e.newID(),
		Author:    user.Summary(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	post, err := e.posts.AppendComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}

	metrics.RecordInteraction("comment")
	e.notify(ctx, post, user, models.NotificationComment)
	e.invalidate(ctx, post)
	return post, nil
}

// IncrementShare counts one share. It does not notify and is not idempotent.
func (e *Engine) IncrementShare(ctx context.Context, postID string) (_ *models.Post, err error) {
	ctx, span := telemetry.StartInteraction(ctx, "share", postID, "")
	defer func() { telemetry.End(span, err) }()

	post, err := e.posts.IncrementShares(ctx, postID)
	if err != nil {
		return nil, err
	}
	metrics.RecordInteraction("share")
	e.invalidate(ctx, post)
	return post, nil
}

// notify tells the post author about actor's interaction. Failures are
// logged and never propagate.
func (e *Engine) notify(ctx context.Context, post *models.Post, actor *models.User, kind models.NotificationType) {
	if e.creator == nil || post.Author.ID == "" {
		return
	}
	_, err := e.creator.Create(ctx, notifications.NewNotification{
		RecipientID: post.Author.ID,
		Type:        kind,
		Post:        notifications.PostRefOf(post),
		Actor:       actor.Summary(),
	})
	if err != nil {
		logger.WarnWithFields("Failed to create interaction notification", err,
			logger.WithContextRequestID(ctx),
			logger.WithPostID(post.ID),
			logger.WithUserID(actor.ID))
	}
}

func (e *Engine) invalidate(ctx context.Context, post *models.Post) {
	if err := e.invalidator.InvalidatePaths(ctx, cache.PostPaths(post)...); err != nil {
		logger.WarnWithFields("Cache invalidation failed", err, logger.WithContextRequestID(ctx), logger.WithPostID(post.ID))
	}
}
