// Package notifications creates interaction notifications, serves the
// per-user inbox and fans admin announcements out to an audience.
package notifications

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/metrics"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

// NewNotification is the input to Creator.Create
type NewNotification struct {
	RecipientID string
	Type        models.NotificationType
	Post        models.PostRef
	Actor       models.AuthorSummary
	Title       string
	Description string
	Link        string
	BroadcastID string
}

// Creator inserts single notifications
type Creator struct {
	repo repository.NotificationRepository
}

func NewCreator(repo repository.NotificationRepository) *Creator {
	return &Creator{repo: repo}
}

// Create inserts one unread notification. A notification whose actor is its
// recipient is never stored: Create returns (nil, nil) for it.
func (c *Creator) Create(ctx context.Context, in NewNotification) (*models.Notification, error) {
	if in.RecipientID == "" {
		return nil, fmt.Errorf("notification recipient: %w", repository.ErrInvalidInput)
	}
	if in.RecipientID == in.Actor.ID {
		metrics.RecordNotification(string(in.Type), "skipped_self")
		logger.Log.Debug("Skipping self notification",
			logger.WithUserID(in.RecipientID),
			zap.String("type", string(in.Type)))
		return nil, nil
	}

	n := &models.Notification{
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Post:        in.Post,
		Actor:       in.Actor,
		Title:       in.Title,
		Description: in.Description,
		Link:        in.Link,
		BroadcastID: in.BroadcastID,
	}
	if err := c.repo.CreateNotification(ctx, n); err != nil {
		metrics.RecordNotification(string(in.Type), "failed")
		return nil, fmt.Errorf("create %s notification: %w", in.Type, err)
	}
	metrics.RecordNotification(string(in.Type), "created")
	return n, nil
}

// PostRefOf snapshots the post fields carried by interaction notifications
func PostRefOf(post *models.Post) models.PostRef {
	return models.PostRef{ID: post.ID, Slug: post.Slug, Title: post.Title}
}
