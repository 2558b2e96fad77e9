package notifications

import (
	"context"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Inbox serves one recipient's notifications. Every operation is scoped to
// the recipient so nobody can read or change another user's entries.
type Inbox struct {
	repo repository.NotificationRepository
}

func NewInbox(repo repository.NotificationRepository) *Inbox {
	return &Inbox{repo: repo}
}

// List returns recipientID's notifications newest first plus the total
func (i *Inbox) List(ctx context.Context, recipientID string, limit, offset int) ([]*models.Notification, int64, error) {
	limit, offset = repository.Paginate(limit, offset, DefaultPageSize, MaxPageSize)
	return i.repo.ListNotifications(ctx, recipientID, limit, offset)
}

func (i *Inbox) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return i.repo.CountUnread(ctx, recipientID)
}

// MarkRead reports changed=false when the entry was already read or missing
func (i *Inbox) MarkRead(ctx context.Context, notificationID, recipientID string) (bool, error) {
	return i.repo.MarkRead(ctx, notificationID, recipientID)
}

func (i *Inbox) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	n, err := i.repo.MarkAllRead(ctx, recipientID)
	if err == nil && n > 0 {
		logger.Log.Debug("Marked notifications read", logger.WithUserID(recipientID), zap.Int64("count", n))
	}
	return n, err
}

// Delete reports changed=false when the entry was already gone
func (i *Inbox) Delete(ctx context.Context, notificationID, recipientID string) (bool, error) {
	return i.repo.DeleteNotification(ctx, notificationID, recipientID)
}

func (i *Inbox) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	return i.repo.DeleteAllForRecipient(ctx, recipientID)
}
