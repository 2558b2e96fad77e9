package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

type notificationRepository struct {
	db *gorm.DB
}

func (r *notificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n == nil || n.RecipientID == "" {
		return repository.ErrInvalidInput
	}
	return translate(r.db.WithContext(ctx).Create(n).Error)
}

// ListNotifications returns the recipient's inbox, newest first
func (r *notificationRepository) ListNotifications(ctx context.Context, recipientID string, limit, offset int) ([]*models.Notification, int64, error) {
	limit, offset = repository.Paginate(limit, offset, 20, 100)
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*models.Notification
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, recipientID string) (bool, error) {
	if err := requireID(notificationID); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", notificationID, recipientID, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected > 0, res.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) DeleteNotification(ctx context.Context, notificationID, recipientID string) (bool, error) {
	if err := requireID(notificationID); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&models.Notification{})
	return res.RowsAffected > 0, res.Error
}

func (r *notificationRepository) DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) DeleteByBroadcast(ctx context.Context, broadcastID string) (int64, error) {
	if err := requireID(broadcastID); err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("broadcast_id = ?", broadcastID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountNotifications(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Count(&count).Error
	return count, err
}
