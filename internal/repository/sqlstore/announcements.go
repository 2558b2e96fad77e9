package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

type announcementRepository struct {
	db *gorm.DB
}

func (r *announcementRepository) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a == nil {
		return repository.ErrInvalidInput
	}
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *announcementRepository) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var a models.Announcement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *announcementRepository) ListAnnouncements(ctx context.Context, limit, offset int) ([]*models.Announcement, int64, error) {
	limit, offset = repository.Paginate(limit, offset, 20, 100)
	q := r.db.WithContext(ctx).Model(&models.Announcement{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*models.Announcement
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}
