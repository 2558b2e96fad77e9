package sqlstore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return repository.ErrInvalidInput
	}
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if err := requireID(userID); err != nil {
		return nil, err
	}
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByEmail gets a user by email (case-insensitive)
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", models.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, query repository.UserQuery) ([]*models.User, int64, error) {
	limit, offset := repository.Paginate(query.Limit, query.Offset, 20, 100)

	q := r.db.WithContext(ctx).Model(&models.User{})
	if s := strings.ToLower(strings.TrimSpace(query.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}
	if query.Role != "" {
		q = q.Where("role = ?", query.Role)
	}
	if query.Blocked != nil {
		q = q.Where("is_blocked = ?", *query.Blocked)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

func (r *userRepository) UpdateUser(ctx context.Context, userID string, patch repository.UserPatch) (*models.User, error) {
	if err := requireID(userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Bio != nil {
		updates["bio"] = *patch.Bio
	}
	if patch.ProfileImage != nil {
		updates["profile_image"] = *patch.ProfileImage
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.IsBlocked != nil {
		updates["is_blocked"] = *patch.IsBlocked
	}
	if patch.Password != nil {
		updates["password"] = *patch.Password
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
	}
	return r.GetUser(ctx, userID)
}

// DeleteUser removes the user and withdraws their likes so every post's
// counter keeps matching its like set
func (r *userRepository) DeleteUser(ctx context.Context, userID string) error {
	if err := requireID(userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).
			Where("id IN (?)", tx.Model(&models.PostLike{}).Select("post_id").Where("user_id = ?", userID)).
			UpdateColumn("likes", gorm.Expr("likes - 1")).Error
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", userID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *userRepository) CountUsers(ctx context.Context, role models.Role, blockedOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if blockedOnly {
		q = q.Where("is_blocked = ?", true)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *userRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.User{}).Order("created_at").Pluck("id", &ids).Error
	return ids, err
}
