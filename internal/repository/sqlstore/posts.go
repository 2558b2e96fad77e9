package sqlstore

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

type postRepository struct {
	db *gorm.DB
}

func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil {
		return repository.ErrInvalidInput
	}
	post.Likes = 0
	post.LikedBy = []string{}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

func (r *postRepository) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	if err := requireID(postID); err != nil {
		return nil, err
	}
	return r.load(ctx, r.db.WithContext(ctx).Where("id = ?", postID))
}

func (r *postRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if slug == "" {
		return nil, repository.ErrInvalidID
	}
	return r.load(ctx, r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *postRepository) load(ctx context.Context, q *gorm.DB) (*models.Post, error) {
	var post models.Post
	err := q.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&post).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := r.attachLikes(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// attachLikes fills LikedBy for every post with one query
func (r *postRepository) attachLikes(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	byID := make(map[string]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		p.LikedBy = []string{}
		byID[p.ID] = p
	}

	var likes []models.PostLike
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Order("created_at ASC").
		Find(&likes).Error
	if err != nil {
		return err
	}
	for _, like := range likes {
		if p, ok := byID[like.PostID]; ok {
			p.LikedBy = append(p.LikedBy, like.UserID)
		}
	}
	return nil
}

func (r *postRepository) ListPosts(ctx context.Context, query repository.PostQuery) ([]*models.Post, int64, error) {
	limit, offset := repository.Paginate(query.Limit, query.Offset, 20, 50)

	q := r.db.WithContext(ctx).Model(&models.Post{})
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}
	if query.AuthorID != "" {
		q = q.Where("author_id = ?", query.AuthorID)
	}
	if s := strings.ToLower(strings.TrimSpace(query.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch query.Sort {
	case repository.SortOldest:
		q = q.Order("created_at ASC")
	case repository.SortPopular:
		q = q.Order("likes DESC").Order("created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}

	var posts []*models.Post
	err := q.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Limit(limit).Offset(offset).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachLikes(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) UpdatePost(ctx context.Context, postID string, patch repository.PostPatch) (*models.Post, error) {
	if err := requireID(postID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Slug != nil {
		updates["slug"] = *patch.Slug
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Excerpt != nil {
		updates["excerpt"] = *patch.Excerpt
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Image != nil {
		updates["image"] = *patch.Image
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Updates(updates)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, repository.ErrNotFound
		}
	}
	return r.GetPost(ctx, postID)
}

// DeletePost removes the post with its comments and like set
func (r *postRepository) DeletePost(ctx context.Context, postID string) error {
	if err := requireID(postID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", postID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *postRepository) DeletePostsByAuthor(ctx context.Context, authorID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", authorID)
		if err := tx.Where("post_id IN (?)", owned).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN (?)", owned).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Where("author_id = ?", authorID).Delete(&models.Post{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// ToggleLike inserts the (post, user) pair or removes it if present and
// moves the counter inside the same transaction
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, bool, error) {
	if err := requireID(postID); err != nil {
		return nil, false, err
	}
	if userID == "" {
		return nil, false, repository.ErrInvalidInput
	}

	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return repository.ErrNotFound
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostLike{PostID: postID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}

		delta := 1
		if res.RowsAffected == 1 {
			liked = true
		} else {
			if err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{}).Error; err != nil {
				return err
			}
			delta = -1
		}

		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes", gorm.Expr("likes + ?", delta)).Error
	})
	if err != nil {
		return nil, false, translate(err)
	}

	post, err := r.GetPost(ctx, postID)
	return post, liked, err
}

func (r *postRepository) AppendComment(ctx context.Context, postID string, comment *models.Comment) (*models.Post, error) {
	if err := requireID(postID); err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, repository.ErrInvalidInput
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return repository.ErrNotFound
		}
		comment.PostID = postID
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return r.GetPost(ctx, postID)
}

func (r *postRepository) IncrementShares(ctx context.Context, postID string) (*models.Post, error) {
	if err := requireID(postID); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("shares", gorm.Expr("shares + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetPost(ctx, postID)
}

func (r *postRepository) CategoryCounts(ctx context.Context) ([]repository.CategoryCount, error) {
	var counts []repository.CategoryCount
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category").
		Scan(&counts).Error
	return counts, err
}

func (r *postRepository) AuthorIDsByCategory(ctx context.Context, category string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("category = ?", category).
		Distinct().
		Order("author_id").
		Pluck("author_id", &ids).Error
	return ids, err
}

func (r *postRepository) UpdateAuthorSnapshots(ctx context.Context, author models.AuthorSummary) (int64, error) {
	if err := requireID(author.ID); err != nil {
		return 0, err
	}
	var touched int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cols := map[string]interface{}{"author_name": author.Name, "author_image": author.Image}
		res := tx.Model(&models.Post{}).Where("author_id = ?", author.ID).UpdateColumns(cols)
		if res.Error != nil {
			return res.Error
		}
		touched += res.RowsAffected
		res = tx.Model(&models.Comment{}).Where("author_id = ?", author.ID).UpdateColumns(cols)
		if res.Error != nil {
			return res.Error
		}
		touched += res.RowsAffected
		return nil
	})
	return touched, err
}
