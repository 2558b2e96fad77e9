// Package posts implements post authoring, listing and category views.
package posts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/cache"
	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/util"
)

const (
	MaxTitleLength  = 200
	DefaultPageSize = 10
	MaxPageSize     = 50
	slugSuffixLen   = 8
)

var (
	ErrNotAuthor = apierrors.Forbidden("only the author can edit this post")
	ErrNotOwner  = apierrors.Forbidden("only the author or an admin can delete this post")
)

// CreateInput is a new post as submitted by its author
type CreateInput struct {
	Title    string
	Content  string
	Category string
	Image    string
}

// UpdateInput is a partial edit; nil fields are unchanged
type UpdateInput struct {
	Title    *string
	Content  *string
	Category *string
	Image    *string
}

// CategoryView is a category with its current post count
type CategoryView struct {
	models.Category
	Count int64 `json:"count"`
}

// Service handles post operations
type Service struct {
	repo        repository.PostRepository
	invalidator cache.Invalidator
	newID       func() string
}

func NewService(store repository.Store, invalidator cache.Invalidator) *Service {
	if invalidator == nil {
		invalidator = cache.NoopInvalidator{}
	}
	return &Service{repo: store.Posts(), invalidator: invalidator, newID: store.NewID}
}

// Create validates input and stores a post authored by author
func (s *Service) Create(ctx context.Context, author *models.User, in CreateInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	if !models.IsValidCategory(in.Category) {
		return nil, apierrors.ValidationError("category", "unknown category")
	}

	id := s.newID()
	post := &models.Post{
		ID:       id,
		Slug:     deriveSlug(title, id),
		Title:    title,
		Content:  in.Content,
		Excerpt:  util.Excerpt(in.Content, util.ExcerptLength),
		Category: in.Category,
		Author:   author.Summary(),
		Image:    strings.TrimSpace(in.Image),
		LikedBy:  []string{},
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.invalidate(ctx, post)
	logger.Log.Info("Post created",
		logger.WithPostID(post.ID),
		logger.WithUserID(author.ID),
		zap.String("category", post.Category))
	return post, nil
}

func (s *Service) Get(ctx context.Context, postID string) (*models.Post, error) {
	return s.repo.GetPost(ctx, postID)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.repo.GetPostBySlug(ctx, slug)
}

// List returns a page of posts plus the total matching count
func (s *Service) List(ctx context.Context, query repository.PostQuery) ([]*models.Post, int64, error) {
	query.Limit, query.Offset = repository.Paginate(query.Limit, query.Offset, DefaultPageSize, MaxPageSize)
	switch query.Sort {
	case repository.SortNewest, repository.SortOldest, repository.SortPopular:
	default:
		query.Sort = repository.SortNewest
	}
	if query.Category != "" && !models.IsValidCategory(query.Category) {
		return nil, 0, apierrors.ValidationError("category", "unknown category")
	}
	query.Search = strings.TrimSpace(query.Search)
	return s.repo.ListPosts(ctx, query)
}

// ListByAuthor is List restricted to one author
func (s *Service) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, int64, error) {
	return s.List(ctx, repository.PostQuery{AuthorID: authorID, Limit: limit, Offset: offset})
}

// Update applies an author's edit and re-derives excerpt and slug
func (s *Service) Update(ctx context.Context, actor *models.User, postID string, in UpdateInput) (*models.Post, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author.ID != actor.ID {
		return nil, ErrNotAuthor
	}

	var patch repository.PostPatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		slug := deriveSlug(title, post.ID)
		patch.Title = &title
		patch.Slug = &slug
	}
	if in.Content != nil {
		if err := validateContent(*in.Content); err != nil {
			return nil, err
		}
		excerpt := util.Excerpt(*in.Content, util.ExcerptLength)
		patch.Content = in.Content
		patch.Excerpt = &excerpt
	}
	if in.Category != nil {
		if !models.IsValidCategory(*in.Category) {
			return nil, apierrors.ValidationError("category", "unknown category")
		}
		patch.Category = in.Category
	}
	if in.Image != nil {
		image := strings.TrimSpace(*in.Image)
		patch.Image = &image
	}

	updated, err := s.repo.UpdatePost(ctx, postID, patch)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	// the old slug page must go too
	s.invalidate(ctx, post)
	s.invalidate(ctx, updated)
	return updated, nil
}

// Delete removes a post with its comments and likes. Only the author or an
// admin may delete.
func (s *Service) Delete(ctx context.Context, actor *models.User, postID string) error {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.Author.ID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwner
	}
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.invalidate(ctx, post)
	logger.Log.Info("Post deleted", logger.WithPostID(postID), logger.WithUserID(actor.ID))
	return nil
}

// Categories returns the static category list with post counts
func (s *Service) Categories(ctx context.Context) ([]CategoryView, error) {
	counts, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	byCategory := make(map[string]int64, len(counts))
	for _, c := range counts {
		byCategory[c.Category] = c.Count
	}
	views := make([]CategoryView, 0, len(models.Categories))
	for _, c := range models.Categories {
		views = append(views, CategoryView{Category: c, Count: byCategory[c.Slug]})
	}
	return views, nil
}

// RefreshAuthorSnapshots rewrites the author summary embedded in user's
// posts and comments
func (s *Service) RefreshAuthorSnapshots(ctx context.Context, user *models.User) (int64, error) {
	n, err := s.repo.UpdateAuthorSnapshots(ctx, user.Summary())
	if err != nil {
		return 0, fmt.Errorf("refresh author snapshots: %w", err)
	}
	if n > 0 {
		if err := s.invalidator.InvalidatePaths(ctx, cache.UserPaths(user.ID)...); err != nil {
			logger.WarnWithFields("Cache invalidation failed", err, logger.WithUserID(user.ID))
		}
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context, post *models.Post) {
	if err := s.invalidator.InvalidatePaths(ctx, cache.PostPaths(post)...); err != nil {
		logger.WarnWithFields("Cache invalidation failed", err, logger.WithPostID(post.ID))
	}
}

func validateTitle(title string) error {
	if title == "" {
		return apierrors.ValidationError("title", "title is required")
	}
	if len([]rune(title)) > MaxTitleLength {
		return apierrors.ValidationError("title", fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apierrors.ValidationError("content", "content is required")
	}
	return nil
}

// deriveSlug joins the slugified title with the tail of the post id so
// slugs stay unique across equal titles and stable across edits
func deriveSlug(title, id string) string {
	base := util.Slugify(title)
	if base == "" {
		base = "post"
	}
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > slugSuffixLen {
		suffix = suffix[len(suffix)-slugSuffixLen:]
	}
	return base + "-" + strings.ToLower(suffix)
}
