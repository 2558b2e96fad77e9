package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/posts"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/util"
)

// ListCategories returns every category with its post count
// GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	views, err := h.posts.Categories(c.Request.Context())
	if util.HandleStoreError(c, err, "category") {
		return
	}

	out := make([]dto.CategoryResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.CategoryResponse{Slug: v.Slug, Name: v.Name, Count: v.Count})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// ListPosts returns a page of feed cards
// GET /api/v1/posts?category=&author=&q=&sort=newest|oldest|popular&limit=&offset=
func (h *Handlers) ListPosts(c *gin.Context) {
	limit, offset := util.Pagination(c, posts.DefaultPageSize, posts.MaxPageSize)
	list, total, err := h.posts.List(c.Request.Context(), postQuery(c, limit, offset))
	if util.HandleStoreError(c, err, "post") {
		return
	}
	util.RespondPage(c, dto.ToPostSummaries(list), total, limit, offset)
}

func postQuery(c *gin.Context, limit, offset int) repository.PostQuery {
	return repository.PostQuery{
		Category: c.Query("category"),
		AuthorID: c.Query("author"),
		Search:   c.Query("q"),
		Sort:     repository.PostSort(c.Query("sort")),
		Limit:    limit,
		Offset:   offset,
	}
}

// GetPost returns one post with its comments
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if util.HandleStoreError(c, err, "post") {
		return
	}
	c.JSON(http.StatusOK, dto.ToPostResponse(post))
}

// GetPostBySlug returns one post by its URL slug
// GET /api/v1/posts/slug/:slug
func (h *Handlers) GetPostBySlug(c *gin.Context) {
	post, err := h.posts.GetBySlug(c.Request.Context(), c.Param("slug"))
	if util.HandleStoreError(c, err, "post") {
		return
	}
	c.JSON(http.StatusOK, dto.ToPostResponse(post))
}

// CreatePost publishes a post authored by the signed-in user
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user, posts.CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Image:    req.Image,
	})
	if util.HandleStoreError(c, err, "post") {
		return
	}
	c.JSON(http.StatusCreated, dto.ToPostResponse(post))
}

// UpdatePost edits a post; author only
// PUT /api/v1/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.Update(c.Request.Context(), user, c.Param("id"), posts.UpdateInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Image:    req.Image,
	})
	if util.HandleStoreError(c, err, "post") {
		return
	}
	c.JSON(http.StatusOK, dto.ToPostResponse(post))
}

// DeletePost removes a post; author or admin
// DELETE /api/v1/posts/:id
// DELETE /api/v1/admin/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	err := h.posts.Delete(c.Request.Context(), user, c.Param("id"))
	if util.HandleStoreError(c, err, "post") {
		return
	}
	c.Status(http.StatusNoContent)
}
