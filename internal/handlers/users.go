package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/dto"
	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/posts"
	"github.com/cardfeed/backend/internal/storage"
	"github.com/cardfeed/backend/internal/users"
	"github.com/cardfeed/backend/internal/util"
)

// GetUser returns a public profile
// GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), c.Param("id"))
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// GetUserPosts lists a user's posts, newest first
// GET /api/v1/users/:id/posts
func (h *Handlers) GetUserPosts(c *gin.Context) {
	limit, offset := util.Pagination(c, posts.DefaultPageSize, posts.MaxPageSize)
	list, total, err := h.posts.ListByAuthor(c.Request.Context(), c.Param("id"), limit, offset)
	if util.HandleStoreError(c, err, "post") {
		return
	}
	util.RespondPage(c, dto.ToPostSummaries(list), total, limit, offset)
}

// UpdateMe edits the signed-in user's profile
// PUT /api/v1/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user, users.ProfileInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	})
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDetailResponse(updated))
}

// UploadImage stores a post or profile image and returns its public URL
// POST /api/v1/uploads/image (multipart: file, kind=post|profile)
func (h *Handlers) UploadImage(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if h.uploader == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("image uploads"))
		return
	}

	kind := storage.KindPost
	switch c.PostForm("kind") {
	case "", "post":
	case "profile":
		kind = storage.KindProfile
	default:
		util.RespondValidationError(c, "kind", "kind must be post or profile")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		util.RespondValidationError(c, "file", "file is required")
		return
	}
	if header.Size > storage.MaxImageSize {
		util.RespondValidationError(c, "file", "image must be at most 5MB")
		return
	}

	src, err := header.Open()
	if err != nil {
		util.RespondBadRequest(c, "could not read upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, storage.MaxImageSize+1))
	if err != nil {
		util.RespondBadRequest(c, "could not read upload")
		return
	}

	result, err := h.uploader.UploadImage(c.Request.Context(), data, header.Filename, user.ID, kind)
	switch {
	case errors.Is(err, storage.ErrUnsupportedImage):
		util.RespondValidationError(c, "file", "image must be jpeg, png, gif or webp")
		return
	case errors.Is(err, storage.ErrImageTooLarge):
		util.RespondValidationError(c, "file", "image must be at most 5MB")
		return
	case errors.Is(err, storage.ErrEmptyImage):
		util.RespondValidationError(c, "file", "image is empty")
		return
	case util.HandleStoreError(c, err, "image"):
		return
	}
	c.JSON(http.StatusCreated, result)
}
