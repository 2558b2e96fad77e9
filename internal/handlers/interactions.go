package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/util"
)

// ToggleLike likes the post, or unlikes it if the user already did
// POST /api/v1/posts/:id/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	result, err := h.engine.ToggleLike(c.Request.Context(), c.Param("id"), user)
	if util.HandleStoreError(c, err, "post") {
		return
	}
	c.JSON(http.StatusOK, dto.LikeResponse{
		Liked: result.Liked,
		Likes: result.Post.Likes,
		Post:  dto.ToPostResponse(result.Post),
	})
}

// AddComment appends a comment to the post
// POST /api/v1/posts/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.engine.AddComment(c.Request.Context(), c.Param("id"), user, req.Text)
	if util.HandleStoreError(c, err, "post") {
		return
	}
	c.JSON(http.StatusCreated, dto.ToPostResponse(post))
}

// SharePost counts one share. Anonymous readers may share.
// POST /api/v1/posts/:id/share
func (h *Handlers) SharePost(c *gin.Context) {
	post, err := h.engine.IncrementShare(c.Request.Context(), c.Param("id"))
	if util.HandleStoreError(c, err, "post") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": post.Shares})
}
