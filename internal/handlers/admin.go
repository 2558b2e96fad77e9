package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/posts"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/users"
	"github.com/cardfeed/backend/internal/util"
)

const adminPageSize = 25

// AdminStats returns the dashboard counters
// GET /api/v1/admin/stats
func (h *Handlers) AdminStats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context())
	if util.HandleStoreError(c, err, "stats") {
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminListUsers lists accounts with search and filters
// GET /api/v1/admin/users?q=&role=&blocked=&limit=&offset=
func (h *Handlers) AdminListUsers(c *gin.Context) {
	limit, offset := util.Pagination(c, adminPageSize, 100)
	list, total, err := h.users.List(c.Request.Context(), repository.UserQuery{
		Search:  c.Query("q"),
		Role:    models.Role(c.Query("role")),
		Blocked: util.ParseBoolPtr(c.Query("blocked")),
		Limit:   limit,
		Offset:  offset,
	})
	if util.HandleStoreError(c, err, "user") {
		return
	}
	util.RespondPage(c, dto.ToUserDetailResponses(list), total, limit, offset)
}

// AdminCreateUser provisions an account
// POST /api/v1/admin/users
func (h *Handlers) AdminCreateUser(c *gin.Context) {
	var req dto.AdminCreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), users.CreateInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.Role(req.Role),
	})
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDetailResponse(user))
}

// AdminSetBlocked blocks or unblocks a user
// PUT /api/v1/admin/users/:id/block
func (h *Handlers) AdminSetBlocked(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.SetBlockedRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.SetBlocked(c.Request.Context(), admin, c.Param("id"), *req.Blocked)
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDetailResponse(user))
}

// AdminSetRole promotes or demotes a user
// PUT /api/v1/admin/users/:id/role
func (h *Handlers) AdminSetRole(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.SetRole(c.Request.Context(), admin, c.Param("id"), models.Role(req.Role))
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDetailResponse(user))
}

// AdminDeleteUser removes a user with their posts and inbox
// DELETE /api/v1/admin/users/:id
func (h *Handlers) AdminDeleteUser(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	err := h.users.Delete(c.Request.Context(), admin, c.Param("id"))
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminListPosts is the moderation listing; same filters as the feed
// GET /api/v1/admin/posts
func (h *Handlers) AdminListPosts(c *gin.Context) {
	limit, offset := util.Pagination(c, adminPageSize, posts.MaxPageSize)
	list, total, err := h.posts.List(c.Request.Context(), postQuery(c, limit, offset))
	if util.HandleStoreError(c, err, "post") {
		return
	}
	util.RespondPage(c, dto.ToPostSummaries(list), total, limit, offset)
}

// SendAnnouncement broadcasts a notification to the chosen audience and
// returns the delivery summary
// POST /api/v1/admin/announcements
func (h *Handlers) SendAnnouncement(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.BroadcastRequest
	if !bindJSON(c, &req) {
		return
	}

	summary, err := h.broadcaster.Dispatch(c.Request.Context(), notifications.BroadcastRequest{
		Admin:       admin.Summary(),
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		TargetMode:  models.TargetMode(req.TargetMode),
		UserIDs:     req.UserIDs,
		Category:    req.Category,
	})
	if util.HandleStoreError(c, err, "announcement") {
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// ListAnnouncements returns the broadcast log, newest first
// GET /api/v1/admin/announcements
func (h *Handlers) ListAnnouncements(c *gin.Context) {
	limit, offset := util.Pagination(c, adminPageSize, 100)
	list, total, err := h.broadcaster.ListAnnouncements(c.Request.Context(), limit, offset)
	if util.HandleStoreError(c, err, "announcement") {
		return
	}
	util.RespondPage(c, list, total, limit, offset)
}

// GetAnnouncement returns one broadcast log entry
// GET /api/v1/admin/announcements/:id
func (h *Handlers) GetAnnouncement(c *gin.Context) {
	announcement, err := h.broadcaster.GetAnnouncement(c.Request.Context(), c.Param("id"))
	if util.HandleStoreError(c, err, "announcement") {
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// RetractAnnouncement deletes every notification a broadcast delivered.
// The log entry is kept.
// DELETE /api/v1/admin/announcements/:id/notifications
func (h *Handlers) RetractAnnouncement(c *gin.Context) {
	count, err := h.broadcaster.DeleteBroadcast(c.Request.Context(), c.Param("id"))
	if util.HandleStoreError(c, err, "announcement") {
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}
