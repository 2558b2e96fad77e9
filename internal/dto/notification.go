package dto

import (
	"time"

	"github.com/cardfeed/backend/internal/models"
)

// NotificationResponse is one inbox entry
type NotificationResponse struct {
	ID          string                  `json:"id"`
	Type        models.NotificationType `json:"type"`
	Post        *models.PostRef         `json:"post,omitempty"`
	Actor       models.AuthorSummary    `json:"actor"`
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"description,omitempty"`
	Link        string                  `json:"link,omitempty"`
	IsRead      bool                    `json:"is_read"`
	CreatedAt   time.Time               `json:"created_at"`
}

// BroadcastRequest is the admin announcement payload
type BroadcastRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"max=5000"`
	Link        string   `json:"link" binding:"omitempty,url"`
	TargetMode  string   `json:"target_mode" binding:"required,oneof=all specific category"`
	UserIDs     []string `json:"user_ids"`
	Category    string   `json:"category"`
}

// ChangedResponse reports whether an idempotent operation had an effect
type ChangedResponse struct {
	Changed bool `json:"changed"`
}

// CountResponse reports how many records an operation touched
type CountResponse struct {
	Count int64 `json:"count"`
}

func ToNotificationResponse(n *models.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:          n.ID,
		Type:        n.Type,
		Actor:       n.Actor,
		Title:       n.Title,
		Description: n.Description,
		Link:        n.Link,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
	if n.Post.ID != "" {
		ref := n.Post
		resp.Post = &ref
	}
	return resp
}

func ToNotificationResponses(list []*models.Notification) []*NotificationResponse {
	out := make([]*NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, ToNotificationResponse(n))
	}
	return out
}
