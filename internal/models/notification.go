package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType distinguishes interaction notifications from announcements
type NotificationType string

const (
	NotificationLike         NotificationType = "like"
	NotificationComment      NotificationType = "comment"
	NotificationAnnouncement NotificationType = "announcement"
)

// PostRef is the post snapshot carried by like and comment notifications
type PostRef struct {
	ID    string `gorm:"size:64" json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Notification is one inbox entry for one recipient
type Notification struct {
	ID          string           `gorm:"primaryKey;size:64" json:"id"`
	RecipientID string           `gorm:"size:64;not null;index:idx_notifications_recipient_created,priority:1" json:"recipient_id"`
	Type        NotificationType `gorm:"size:32;not null" json:"type"`
	Post        PostRef          `gorm:"embedded;embeddedPrefix:post_" json:"post"`
	Actor       AuthorSummary    `gorm:"embedded;embeddedPrefix:actor_" json:"actor"`

	// Announcement fields
	Title       string `json:"title,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	BroadcastID string `gorm:"size:64;index" json:"broadcast_id,omitempty"`

	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index:idx_notifications_recipient_created,priority:2" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
