package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthorSummary is a denormalized snapshot of a user. It is copied into
// posts, comments and notifications at write time.
type AuthorSummary struct {
	ID    string `gorm:"size:64;index" json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Post is an authored article with its interaction counters
type Post struct {
	ID       string        `gorm:"primaryKey;size:64" json:"id"`
	Slug     string        `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Title    string        `gorm:"size:200;not null" json:"title"`
	Content  string        `gorm:"type:text;not null" json:"content"`
	Excerpt  string        `gorm:"type:text" json:"excerpt"`
	Category string        `gorm:"size:64;not null;index" json:"category"`
	Author   AuthorSummary `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	Image    string        `json:"image"`

	// Likes always equals len(LikedBy)
	Likes   int      `gorm:"not null;default:0" json:"likes"`
	LikedBy []string `gorm:"-" json:"liked_by"`
	Shares  int      `gorm:"not null;default:0" json:"shares"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLikedBy reports whether userID is in the post's like set
func (p *Post) IsLikedBy(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// PostLike is the relational form of one member of a post's like set
type PostLike struct {
	PostID    string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"primaryKey;size:64;index"`
	CreatedAt time.Time `gorm:"index"`
}

// Comment is an append-only remark on a post
type Comment struct {
	ID        string        `gorm:"primaryKey;size:64" json:"id"`
	PostID    string        `gorm:"size:64;not null;index" json:"post_id"`
	Author    AuthorSummary `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	Text      string        `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
