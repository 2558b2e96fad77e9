package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user's permission level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Provider records how an account was created
type Provider string

const (
	ProviderEmail        Provider = "email"
	ProviderGoogle       Provider = "google"
	ProviderAdminCreated Provider = "admin_created"
)

// User represents a CardFeed account
type User struct {
	ID        string `gorm:"primaryKey;size:64" json:"id"`
	Email     string `gorm:"uniqueIndex;not null;size:320" json:"email"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`

	// Password is a bcrypt hash; nil for Google accounts
	Password *string `gorm:"type:text" json:"-"`

	ProfileImage string   `json:"profile_image"`
	Bio          string   `gorm:"type:text" json:"bio"`
	Role         Role     `gorm:"size:16;not null;default:user;index" json:"role"`
	IsBlocked    bool     `gorm:"not null;default:false;index" json:"is_blocked"`
	Provider     Provider `gorm:"size:32;not null;default:email" json:"provider"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the name shown on posts, comments and notifications
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Summary snapshots the user for embedding in posts, comments and notifications
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, Name: u.DisplayName(), Image: u.ProfileImage}
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail lowercases and trims an email for storage and lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeCreate hooks for GORM
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}
