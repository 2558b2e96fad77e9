package dto

import (
	"time"

	"github.com/cardfeed/backend/internal/models"
)

// UserResponse is the public user representation (safe for API responses)
type UserResponse struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DisplayName  string    `json:"display_name"`
	ProfileImage string    `json:"profile_image"`
	Bio          string    `json:"bio"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserDetailResponse adds account fields shown to the owner and to admins
type UserDetailResponse struct {
	UserResponse
	Email     string    `json:"email"`
	IsBlocked bool      `json:"is_blocked"`
	Provider  string    `json:"provider"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterRequest for email/password registration
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required,min=1,max=60"`
	LastName  string `json:"last_name" binding:"max=60"`
}

// LoginRequest for email/password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleSignInRequest is the mock-mode Google sign-in payload
type GoogleSignInRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name" binding:"max=120"`
	Picture string `json:"picture" binding:"omitempty,url"`
}

// UpdateProfileRequest for profile updates
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name,omitempty" binding:"omitempty,min=1,max=60"`
	LastName     *string `json:"last_name,omitempty" binding:"omitempty,max=60"`
	Bio          *string `json:"bio,omitempty" binding:"omitempty,max=500"`
	ProfileImage *string `json:"profile_image,omitempty" binding:"omitempty,url"`
}

// AdminCreateUserRequest lets an admin provision an account
type AdminCreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required,min=1,max=60"`
	LastName  string `json:"last_name" binding:"max=60"`
	Role      string `json:"role" binding:"omitempty,oneof=user admin"`
}

// SetBlockedRequest toggles a user's blocked flag
type SetBlockedRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

// SetRoleRequest changes a user's role
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// AuthResponse is returned by every sign-in flow
type AuthResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      *UserDetailResponse `json:"user"`
}

// ToUserResponse converts models.User to UserResponse (excludes sensitive fields)
func ToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		DisplayName:  user.DisplayName(),
		ProfileImage: user.ProfileImage,
		Bio:          user.Bio,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
	}
}

// ToUserDetailResponse includes email and account state; never the password
func ToUserDetailResponse(user *models.User) *UserDetailResponse {
	if user == nil {
		return nil
	}
	return &UserDetailResponse{
		UserResponse: *ToUserResponse(user),
		Email:        user.Email,
		IsBlocked:    user.IsBlocked,
		Provider:     string(user.Provider),
		UpdatedAt:    user.UpdatedAt,
	}
}

// ToUserDetailResponses converts a slice for admin listings
func ToUserDetailResponses(users []*models.User) []*UserDetailResponse {
	out := make([]*UserDetailResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDetailResponse(u))
	}
	return out
}
