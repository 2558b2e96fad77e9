package auth

import (
	"context"

	"github.com/cardfeed/backend/internal/models"
)

// AuthServiceInterface defines the contract for authentication operations.
// This enables mocking for handler tests without requiring a real store.
type AuthServiceInterface interface {
	// Registration and Login
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GoogleSignIn(ctx context.Context, profile GoogleProfile) (*Session, error)

	// Live Google flow
	GoogleMode() string
	GoogleAuthURL(state string) (string, error)
	CompleteGoogleSignIn(ctx context.Context, code string) (*Session, error)

	// Token operations
	IssueSession(user *models.User) (*Session, error)
	ValidateToken(ctx context.Context, tokenString string) (*models.User, error)
}

// Ensure Service implements AuthServiceInterface
var _ AuthServiceInterface = (*Service)(nil)

// TokenValidator is the slice of the service the auth middleware needs
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*models.User, error)
}
