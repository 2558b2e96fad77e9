package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/util"
)

const (
	MinPasswordLength = 6
	DefaultSessionTTL = 7 * 24 * time.Hour
)

var (
	ErrEmailTaken         = apierrors.Conflict("an account with this email already exists")
	ErrInvalidCredentials = apierrors.Unauthorized("invalid email or password")
	ErrBlocked            = apierrors.Forbidden("this account has been blocked")
	ErrInvalidToken       = apierrors.Unauthorized("invalid or expired session")
	ErrWeakPassword       = apierrors.ValidationError("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	ErrInvalidEmail       = apierrors.ValidationError("email", "a valid email is required")
	ErrGoogleDisabled     = apierrors.BadRequest("google sign-in is not available in this mode")
)

// Options configures the auth service
type Options struct {
	JWTSecret  []byte
	SessionTTL time.Duration
	// AdminEmail receives the admin role when its account is created
	AdminEmail string
	Google     GoogleProvider
}

// Service handles all authentication operations
type Service struct {
	users      repository.UserRepository
	newID      func() string
	jwtSecret  []byte
	sessionTTL time.Duration
	adminEmail string
	google     GoogleProvider
}

// NewService creates a new authentication service
func NewService(store repository.Store, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.Google == nil {
		opts.Google = MockGoogleProvider{}
	}
	return &Service{
		users:      store.Users(),
		newID:      store.NewID,
		jwtSecret:  opts.JWTSecret,
		sessionTTL: opts.SessionTTL,
		adminEmail: models.NormalizeEmail(opts.AdminEmail),
		google:     opts.Google,
	}
}

// Session is a signed token and the user it was issued to
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// RegisterInput is an email/password sign-up
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an email/password account and signs it in
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := models.NormalizeEmail(in.Email)
	if !util.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	firstName := strings.TrimSpace(in.FirstName)
	if firstName == "" {
		return nil, apierrors.ValidationError("first_name", "first name is required")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        s.newID(),
		Email:     email,
		FirstName: firstName,
		LastName:  strings.TrimSpace(in.LastName),
		Password:  &hash,
		Role:      s.roleFor(email),
		Provider:  models.ProviderEmail,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Log.Info("User registered", logger.WithUserID(user.ID), zap.String("role", string(user.Role)))
	return s.IssueSession(user)
}

// Login checks an email/password pair
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Password == nil || !CheckPassword(*user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if user.IsBlocked {
		return nil, ErrBlocked
	}
	return s.IssueSession(user)
}

// GoogleSignIn signs in the account for profile.Email, creating it on
// first use
func (s *Service) GoogleSignIn(ctx context.Context, profile GoogleProfile) (*Session, error) {
	email := models.NormalizeEmail(profile.Email)
	if !util.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsBlocked {
			return nil, ErrBlocked
		}
		if user.ProfileImage == "" && profile.Picture != "" {
			if updated, err := s.users.UpdateUser(ctx, user.ID, repository.UserPatch{ProfileImage: &profile.Picture}); err == nil {
				user = updated
			}
		}
		return s.IssueSession(user)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	first, last := splitName(profile.Name)
	if first == "" {
		first = strings.SplitN(email, "@", 2)[0]
	}
	user = &models.User{
		ID:           s.newID(),
		Email:        email,
		FirstName:    first,
		LastName:     last,
		ProfileImage: profile.Picture,
		Role:         s.roleFor(email),
		Provider:     models.ProviderGoogle,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// lost a race with a concurrent first sign-in
			if existing, lookupErr := s.users.GetUserByEmail(ctx, email); lookupErr == nil {
				return s.IssueSession(existing)
			}
		}
		return nil, fmt.Errorf("create google user: %w", err)
	}
	logger.Log.Info("User signed up with Google", logger.WithUserID(user.ID))
	return s.IssueSession(user)
}

// GoogleMode reports which Google provider is active
func (s *Service) GoogleMode() string {
	return s.google.Mode()
}

// GoogleAuthURL returns the consent page location for the live provider
func (s *Service) GoogleAuthURL(state string) (string, error) {
	url := s.google.AuthCodeURL(state)
	if url == "" {
		return "", ErrGoogleDisabled
	}
	return url, nil
}

// CompleteGoogleSignIn exchanges an authorization code and signs the user in
func (s *Service) CompleteGoogleSignIn(ctx context.Context, code string) (*Session, error) {
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.GoogleSignIn(ctx, *profile)
}

// IssueSession signs a token for user
func (s *Service) IssueSession(user *models.User) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.sessionTTL)
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

// ValidateToken verifies a session token and reloads its user. Blocked
// users are rejected even with a valid token.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	// Fetch fresh user data
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user.IsBlocked {
		return nil, ErrBlocked
	}
	return user, nil
}

func (s *Service) roleFor(email string) models.Role {
	if s.adminEmail != "" && email == s.adminEmail {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// HashPassword bcrypt-hashes a password after checking its length
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
