package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/sqlstore"
	"github.com/cardfeed/backend/internal/testutil"
)

// AuthServiceTestSuite contains auth service tests
type AuthServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	store       *sqlstore.Store
	authService *Service
}

// SetupTest opens a fresh store before each test
func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = testutil.NewStore(suite.T())
	suite.authService = NewService(suite.store, Options{
		JWTSecret:  []byte("test_jwt_secret_key"),
		SessionTTL: time.Hour,
		AdminEmail: "Boss@Example.com",
	})
}

func (suite *AuthServiceTestSuite) register(email string) *Session {
	session, err := suite.authService.Register(suite.ctx, RegisterInput{
		Email:     email,
		Password:  "secret1",
		FirstName: "Test",
		LastName:  "User",
	})
	suite.Require().NoError(err)
	return session
}

func (suite *AuthServiceTestSuite) TestRegisterAndLogin() {
	session := suite.register("New@Example.com")
	suite.Equal("new@example.com", session.User.Email)
	suite.Equal(models.RoleUser, session.User.Role)
	suite.Equal(models.ProviderEmail, session.User.Provider)
	suite.NotEmpty(session.Token)

	login, err := suite.authService.Login(suite.ctx, "NEW@example.com", "secret1")
	suite.Require().NoError(err)
	suite.Equal(session.User.ID, login.User.ID)

	_, err = suite.authService.Login(suite.ctx, "new@example.com", "wrong-pass")
	suite.ErrorIs(err, ErrInvalidCredentials)
	_, err = suite.authService.Login(suite.ctx, "nobody@example.com", "secret1")
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	suite.register("dup@example.com")

	_, err := suite.authService.Register(suite.ctx, RegisterInput{
		Email: "DUP@example.com", Password: "another1", FirstName: "Again",
	})
	suite.ErrorIs(err, ErrEmailTaken)
	suite.Equal(http.StatusConflict, ErrEmailTaken.Status)
}

func (suite *AuthServiceTestSuite) TestRegisterValidation() {
	_, err := suite.authService.Register(suite.ctx, RegisterInput{Email: "bad", Password: "secret1", FirstName: "X"})
	suite.ErrorIs(err, ErrInvalidEmail)

	_, err = suite.authService.Register(suite.ctx, RegisterInput{Email: "ok@example.com", Password: "123", FirstName: "X"})
	suite.ErrorIs(err, ErrWeakPassword)
}

func (suite *AuthServiceTestSuite) TestAdminEmailGetsAdminRole() {
	session := suite.register("boss@example.com")
	suite.Equal(models.RoleAdmin, session.User.Role)
}

func (suite *AuthServiceTestSuite) TestBlockedUserCannotSignIn() {
	session := suite.register("blocked@example.com")
	blocked := true
	_, err := suite.store.Users().UpdateUser(suite.ctx, session.User.ID, repository.UserPatch{IsBlocked: &blocked})
	suite.Require().NoError(err)

	_, err = suite.authService.Login(suite.ctx, "blocked@example.com", "secret1")
	suite.ErrorIs(err, ErrBlocked)

	_, err = suite.authService.ValidateToken(suite.ctx, session.Token)
	suite.ErrorIs(err, ErrBlocked)
}

func (suite *AuthServiceTestSuite) TestValidateToken() {
	session := suite.register("token@example.com")

	user, err := suite.authService.ValidateToken(suite.ctx, session.Token)
	suite.Require().NoError(err)
	suite.Equal(session.User.ID, user.ID)

	_, err = suite.authService.ValidateToken(suite.ctx, "not-a-token")
	suite.ErrorIs(err, ErrInvalidToken)

	other := NewService(suite.store, Options{JWTSecret: []byte("other-secret")})
	_, err = other.ValidateToken(suite.ctx, session.Token)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestExpiredToken() {
	session := suite.register("expired@example.com")
	claims := jwt.MapClaims{
		"user_id": session.User.ID,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_jwt_secret_key"))
	suite.Require().NoError(err)

	_, err = suite.authService.ValidateToken(suite.ctx, signed)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestGoogleSignInUpserts() {
	first, err := suite.authService.GoogleSignIn(suite.ctx, GoogleProfile{
		Email: "g@example.com", Name: "Grace Brewster Hopper", Picture: "https://img.example.com/g.png",
	})
	suite.Require().NoError(err)
	suite.Equal(models.ProviderGoogle, first.User.Provider)
	suite.Equal("Grace", first.User.FirstName)
	suite.Equal("Brewster Hopper", first.User.LastName)
	suite.Nil(first.User.Password)

	second, err := suite.authService.GoogleSignIn(suite.ctx, GoogleProfile{Email: "G@example.com"})
	suite.Require().NoError(err)
	suite.Equal(first.User.ID, second.User.ID)

	count, err := suite.store.Users().CountUsers(suite.ctx, "", false)
	suite.NoError(err)
	suite.EqualValues(1, count)
}

func (suite *AuthServiceTestSuite) TestGoogleAccountCannotPasswordLogin() {
	_, err := suite.authService.GoogleSignIn(suite.ctx, GoogleProfile{Email: "only-google@example.com"})
	suite.Require().NoError(err)

	_, err = suite.authService.Login(suite.ctx, "only-google@example.com", "anything")
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestMockModeHasNoConsentPage() {
	suite.Equal("mock", suite.authService.GoogleMode())
	_, err := suite.authService.GoogleAuthURL("state")
	suite.ErrorIs(err, ErrGoogleDisabled)
	_, err = suite.authService.CompleteGoogleSignIn(suite.ctx, "code")
	suite.ErrorIs(err, ErrGoogleDisabled)
}

// TestAuthServiceTestSuite runs the auth service test suite
func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func TestLiveGoogleProviderExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(GoogleProfile{Email: "live@example.com", Name: "Live User"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := NewLiveGoogleProvider(&oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: server.URL + "/auth", TokenURL: server.URL + "/token"},
	})
	provider.userInfoURL = server.URL + "/userinfo"

	assert.Contains(t, provider.AuthCodeURL("xyz"), "state=xyz")

	profile, err := provider.Exchange(context.Background(), "code-abc")
	require.NoError(t, err)
	assert.Equal(t, "live@example.com", profile.Email)
	assert.Equal(t, "Live User", profile.Name)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSplitName(t *testing.T) {
	first, last := splitName("  Ada   Lovelace ")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Lovelace", last)
	first, last = splitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}
