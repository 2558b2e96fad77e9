package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/middleware"
	"github.com/cardfeed/backend/internal/util"
)

const oauthStateCookie = "cardfeed_oauth_state"

// Register creates an email/password account
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if util.HandleStoreError(c, err, "user") {
		return
	}
	h.respondSession(c, http.StatusCreated, session)
}

// Login signs in with email and password
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if util.HandleStoreError(c, err, "user") {
		return
	}
	h.respondSession(c, http.StatusOK, session)
}

// Logout clears the session cookie. Tokens are stateless, so bearer clients
// simply discard theirs.
// POST /api/v1/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies, true)
	c.Status(http.StatusNoContent)
}

// GoogleSignIn trusts the posted Google profile; only available in mock mode
// POST /api/v1/auth/google
func (h *Handlers) GoogleSignIn(c *gin.Context) {
	if h.auth.GoogleMode() != "mock" {
		util.RespondWithAPIError(c, auth.ErrGoogleDisabled)
		return
	}

	var req dto.GoogleSignInRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.auth.GoogleSignIn(c.Request.Context(), auth.GoogleProfile{
		Email:   req.Email,
		Name:    req.Name,
		Picture: req.Picture,
	})
	if util.HandleStoreError(c, err, "user") {
		return
	}
	h.respondSession(c, http.StatusOK, session)
}

// GoogleRedirect starts the live OAuth flow
// GET /api/v1/auth/google
func (h *Handlers) GoogleRedirect(c *gin.Context) {
	state := uuid.New().String()
	url, err := h.auth.GoogleAuthURL(state)
	if util.HandleStoreError(c, err, "google sign-in") {
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int((10 * time.Minute).Seconds()), "/", "", h.secureCookies, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback completes the live OAuth flow
// GET /api/v1/auth/google/callback
func (h *Handlers) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		util.RespondBadRequest(c, "invalid oauth state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookies, true)

	code := c.Query("code")
	if code == "" {
		util.RespondBadRequest(c, "missing authorization code")
		return
	}

	session, err := h.auth.CompleteGoogleSignIn(c.Request.Context(), code)
	if err != nil {
		logger.WarnWithFields("Google sign-in failed", err)
		util.HandleStoreError(c, err, "user")
		return
	}
	h.respondSession(c, http.StatusOK, session)
}

// Me returns the signed-in account
// GET /api/v1/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDetailResponse(user))
}

func (h *Handlers) respondSession(c *gin.Context, status int, session *auth.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", h.secureCookies, true)
	c.JSON(status, dto.AuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.ToUserDetailResponse(session.User),
	})
}
