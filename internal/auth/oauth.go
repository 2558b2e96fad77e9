package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/cardfeed/backend/internal/logger"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProfile is the identity returned by a Google sign-in
type GoogleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleProvider resolves a Google identity
type GoogleProvider interface {
	Mode() string
	// AuthCodeURL returns "" when the provider has no consent page
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleProfile, error)
}

// MockGoogleProvider trusts the profile posted by the client. It has no
// consent page and cannot exchange codes.
type MockGoogleProvider struct{}

func (MockGoogleProvider) Mode() string { return "mock" }
func (MockGoogleProvider) AuthCodeURL(state string) string { return "" }

func (MockGoogleProvider) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	return nil, ErrGoogleDisabled
}

// LiveGoogleProvider runs the OAuth2 authorization code flow against Google
type LiveGoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewLiveGoogleProvider(config *oauth2.Config) *LiveGoogleProvider {
	return &LiveGoogleProvider{config: config, userInfoURL: googleUserInfoURL}
}

func (p *LiveGoogleProvider) Mode() string { return "live" }

func (p *LiveGoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's Google profile
func (p *LiveGoogleProvider) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		logger.WarnWithFields("Google token exchange failed", err)
		return nil, ErrInvalidCredentials.WithDetails("google code exchange failed")
	}

	client := p.config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var profile GoogleProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &profile, nil
}
