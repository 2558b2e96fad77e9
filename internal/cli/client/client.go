// Package client is the CardFeed HTTP API client used by the cardfeed CLI.
package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/cardfeed/backend/internal/cli/logger"
	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/users"
)

const userAgent = "CardFeed-CLI/0.1.0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx response decoded from the server's error body
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%d] %s: %s (field: %s)", e.StatusCode, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// Page is one page of a listing endpoint
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Client talks to one CardFeed server
type Client struct {
	http *resty.Client
}

// New creates a client for baseURL
func New(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "elapsed", resp.Time())
		return nil
	})

	return &Client{http: httpClient}
}

// SetToken authenticates subsequent requests with a bearer token
func (c *Client) SetToken(token string) *Client {
	c.http.SetAuthToken(token)
	return c
}

func (c *Client) request(ctx context.Context, result interface{}) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&APIError{})
	if result != nil {
		req.SetResult(result)
	}
	return req
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr.Code == "" {
		apiErr = &APIError{Code: "unknown_error", Message: resp.Status()}
	}
	apiErr.StatusCode = resp.StatusCode()
	return apiErr
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	resp, err := c.request(ctx, &out).
		SetBody(dto.LoginRequest{Email: email, Password: password}).
		Post("/api/v1/auth/login")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the signed-in account
func (c *Client) Me(ctx context.Context) (*dto.UserDetailResponse, error) {
	var out dto.UserDetailResponse
	resp, err := c.request(ctx, &out).Get("/api/v1/auth/me")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the admin dashboard counters
func (c *Client) Stats(ctx context.Context) (*users.Stats, error) {
	var out users.Stats
	resp, err := c.request(ctx, &out).Get("/api/v1/admin/stats")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Broadcast sends an announcement and returns its delivery summary
func (c *Client) Broadcast(ctx context.Context, req dto.BroadcastRequest) (*notifications.BroadcastSummary, error) {
	var out notifications.BroadcastSummary
	resp, err := c.request(ctx, &out).SetBody(req).Post("/api/v1/admin/announcements")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Announcements lists the broadcast log, newest first
func (c *Client) Announcements(ctx context.Context, limit, offset int) (*Page[models.Announcement], error) {
	var out Page[models.Announcement]
	resp, err := c.request(ctx, &out).
		SetQueryParams(pageParams(limit, offset)).
		Get("/api/v1/admin/announcements")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Retract deletes every notification delivered by a broadcast
func (c *Client) Retract(ctx context.Context, broadcastID string) (int64, error) {
	var out dto.CountResponse
	resp, err := c.request(ctx, &out).
		SetPathParam("id", broadcastID).
		Delete("/api/v1/admin/announcements/{id}/notifications")
	if err := check(resp, err); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Notifications lists the signed-in user's inbox
func (c *Client) Notifications(ctx context.Context, limit, offset int) (*Page[dto.NotificationResponse], error) {
	var out Page[dto.NotificationResponse]
	resp, err := c.request(ctx, &out).
		SetQueryParams(pageParams(limit, offset)).
		Get("/api/v1/notifications")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnreadCount returns the number of unread notifications
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out dto.CountResponse
	resp, err := c.request(ctx, &out).Get("/api/v1/notifications/unread-count")
	if err := check(resp, err); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkAllRead marks the whole inbox read
func (c *Client) MarkAllRead(ctx context.Context) (int64, error) {
	var out dto.CountResponse
	resp, err := c.request(ctx, &out).Post("/api/v1/notifications/read-all")
	if err := check(resp, err); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Users searches accounts in the admin console
func (c *Client) Users(ctx context.Context, search string, limit, offset int) (*Page[dto.UserDetailResponse], error) {
	var out Page[dto.UserDetailResponse]
	params := pageParams(limit, offset)
	if search != "" {
		params["q"] = search
	}
	resp, err := c.request(ctx, &out).SetQueryParams(params).Get("/api/v1/admin/users")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetBlocked blocks or unblocks a user
func (c *Client) SetBlocked(ctx context.Context, userID string, blocked bool) (*dto.UserDetailResponse, error) {
	var out dto.UserDetailResponse
	resp, err := c.request(ctx, &out).
		SetPathParam("id", userID).
		SetBody(dto.SetBlockedRequest{Blocked: &blocked}).
		Put("/api/v1/admin/users/{id}/block")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetRole changes a user's role
func (c *Client) SetRole(ctx context.Context, userID string, role models.Role) (*dto.UserDetailResponse, error) {
	var out dto.UserDetailResponse
	resp, err := c.request(ctx, &out).
		SetPathParam("id", userID).
		SetBody(dto.SetRoleRequest{Role: string(role)}).
		Put("/api/v1/admin/users/{id}/role")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageParams(limit, offset int) map[string]string {
	params := map[string]string{}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if offset > 0 {
		params["offset"] = strconv.Itoa(offset)
	}
	return params
}
