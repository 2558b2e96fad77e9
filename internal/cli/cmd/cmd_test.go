package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/cli/config"
	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/kernel"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/server"
	"github.com/cardfeed/backend/internal/testutil"
)

func resetBroadcastFlags() {
	broadcastAll, broadcastUsers, broadcastCategory = false, nil, ""
}

func TestBroadcastRequestNeedsExactlyOneAudience(t *testing.T) {
	t.Cleanup(resetBroadcastFlags)

	resetBroadcastFlags()
	_, err := broadcastRequest("Hi")
	assert.Error(t, err)

	broadcastAll, broadcastCategory = true, "tech"
	_, err = broadcastRequest("Hi")
	assert.Error(t, err)

	resetBroadcastFlags()
	broadcastUsers = []string{"a", "b"}
	req, err := broadcastRequest("Hi")
	require.NoError(t, err)
	assert.Equal(t, string(models.TargetSpecific), req.TargetMode)
	assert.Equal(t, []string{"a", "b"}, req.UserIDs)

	resetBroadcastFlags()
	broadcastCategory = "tech"
	req, err = broadcastRequest("Hi")
	require.NoError(t, err)
	assert.Equal(t, string(models.TargetCategory), req.TargetMode)
	assert.Equal(t, "tech", req.Category)
}

func TestSummaryText(t *testing.T) {
	post := &models.PostRef{ID: "p1", Title: "Go tips"}
	actor := models.AuthorSummary{ID: "u1", Name: "Ava"}

	assert.Equal(t, "Ava liked Go tips", summary(dto.NotificationResponse{Type: models.NotificationLike, Actor: actor, Post: post}))
	assert.Equal(t, "Ava commented on Go tips", summary(dto.NotificationResponse{Type: models.NotificationComment, Actor: actor, Post: post}))
	assert.Equal(t, "Downtime", summary(dto.NotificationResponse{Type: models.NotificationAnnouncement, Title: "Downtime"}))
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	return runWithInput(t, "", args...)
}

// runWithInput executes the root command with input on stdin. cobra keeps
// flag values between executions, so flags are reset first.
func runWithInput(t *testing.T, input string, args ...string) string {
	t.Helper()
	outputFmt, loginPassword, retractYes = "", "", false
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestLoginThenBroadcast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Cleanup(resetBroadcastFlags)

	k := kernel.NewMock(testutil.NewStore(t))
	srv := httptest.NewServer(server.NewRouter(server.RouterOptions{Handlers: k.Handlers(), Auth: k.Auth()}))
	t.Cleanup(srv.Close)

	_, err := k.Auth().Register(context.Background(), auth.RegisterInput{
		Email: kernel.MockAdminEmail, Password: "secret123", FirstName: "Root",
	})
	require.NoError(t, err)
	_, err = k.Auth().Register(context.Background(), auth.RegisterInput{
		Email: "ava@example.com", Password: "secret123", FirstName: "Ava",
	})
	require.NoError(t, err)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	common := []string{"--config", cfgPath, "--api", srv.URL}

	run(t, append(common, "login", "--email", kernel.MockAdminEmail, "--password", "secret123")...)
	assert.NotEmpty(t, config.GetString(config.KeyToken))

	raw := run(t, append(common, "-o", "json", "admin", "broadcast", "Welcome", "--all")...)
	var summary struct {
		BroadcastID   string `json:"broadcast_id"`
		TotalTargeted int    `json:"total_targeted"`
		Status        string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &summary), raw)
	assert.Equal(t, 1, summary.TotalTargeted)
	assert.Equal(t, string(models.BroadcastCompleted), summary.Status)

	run(t, append(common, "login", "--email", "ava@example.com", "--password", "secret123")...)
	raw = run(t, append(common, "-o", "json", "notifications", "count")...)
	var count dto.CountResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &count), raw)
	assert.Equal(t, int64(1), count.Count)
}

// newTestServer starts an API with one registered admin and returns the
// global flags pointing the CLI at it
func newTestServer(t *testing.T) (*kernel.MockKernel, []string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	k := kernel.NewMock(testutil.NewStore(t))
	srv := httptest.NewServer(server.NewRouter(server.RouterOptions{Handlers: k.Handlers(), Auth: k.Auth()}))
	t.Cleanup(srv.Close)

	_, err := k.Auth().Register(context.Background(), auth.RegisterInput{
		Email: kernel.MockAdminEmail, Password: "secret123", FirstName: "Root",
	})
	require.NoError(t, err)
	return k, []string{"--config", filepath.Join(t.TempDir(), "config.toml"), "--api", srv.URL}
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	t.Setenv("CARDFEED_PASSWORD", "")
	_, common := newTestServer(t)

	out := runWithInput(t, "secret123\n", append(common, "login", "--email", kernel.MockAdminEmail)...)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Logged in as")
	assert.NotContains(t, out, "secret123")
	assert.NotEmpty(t, config.GetString(config.KeyToken))
}

func TestRetractAsksForConfirmation(t *testing.T) {
	k, common := newTestServer(t)
	_, err := k.Auth().Register(context.Background(), auth.RegisterInput{
		Email: "ava@example.com", Password: "secret123", FirstName: "Ava",
	})
	require.NoError(t, err)

	run(t, append(common, "login", "--email", kernel.MockAdminEmail, "--password", "secret123")...)
	raw := run(t, append(common, "-o", "json", "admin", "broadcast", "Oops", "--all")...)
	t.Cleanup(resetBroadcastFlags)
	var summary struct {
		BroadcastID string `json:"broadcast_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &summary), raw)

	out := runWithInput(t, "n\n", append(common, "admin", "announcements", "retract", summary.BroadcastID)...)
	assert.Contains(t, out, "Cancelled.")
	total, err := k.Store().Notifications().CountNotifications(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	out = run(t, append(common, "admin", "announcements", "retract", summary.BroadcastID, "--yes")...)
	assert.Contains(t, out, "Removed 1 notifications")
	total, err = k.Store().Notifications().CountNotifications(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}
