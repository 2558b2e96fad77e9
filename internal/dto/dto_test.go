package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfeed/backend/internal/models"
)

func TestUserDetailNeverCarriesPassword(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	user := &models.User{ID: "u1", Email: "a@example.com", FirstName: "Ada", Password: &hash, Role: models.RoleAdmin}

	body, err := json.Marshal(ToUserDetailResponse(user))
	require.NoError(t, err)
	assert.NotContains(t, string(body), hash)
	assert.NotContains(t, string(body), "password")
	assert.Contains(t, string(body), `"role":"admin"`)
}

func TestToPostResponseNormalizesNilSlices(t *testing.T) {
	resp := ToPostResponse(&models.Post{ID: "p1"})
	assert.NotNil(t, resp.LikedBy)
	assert.NotNil(t, resp.Comments)
	assert.Nil(t, ToPostResponse(nil))
}

func TestAnnouncementNotificationOmitsPost(t *testing.T) {
	resp := ToNotificationResponse(&models.Notification{ID: "n1", Type: models.NotificationAnnouncement, Title: "Hi"})
	assert.Nil(t, resp.Post)

	resp = ToNotificationResponse(&models.Notification{ID: "n2", Type: models.NotificationLike, Post: models.PostRef{ID: "p1", Slug: "s", Title: "t"}})
	require.NotNil(t, resp.Post)
	assert.Equal(t, "p1", resp.Post.ID)
}
