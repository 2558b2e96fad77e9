// Package testutil provides fixtures shared by service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/sqlstore"
)

var storeSeq atomic.Int64

// NewStore opens an isolated in-memory sqlite store closed at test cleanup
func NewStore(t testing.TB) *sqlstore.Store {
	t.Helper()
	name := fmt.Sprintf("testutil_%d", storeSeq.Add(1))
	store, err := sqlstore.OpenMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

// CreateUser inserts a user with the given first name and a derived email
func CreateUser(t testing.TB, store repository.Store, firstName string) *models.User {
	t.Helper()
	user := &models.User{
		ID:        store.NewID(),
		Email:     fmt.Sprintf("%s-%d@example.com", firstName, storeSeq.Add(1)),
		FirstName: firstName,
		LastName:  "Tester",
		Role:      models.RoleUser,
		Provider:  models.ProviderEmail,
	}
	require.NoError(t, store.Users().CreateUser(context.Background(), user))
	return user
}

// CreatePost inserts a post by author in category
func CreatePost(t testing.TB, store repository.Store, author *models.User, category string) *models.Post {
	t.Helper()
	id := store.NewID()
	post := &models.Post{
		ID:       id,
		Slug:     "post-" + id,
		Title:    "Post by " + author.FirstName,
		Content:  "<p>Hello from " + author.FirstName + "</p>",
		Excerpt:  "Hello from " + author.FirstName,
		Category: category,
		Author:   author.Summary(),
	}
	require.NoError(t, store.Posts().CreatePost(context.Background(), post))
	return post
}
