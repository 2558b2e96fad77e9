package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/cache"
	"github.com/cardfeed/backend/internal/testutil"
)

func TestCleanupRunsInReverseOrder(t *testing.T) {
	k := New()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		k.OnCleanup(func(context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	require.NoError(t, k.Cleanup(context.Background()))
	assert.Equal(t, []int{2, 1, 0}, order)

	// cleanup functions run once
	require.NoError(t, k.Cleanup(context.Background()))
	assert.Len(t, order, 3)
}

func TestCleanupContinuesAfterFailure(t *testing.T) {
	k := New()
	boom := errors.New("boom")
	ran := false
	k.OnCleanup(func(context.Context) error { ran = true; return nil })
	k.OnCleanup(func(context.Context) error { return boom })

	err := k.Cleanup(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, ran)
}

func TestWireRequiresStore(t *testing.T) {
	k := New()
	var initErr *InitializationError
	require.ErrorAs(t, k.Wire(auth.Options{}), &initErr)
	assert.Contains(t, initErr.MissingDeps, "store")

	err := k.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store")
}

func TestWireBuildsServices(t *testing.T) {
	k := New().SetStore(testutil.NewStore(t))
	require.NoError(t, k.Wire(auth.Options{JWTSecret: []byte("secret")}))
	require.NoError(t, k.Validate())

	assert.NotNil(t, k.Auth())
	assert.NotNil(t, k.Posts())
	assert.NotNil(t, k.Users())
	assert.NotNil(t, k.Engine())
	assert.NotNil(t, k.Inbox())
	assert.NotNil(t, k.Broadcaster())
	assert.NotNil(t, k.Handlers())
	assert.IsType(t, cache.NoopInvalidator{}, k.Invalidator())
	assert.Nil(t, k.ImageUploader())
}
