package mongostore

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/storetest"
)

var dbCounter atomic.Int64

// TestMongoStore runs the store contract against MONGODB_TEST_URI
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("Skipping mongo store tests: MONGODB_TEST_URI not set")
	}
	suite.Run(t, &storetest.StoreSuite{
		Open: func() (repository.Store, error) {
			return Open(context.Background(), uri, fmt.Sprintf("cardfeed_test_%d_%d", os.Getpid(), dbCounter.Add(1)))
		},
	})
}

func TestToOIDRejectsMalformedIDs(t *testing.T) {
	_, err := toOID("not-an-object-id")
	assert.ErrorIs(t, err, repository.ErrInvalidID)

	oid, err := orNewOID("")
	assert.NoError(t, err)
	assert.False(t, oid.IsZero())
}
