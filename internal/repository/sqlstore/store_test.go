package sqlstore

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cardfeed/backend/internal/database"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/storetest"
)

var dbCounter atomic.Int64

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &storetest.StoreSuite{
		Open: func() (repository.Store, error) {
			return OpenMemory(fmt.Sprintf("sqlstore_%d", dbCounter.Add(1)))
		},
	})
}

// TestPostgresStore runs against POSTGRES_TEST_DSN when it is set
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping postgres store tests: POSTGRES_TEST_DSN not set")
	}
	suite.Run(t, &storetest.StoreSuite{
		Open: func() (repository.Store, error) {
			return Open(database.Options{Driver: database.DriverPostgres, DSN: dsn})
		},
	})
}
