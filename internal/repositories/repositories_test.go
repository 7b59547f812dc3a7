package repositories

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"microblog/internal/database"
)

// newTestDB gives every test its own in-memory database. The shared
// cache keeps one store across gorm's pooled connections, and _fk=1
// turns on the foreign keys the cascade tests depend on.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := database.Open(dsn)
	require.NoError(t, err)
	return db
}
