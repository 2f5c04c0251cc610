package etl

import (
	"path/filepath"
	"testing"

	"trading-etl-go/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB opens a fresh file-backed store that is closed when the test ends.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
