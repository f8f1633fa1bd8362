package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewTestStore returns a SqlStore backed by an in-memory database, closed
// automatically when the test finishes.
func NewTestStore(t *testing.T) *SqlStore {
	t.Helper()

	store, err := NewSqlStore(InmemPath, zap.NewNop())
	require.NoError(t, err, "unable to open testing database")
	t.Cleanup(func() {
		store.Close()
	})

	return store
}
