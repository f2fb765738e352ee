// Package sqlstoretest opens throwaway in-memory stores for tests.
package sqlstoretest

import (
	"context"
	"testing"

	"github.com/mamadbah2/herdbook/internal/repository/sqlstore"
)

// New returns a migrated in-memory SQLite store closed at test cleanup.
func New(t testing.TB) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(sqlstore.Options{Driver: sqlstore.DriverSQLite, DSN: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}
