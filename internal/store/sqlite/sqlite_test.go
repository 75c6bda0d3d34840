package sqlite

import (
	"testing"

	"github.com/aurora-chat/aurora/internal/store"
	"github.com/aurora-chat/aurora/internal/store/storetest"
)

func makeLiteStore(t *testing.T) store.Store {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return NewWithDB(db)
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeLiteStore)
}

func TestSQLiteStore_QuotaConcurrency(t *testing.T) {
	storetest.RunQuotaConcurrency(t, makeLiteStore)
}
