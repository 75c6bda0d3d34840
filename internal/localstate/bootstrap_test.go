package localstate

import (
	"testing"

	"github.com/aurora-chat/aurora/internal/auth"
	"github.com/aurora-chat/aurora/internal/store/sqlite"
)

func TestEnsureDevUser_Idempotent(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := sqlite.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	if err := EnsureDevUser(db, 20); err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	if err := EnsureDevUser(db, 20); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}

	var cnt int
	if err := db.QueryRow(`SELECT COUNT(1) FROM users WHERE user_id = ?`, auth.LocalDevUserID).Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 dev user, got %d", cnt)
	}
}
