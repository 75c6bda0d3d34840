package localstate

import (
	"database/sql"
	"time"

	"github.com/aurora-chat/aurora/internal/auth"
)

// EnsureDevUser inserts the local development user if it does not exist, so
// the dev-mode token resolves to a real account with a quota row. No-op when
// the user is already present.
func EnsureDevUser(db *sql.DB, dailyLimit int) error {
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(1) FROM users WHERE user_id = ?`, auth.LocalDevUserID).Scan(&cnt); err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO users (user_id, email, display_name, credential_hash, daily_message_count, daily_message_limit, last_message_reset, creation_time) VALUES (?,?,?,?,0,?,?,?)`,
		auth.LocalDevUserID, "dev@aurora.local", "Local Developer", auth.HashToken(auth.LocalDevToken), dailyLimit, now, now)
	return err
}
