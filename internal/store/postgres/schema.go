package postgres

import "database/sql"

// EnsureSchema creates the relational schema if it does not exist yet.
// Statements are idempotent so repeated startup is safe.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id             TEXT PRIMARY KEY,
            email               TEXT NOT NULL UNIQUE,
            display_name        TEXT,
            credential_hash     TEXT NOT NULL UNIQUE,
            daily_message_count INTEGER NOT NULL DEFAULT 0,
            daily_message_limit INTEGER NOT NULL DEFAULT 20,
            last_message_reset  TIMESTAMPTZ NOT NULL DEFAULT now(),
            creation_time       TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS chats (
            chat_id       TEXT PRIMARY KEY,
            user_id       TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
            title         TEXT,
            last_activity TIMESTAMPTZ NOT NULL DEFAULT now(),
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS messages (
            message_id    TEXT PRIMARY KEY,
            chat_id       TEXT NOT NULL REFERENCES chats(chat_id) ON DELETE CASCADE,
            user_id       TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
            role          TEXT NOT NULL,
            content       TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, creation_time DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, creation_time DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
