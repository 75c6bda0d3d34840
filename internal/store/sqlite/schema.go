package sqlite

import "database/sql"

// EnsureSchema creates the core tables if they do not exist. Sufficient for
// local dev and tests; production targets run Postgres with migrations.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            display_name TEXT,
            credential_hash TEXT NOT NULL UNIQUE,
            daily_message_count INTEGER NOT NULL DEFAULT 0,
            daily_message_limit INTEGER NOT NULL DEFAULT 20,
            last_message_reset TIMESTAMP NOT NULL,
            creation_time TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS chats (
            chat_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            title TEXT,
            last_activity TIMESTAMP NOT NULL,
            creation_time TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            message_id TEXT PRIMARY KEY,
            chat_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            creation_time TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, creation_time);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, creation_time);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
