package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

// NewWithDB constructs a SQLite store backed by database/sql. Callers should
// have run EnsureSchema first.
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Users() store.Users       { return &users{db: s.db} }
func (s *liteStore) Chats() store.Chats       { return &chats{db: s.db} }
func (s *liteStore) Messages() store.Messages { return &messages{db: s.db} }

// HealthPing implements health.HealthPinger for the SQLite-backed store.
func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	limit := m.DailyMessageLimit
	if limit <= 0 {
		limit = 20
	}
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name, credential_hash, daily_message_count, daily_message_limit, last_message_reset, creation_time)
        VALUES (?,?,?,?,0,?,?,?)
    `, m.UserID, m.Email, m.DisplayName, m.CredentialHash, limit, now, now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.DailyMessageCount = 0
	out.DailyMessageLimit = limit
	out.LastMessageReset = now
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	return u.scanOne(ctx, `WHERE user_id=?`, userID)
}

func (u *users) GetByCredentialHash(ctx context.Context, hash string) (*model.User, error) {
	return u.scanOne(ctx, `WHERE credential_hash=?`, hash)
}

func (u *users) scanOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, credential_hash, daily_message_count, daily_message_limit, last_message_reset, creation_time
        FROM users `+where, arg)
	err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.CredentialHash,
		&out.DailyMessageCount, &out.DailyMessageLimit, &out.LastMessageReset, &out.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *users) CheckAndResetQuota(ctx context.Context, userID string, window time.Duration) (*model.QuotaWindow, error) {
	now := time.Now().UTC()
	// Conditional reset: the WHERE guard means only one of two racing calls
	// can match the stale last_message_reset, so a reset is never applied
	// twice nor overwritten by a stale read.
	_, err := u.db.ExecContext(ctx, `
        UPDATE users SET daily_message_count = 0, last_message_reset = ?
        WHERE user_id = ? AND last_message_reset <= ?
    `, now, userID, now.Add(-window))
	if err != nil {
		return nil, err
	}

	var count, limit int
	var reset time.Time
	row := u.db.QueryRowContext(ctx, `
        SELECT daily_message_count, daily_message_limit, last_message_reset
        FROM users WHERE user_id = ?
    `, userID)
	if err := row.Scan(&count, &limit, &reset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &model.QuotaWindow{
		Allowed: count < limit,
		Count:   count,
		Limit:   limit,
		ResetAt: reset.Add(window),
	}, nil
}

func (u *users) IncrementQuota(ctx context.Context, userID string) (int, error) {
	res, err := u.db.ExecContext(ctx, `
        UPDATE users SET daily_message_count = daily_message_count + 1 WHERE user_id = ?
    `, userID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, model.ErrNotFound
	}
	var count int
	if err := u.db.QueryRowContext(ctx, `SELECT daily_message_count FROM users WHERE user_id=?`, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (u *users) DecrementQuota(ctx context.Context, userID string) error {
	_, err := u.db.ExecContext(ctx, `
        UPDATE users SET daily_message_count = MAX(daily_message_count - 1, 0) WHERE user_id = ?
    `, userID)
	return err
}

// --- Chats ---
type chats struct{ db *sql.DB }

func (c *chats) Create(ctx context.Context, mc *model.Chat) (*model.Chat, error) {
	id := mc.ChatID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO chats (chat_id, user_id, title, last_activity, creation_time)
        VALUES (?,?,?,?,?)
    `, id, mc.UserID, mc.Title, now, now)
	if err != nil {
		return nil, err
	}
	return &model.Chat{ChatID: id, UserID: mc.UserID, Title: mc.Title, LastActivity: now, CreationTime: now}, nil
}

func (c *chats) GetByID(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	var out model.Chat
	out.UserID = userID
	out.ChatID = chatID
	row := c.db.QueryRowContext(ctx, `
        SELECT title, last_activity, creation_time FROM chats WHERE user_id=? AND chat_id=?
    `, userID, chatID)
	err := row.Scan(&out.Title, &out.LastActivity, &out.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *chats) List(ctx context.Context, userID string) ([]*model.Chat, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT chat_id, title, last_activity, creation_time
        FROM chats WHERE user_id=? ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Chat
	for rows.Next() {
		var ch model.Chat
		ch.UserID = userID
		if err := rows.Scan(&ch.ChatID, &ch.Title, &ch.LastActivity, &ch.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &ch)
	}
	return res, rows.Err()
}

func (c *chats) UpdateTitle(ctx context.Context, userID, chatID, title string) (*model.Chat, error) {
	now := time.Now().UTC()
	res, err := c.db.ExecContext(ctx, `
        UPDATE chats SET title=?, last_activity=? WHERE user_id=? AND chat_id=?
    `, title, now, userID, chatID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return c.GetByID(ctx, userID, chatID)
}

func (c *chats) FirstEmpty(ctx context.Context, userID string) (*model.Chat, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT c.chat_id, c.title, c.last_activity, c.creation_time
        FROM chats c
        WHERE c.user_id=?
          AND NOT EXISTS (SELECT 1 FROM messages m WHERE m.chat_id = c.chat_id)
        ORDER BY c.creation_time DESC
        LIMIT 1
    `, userID)
	var out model.Chat
	out.UserID = userID
	err := row.Scan(&out.ChatID, &out.Title, &out.LastActivity, &out.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *chats) TouchActivity(ctx context.Context, chatID string) error {
	_, err := c.db.ExecContext(ctx, `UPDATE chats SET last_activity=? WHERE chat_id=?`, time.Now().UTC(), chatID)
	return err
}

// --- Messages ---
type messages struct{ db *sql.DB }

func (m *messages) Create(ctx context.Context, mm *model.Message) (*model.Message, error) {
	id := mm.MessageID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := m.db.ExecContext(ctx, `
        INSERT INTO messages (message_id, chat_id, user_id, role, content, creation_time)
        VALUES (?,?,?,?,?,?)
    `, id, mm.ChatID, mm.UserID, mm.Role, mm.Content, now)
	if err != nil {
		return nil, err
	}
	out := *mm
	out.MessageID = id
	out.CreationTime = now
	return &out, nil
}

func (m *messages) Delete(ctx context.Context, userID, messageID string) error {
	res, err := m.db.ExecContext(ctx, `
        DELETE FROM messages WHERE user_id=? AND message_id=?
    `, userID, messageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (m *messages) ListRecent(ctx context.Context, chatID string, limit int) ([]*model.Message, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT message_id, chat_id, user_id, role, content, creation_time
        FROM messages WHERE chat_id=?
        ORDER BY creation_time DESC, message_id DESC
        LIMIT ?
    `, chatID, limit)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (m *messages) ListAsc(ctx context.Context, chatID string) ([]*model.Message, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT message_id, chat_id, user_id, role, content, creation_time
        FROM messages WHERE chat_id=?
        ORDER BY creation_time ASC, message_id ASC
    `, chatID)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (m *messages) CountByChat(ctx context.Context, chatID string) (int, error) {
	var n int
	row := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE chat_id=?`, chatID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanMessages(rows *sql.Rows) ([]*model.Message, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.MessageID, &msg.ChatID, &msg.UserID, &msg.Role, &msg.Content, &msg.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}
