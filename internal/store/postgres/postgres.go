package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users       { return &users{db: s.db} }
func (s *pgStore) Chats() store.Chats       { return &chats{db: s.db} }
func (s *pgStore) Messages() store.Messages { return &messages{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	limit := m.DailyMessageLimit
	if limit <= 0 {
		limit = 20
	}
	var created, reset time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name, credential_hash, daily_message_count, daily_message_limit, last_message_reset)
        VALUES ($1,$2,$3,$4,0,$5,now())
        RETURNING creation_time, last_message_reset
    `, m.UserID, m.Email, m.DisplayName, m.CredentialHash, limit)
	if err := row.Scan(&created, &reset); err != nil {
		return nil, err
	}
	out := *m
	out.DailyMessageCount = 0
	out.DailyMessageLimit = limit
	out.LastMessageReset = reset
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	return u.scanOne(ctx, `WHERE user_id=$1`, userID)
}

func (u *users) GetByCredentialHash(ctx context.Context, hash string) (*model.User, error) {
	return u.scanOne(ctx, `WHERE credential_hash=$1`, hash)
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
	// Conditional reset and read in one round trip. The WHERE guard makes the
	// reset idempotent under concurrency: only one of two racing calls can
	// match the stale last_message_reset.
	_, err := u.db.ExecContext(ctx, `
        UPDATE users
        SET daily_message_count = 0, last_message_reset = now()
        WHERE user_id = $1 AND last_message_reset <= now() - $2::interval
    `, userID, fmt.Sprintf("%d seconds", int(window.Seconds())))
	if err != nil {
		return nil, err
	}

	var count, limit int
	var reset time.Time
	row := u.db.QueryRowContext(ctx, `
        SELECT daily_message_count, daily_message_limit, last_message_reset
        FROM users WHERE user_id = $1
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
	var count int
	row := u.db.QueryRowContext(ctx, `
        UPDATE users SET daily_message_count = daily_message_count + 1
        WHERE user_id = $1
        RETURNING daily_message_count
    `, userID)
	if err := row.Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

func (u *users) DecrementQuota(ctx context.Context, userID string) error {
	_, err := u.db.ExecContext(ctx, `
        UPDATE users SET daily_message_count = GREATEST(daily_message_count - 1, 0)
        WHERE user_id = $1
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
	var created, activity time.Time
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO chats (chat_id, user_id, title, last_activity)
        VALUES ($1,$2,$3,now())
        RETURNING creation_time, last_activity
    `, id, mc.UserID, mc.Title)
	if err := row.Scan(&created, &activity); err != nil {
		return nil, err
	}
	return &model.Chat{ChatID: id, UserID: mc.UserID, Title: mc.Title, LastActivity: activity, CreationTime: created}, nil
}

func (c *chats) GetByID(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	var out model.Chat
	out.UserID = userID
	out.ChatID = chatID
	row := c.db.QueryRowContext(ctx, `
        SELECT title, last_activity, creation_time FROM chats WHERE user_id=$1 AND chat_id=$2
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
        FROM chats WHERE user_id=$1 ORDER BY creation_time DESC
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
	res, err := c.db.ExecContext(ctx, `
        UPDATE chats SET title=$1, last_activity=now() WHERE user_id=$2 AND chat_id=$3
    `, title, userID, chatID)
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
        WHERE c.user_id=$1
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
	_, err := c.db.ExecContext(ctx, `UPDATE chats SET last_activity=now() WHERE chat_id=$1`, chatID)
	return err
}

// --- Messages ---
type messages struct{ db *sql.DB }

func (m *messages) Create(ctx context.Context, mm *model.Message) (*model.Message, error) {
	id := mm.MessageID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := m.db.QueryRowContext(ctx, `
        INSERT INTO messages (message_id, chat_id, user_id, role, content)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING creation_time
    `, id, mm.ChatID, mm.UserID, mm.Role, mm.Content)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *mm
	out.MessageID = id
	out.CreationTime = created
	return &out, nil
}

func (m *messages) Delete(ctx context.Context, userID, messageID string) error {
	res, err := m.db.ExecContext(ctx, `
        DELETE FROM messages WHERE user_id=$1 AND message_id=$2
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
        FROM messages WHERE chat_id=$1
        ORDER BY creation_time DESC
        LIMIT $2
    `, chatID, limit)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (m *messages) ListAsc(ctx context.Context, chatID string) ([]*model.Message, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT message_id, chat_id, user_id, role, content, creation_time
        FROM messages WHERE chat_id=$1
        ORDER BY creation_time ASC
    `, chatID)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (m *messages) CountByChat(ctx context.Context, chatID string) (int, error) {
	var n int
	row := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE chat_id=$1`, chatID)
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
