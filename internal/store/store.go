package store

import (
	"context"
	"time"

	"github.com/aurora-chat/aurora/internal/model"
)

// Store exposes persistence operations required by the relay and the CRUD
// services. Implementations live under internal/store/<driver>/.
type Store interface {
	Users() Users
	Chats() Chats
	Messages() Messages
}

// Users covers account lookup plus the quota mutations. All quota operations
// must be atomic conditional updates inside the driver, never read-modify-write
// across calls: two concurrent admission checks near the window boundary must
// not both reset, and a reset must never be overwritten by a stale read.
type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByCredentialHash(ctx context.Context, hash string) (*model.User, error)

	// CheckAndResetQuota performs the lazy daily reset (when at least window
	// has elapsed since the last reset) and returns the resulting quota view.
	CheckAndResetQuota(ctx context.Context, userID string, window time.Duration) (*model.QuotaWindow, error)
	// IncrementQuota adds one to the daily count and returns the new count.
	IncrementQuota(ctx context.Context, userID string) (int, error)
	// DecrementQuota subtracts one from the daily count, flooring at zero.
	DecrementQuota(ctx context.Context, userID string) error
}

type Chats interface {
	Create(ctx context.Context, c *model.Chat) (*model.Chat, error)
	// GetByID is owner-scoped: a chat owned by another user reads as absent.
	GetByID(ctx context.Context, userID, chatID string) (*model.Chat, error)
	List(ctx context.Context, userID string) ([]*model.Chat, error)
	UpdateTitle(ctx context.Context, userID, chatID, title string) (*model.Chat, error)
	// FirstEmpty returns the newest chat with no messages, or nil.
	FirstEmpty(ctx context.Context, userID string) (*model.Chat, error)
	TouchActivity(ctx context.Context, chatID string) error
}

type Messages interface {
	Create(ctx context.Context, m *model.Message) (*model.Message, error)
	// Delete removes a message by id; the only caller is the ledger rollback.
	Delete(ctx context.Context, userID, messageID string) error
	// ListRecent returns up to limit messages for the chat, newest first.
	ListRecent(ctx context.Context, chatID string, limit int) ([]*model.Message, error)
	// ListAsc returns all messages for the chat in chronological order.
	ListAsc(ctx context.Context, chatID string) ([]*model.Message, error)
	CountByChat(ctx context.Context, chatID string) (int, error)
}
