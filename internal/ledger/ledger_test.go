package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-chat/aurora/internal/memoryindex"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
	"github.com/aurora-chat/aurora/internal/store/sqlite"
)

func setup(t *testing.T) (store.Store, *ConversationLedger, string, string) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db))
	s := sqlite.NewWithDB(db)

	ctx := context.Background()
	u, err := s.Users().Create(ctx, &model.User{UserID: "u-1", Email: "u1@example.test", CredentialHash: "h1"})
	require.NoError(t, err)
	c, err := s.Chats().Create(ctx, &model.Chat{UserID: u.UserID})
	require.NoError(t, err)

	l := New(s, memoryindex.NewChromemStore(), zerolog.Nop())
	return s, l, u.UserID, c.ChatID
}

func TestExchange_CommitPersistsBothMessages(t *testing.T) {
	s, l, userID, chatID := setup(t)
	ctx := context.Background()

	provID, err := l.CreateProvisional(ctx, chatID, userID, "what is a quasar?")
	require.NoError(t, err)

	asstID, err := l.CommitExchange(ctx, chatID, userID, "A quasar is a luminous galactic core.")
	require.NoError(t, err)
	assert.NotEqual(t, provID, asstID)

	msgs, err := s.Messages().ListAsc(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleModel, msgs[1].Role)
}

func TestExchange_RollbackRemovesProvisional(t *testing.T) {
	s, l, userID, chatID := setup(t)
	ctx := context.Background()

	provID, err := l.CreateProvisional(ctx, chatID, userID, "hello")
	require.NoError(t, err)

	require.NoError(t, l.Rollback(ctx, userID, provID))

	n, err := s.Messages().CountByChat(ctx, chatID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRollback_MissingMessageReturnsError(t *testing.T) {
	_, l, userID, _ := setup(t)
	err := l.Rollback(context.Background(), userID, "m-gone")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCommit_TouchesChatActivity(t *testing.T) {
	s, l, userID, chatID := setup(t)
	ctx := context.Background()

	before, err := s.Chats().GetByID(ctx, userID, chatID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = l.CommitExchange(ctx, chatID, userID, "reply")
	require.NoError(t, err)

	after, err := s.Chats().GetByID(ctx, userID, chatID)
	require.NoError(t, err)
	assert.True(t, after.LastActivity.After(before.LastActivity))
}

func TestWriteMemory_BestEffort(t *testing.T) {
	_, l, userID, chatID := setup(t)

	// A write into a healthy store lands.
	mem := memoryindex.NewChromemStore()
	l.memory = mem
	l.WriteMemory(context.Background(), memoryindex.Record{
		MessageID: "m-1", ChatID: chatID, UserID: userID,
		Role: model.RoleModel, Content: "remembered", CreationTime: time.Now().UTC(),
	}, []float32{1, 0, 0})

	hits, err := mem.Query(context.Background(), userID, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// A write with no vector must not panic or surface an error.
	l.WriteMemory(context.Background(), memoryindex.Record{
		MessageID: "m-2", ChatID: chatID, UserID: userID,
	}, nil)
}
