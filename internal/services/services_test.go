package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aurora-chat/aurora/internal/auth"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/services"
	"github.com/aurora-chat/aurora/internal/store"
	"github.com/aurora-chat/aurora/internal/store/sqlite"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db))
	return sqlite.NewWithDB(db)
}

func TestUserService_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := services.NewUserService(st, 20)

	created, err := svc.CreateUser(ctx, "ada@example.com", nil)
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	require.NotEqual(t, created.Token, created.User.CredentialHash, "store keeps the hash, never the token")

	// the returned token authenticates against the stored hash
	id, err := auth.NewTokenAuthenticator(st.Users()).Authenticate(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, created.User.UserID, id.UserID)
}

func TestUserService_ConfiguredDailyLimit(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := services.NewUserService(st, 7)

	created, err := svc.CreateUser(ctx, "grace@example.com", nil)
	require.NoError(t, err)
	require.Equal(t, 7, created.User.DailyMessageLimit)

	stored, err := st.Users().Get(ctx, created.User.UserID)
	require.NoError(t, err)
	require.Equal(t, 7, stored.DailyMessageLimit)
}

func TestChatService_ListMessagesChecksOwnership(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	users := services.NewUserService(st, 20)
	chats := services.NewChatService(st)

	owner, err := users.CreateUser(ctx, "ada@example.com", nil)
	require.NoError(t, err)
	other, err := users.CreateUser(ctx, "eve@example.com", nil)
	require.NoError(t, err)

	chat, err := chats.CreateChat(ctx, owner.User.UserID, nil)
	require.NoError(t, err)

	_, err = chats.ListMessages(ctx, other.User.UserID, chat.ChatID)
	require.True(t, errors.Is(err, model.ErrNotFound))

	msgs, err := chats.ListMessages(ctx, owner.User.UserID, chat.ChatID)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestChatService_FirstEmptyChat(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	users := services.NewUserService(st, 20)
	chats := services.NewChatService(st)

	u, err := users.CreateUser(ctx, "ada@example.com", nil)
	require.NoError(t, err)

	empty, err := chats.FirstEmptyChat(ctx, u.User.UserID)
	require.NoError(t, err)
	require.Nil(t, empty)

	chat, err := chats.CreateChat(ctx, u.User.UserID, nil)
	require.NoError(t, err)

	empty, err = chats.FirstEmptyChat(ctx, u.User.UserID)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Equal(t, chat.ChatID, empty.ChatID)
}
