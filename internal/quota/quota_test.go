package quota

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-chat/aurora/internal/model"
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

func seedUser(t *testing.T, s store.Store, limit int) string {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &model.User{
		UserID:            "u-quota",
		Email:             "quota@example.test",
		CredentialHash:    "hash-quota",
		DailyMessageLimit: limit,
	})
	require.NoError(t, err)
	return u.UserID
}

func TestTracker_DeniesAtLimit(t *testing.T) {
	s := newStore(t)
	userID := seedUser(t, s, 2)
	tr := NewTracker(s.Users(), DefaultWindow, zerolog.Nop())
	ctx := context.Background()

	w, err := tr.Check(ctx, userID)
	require.NoError(t, err)
	assert.True(t, w.Allowed)

	remaining, err := tr.Consume(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	remaining, err = tr.Consume(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	w, err = tr.Check(ctx, userID)
	require.NoError(t, err)
	assert.False(t, w.Allowed)
	assert.Equal(t, 2, w.Count)
}

func TestTracker_LazyWindowReset(t *testing.T) {
	s := newStore(t)
	userID := seedUser(t, s, 1)
	tr := NewTracker(s.Users(), 40*time.Millisecond, zerolog.Nop())
	ctx := context.Background()

	_, err := tr.Consume(ctx, userID)
	require.NoError(t, err)

	w, err := tr.Check(ctx, userID)
	require.NoError(t, err)
	assert.False(t, w.Allowed)

	time.Sleep(60 * time.Millisecond)

	// Expiry is observed lazily on the next check.
	w, err = tr.Check(ctx, userID)
	require.NoError(t, err)
	assert.True(t, w.Allowed)
	assert.Equal(t, 0, w.Count)
}

func TestTracker_CheckIsIdempotent(t *testing.T) {
	s := newStore(t)
	userID := seedUser(t, s, 5)
	tr := NewTracker(s.Users(), DefaultWindow, zerolog.Nop())
	ctx := context.Background()

	_, err := tr.Consume(ctx, userID)
	require.NoError(t, err)

	// Back-to-back checks inside the window must not reset the count.
	w1, err := tr.Check(ctx, userID)
	require.NoError(t, err)
	w2, err := tr.Check(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, w1.Count)
	assert.Equal(t, 1, w2.Count)
}

func TestTracker_ReleaseFloorsAtZero(t *testing.T) {
	s := newStore(t)
	userID := seedUser(t, s, 5)
	tr := NewTracker(s.Users(), DefaultWindow, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, tr.Release(ctx, userID))
	w, err := tr.Check(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Count)
}

func TestTracker_UnknownUser(t *testing.T) {
	s := newStore(t)
	tr := NewTracker(s.Users(), DefaultWindow, zerolog.Nop())

	_, err := tr.Check(context.Background(), "u-missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFormatResetTime(t *testing.T) {
	at := time.Date(2025, 3, 1, 14, 5, 0, 0, time.Local)
	assert.Equal(t, "02:05 PM", FormatResetTime(at))
}
