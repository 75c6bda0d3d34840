package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store/sqlite"
)

func TestTokenAuthenticator(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db))
	s := sqlite.NewWithDB(db)

	token := "tok-abc123"
	_, err = s.Users().Create(context.Background(), &model.User{
		UserID:         "u-1",
		Email:          "u1@example.test",
		CredentialHash: HashToken(token),
	})
	require.NoError(t, err)

	a := NewTokenAuthenticator(s.Users())

	id, err := a.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)

	_, err = a.Authenticate(context.Background(), "tok-wrong")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestMockAuthenticator(t *testing.T) {
	m := NewMockAuthenticator()

	id, err := m.Authenticate(context.Background(), LocalDevToken)
	require.NoError(t, err)
	assert.Equal(t, LocalDevUserID, id.UserID)

	_, err = m.Authenticate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer tok-1")
	tok, err := ExtractBearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	r = httptest.NewRequest("GET", "/ws?token=tok-2", nil)
	tok, err = ExtractBearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)

	r = httptest.NewRequest("GET", "/ws", nil)
	_, err = ExtractBearerToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractBearerToken(r)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
