package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

// TokenAuthenticator resolves bearer tokens against stored credential hashes.
// Tokens are hashed before lookup so plaintext secrets never reach the store.
type TokenAuthenticator struct {
	users store.Users
}

func NewTokenAuthenticator(users store.Users) *TokenAuthenticator {
	return &TokenAuthenticator{users: users}
}

// HashToken computes the lookup digest for a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	u, err := a.users.GetByCredentialHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return identityOf(u), nil
}
