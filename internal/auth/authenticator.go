package auth

import (
	"context"

	"github.com/aurora-chat/aurora/internal/model"
)

// Identity describes an authenticated user.
type Identity struct {
	UserID      string  `json:"user_id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
}

// Authenticator resolves a bearer token to the user it belongs to.
type Authenticator interface {
	// Authenticate validates the token and returns the identity it maps to.
	// Returns ErrInvalidToken when the token resolves to no user.
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

func identityOf(u *model.User) *Identity {
	return &Identity{UserID: u.UserID, Email: u.Email, DisplayName: u.DisplayName}
}
