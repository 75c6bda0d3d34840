package auth

import "context"

const (
	// LocalDevToken is the hardcoded bearer token for local development only.
	LocalDevToken = "sk_local_aurora_dev_token"

	// LocalDevUserID is the user the dev token resolves to.
	LocalDevUserID = "aurora-dev"
)

// MockAuthenticator recognizes only the hardcoded LocalDevToken. It exists so
// the service can run without a seeded user table during local development.
type MockAuthenticator struct{}

func NewMockAuthenticator() *MockAuthenticator { return &MockAuthenticator{} }

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if token != LocalDevToken {
		return nil, ErrInvalidToken
	}
	name := "Local Development"
	return &Identity{UserID: LocalDevUserID, Email: "dev@aurora.local", DisplayName: &name}, nil
}
