package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/aurora-chat/aurora/internal/auth"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

// UserService handles user-related operations. dailyLimit is the message
// quota granted to new accounts.
type UserService struct {
	store      store.Store
	dailyLimit int
}

func NewUserService(s store.Store, dailyLimit int) *UserService {
	return &UserService{store: s, dailyLimit: dailyLimit}
}

// CreatedUser pairs the stored user with the one-time bearer token. The token
// is only ever returned here; the store keeps its hash.
type CreatedUser struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *UserService) CreateUser(ctx context.Context, email string, displayName *string) (*CreatedUser, error) {
	token := "sk_aurora_" + uuid.New().String()
	u, err := s.store.Users().Create(ctx, &model.User{
		UserID:            uuid.New().String(),
		Email:             email,
		DisplayName:       displayName,
		CredentialHash:    auth.HashToken(token),
		DailyMessageLimit: s.dailyLimit,
	})
	if err != nil {
		return nil, err
	}
	return &CreatedUser{User: u, Token: token}, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}
