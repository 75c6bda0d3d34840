package services

import (
	"context"

	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

// ChatService handles chat and history operations. Every lookup is scoped to
// the calling user, so a foreign chat behaves exactly like a missing one.
type ChatService struct {
	store store.Store
}

func NewChatService(s store.Store) *ChatService { return &ChatService{store: s} }

func (s *ChatService) CreateChat(ctx context.Context, userID string, title *string) (*model.Chat, error) {
	return s.store.Chats().Create(ctx, &model.Chat{UserID: userID, Title: title})
}

func (s *ChatService) GetChat(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	return s.store.Chats().GetByID(ctx, userID, chatID)
}

func (s *ChatService) ListChats(ctx context.Context, userID string) ([]*model.Chat, error) {
	return s.store.Chats().List(ctx, userID)
}

func (s *ChatService) RenameChat(ctx context.Context, userID, chatID, title string) (*model.Chat, error) {
	return s.store.Chats().UpdateTitle(ctx, userID, chatID, title)
}

// FirstEmptyChat returns the newest chat with no messages, or nil.
func (s *ChatService) FirstEmptyChat(ctx context.Context, userID string) (*model.Chat, error) {
	return s.store.Chats().FirstEmpty(ctx, userID)
}

// ListMessages returns a chat's messages in chronological order. The chat
// must belong to the caller.
func (s *ChatService) ListMessages(ctx context.Context, userID, chatID string) ([]*model.Message, error) {
	if _, err := s.store.Chats().GetByID(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.store.Messages().ListAsc(ctx, chatID)
}
