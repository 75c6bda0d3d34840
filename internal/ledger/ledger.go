// Package ledger persists the two messages of an exchange. A user message is
// written provisionally before the model call; a failed exchange deletes it
// again so no half-finished exchange survives in history.
package ledger

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/memoryindex"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

type ConversationLedger struct {
	store  store.Store
	memory memoryindex.MemoryStore
	log    zerolog.Logger
}

func New(s store.Store, memory memoryindex.MemoryStore, log zerolog.Logger) *ConversationLedger {
	return &ConversationLedger{store: s, memory: memory, log: log}
}

// CreateProvisional persists the user message immediately. The record is
// visible to concurrent readers before the exchange completes; that is a
// deliberate trade-off for responsive history reads and simple rollback.
func (l *ConversationLedger) CreateProvisional(ctx context.Context, chatID, userID, content string) (string, error) {
	msg, err := l.store.Messages().Create(ctx, &model.Message{
		ChatID:  chatID,
		UserID:  userID,
		Role:    model.RoleUser,
		Content: content,
	})
	if err != nil {
		return "", model.NewRelayError(model.KindPersistenceFailure, err)
	}
	return msg.MessageID, nil
}

// CommitExchange persists the assistant message and bumps chat activity.
func (l *ConversationLedger) CommitExchange(ctx context.Context, chatID, userID, assistantText string) (string, error) {
	msg, err := l.store.Messages().Create(ctx, &model.Message{
		ChatID:  chatID,
		UserID:  userID,
		Role:    model.RoleModel,
		Content: assistantText,
	})
	if err != nil {
		return "", model.NewRelayError(model.KindPersistenceFailure, err)
	}
	if err := l.store.Chats().TouchActivity(ctx, chatID); err != nil {
		l.log.Warn().Err(err).Str("chat_id", chatID).Msg("failed to bump chat activity")
	}
	return msg.MessageID, nil
}

// Rollback deletes the provisional user message after a failed exchange.
func (l *ConversationLedger) Rollback(ctx context.Context, userID, provisionalID string) error {
	if err := l.store.Messages().Delete(ctx, userID, provisionalID); err != nil {
		l.log.Error().Stack().Err(err).
			Str("user_id", userID).
			Str("message_id", provisionalID).
			Msg("rollback failed, provisional message left behind")
		return err
	}
	return nil
}

// WriteMemory records a committed message in the vector store. It is
// best-effort: failures are logged and swallowed, never surfaced.
func (l *ConversationLedger) WriteMemory(ctx context.Context, rec memoryindex.Record, vec []float32) {
	if err := l.memory.Write(ctx, rec, vec); err != nil {
		l.log.Warn().Err(err).
			Str("message_id", rec.MessageID).
			Str("chat_id", rec.ChatID).
			Msg("memory write failed")
	}
}
