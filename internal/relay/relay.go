// Package relay orchestrates one exchange per inbound message: quota
// admission, provisional persistence, context assembly, model call, then
// commit or rollback. Each exchange runs on its own goroutine; nothing here
// serializes exchanges across users or chats.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/assembler"
	"github.com/aurora-chat/aurora/internal/completion"
	"github.com/aurora-chat/aurora/internal/ledger"
	"github.com/aurora-chat/aurora/internal/memoryindex"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/quota"
	"github.com/aurora-chat/aurora/internal/store"
)

const limitReachedTitle = "You've reached today's message limit."

// State tracks an exchange through its lifecycle. States only ever advance;
// RolledBack and Committed are terminal.
type State int

const (
	StateIdle State = iota
	StateQuotaChecked
	StateUserMessagePersisted
	StateContextAssembled
	StateResponseGenerated
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuotaChecked:
		return "quota_checked"
	case StateUserMessagePersisted:
		return "user_message_persisted"
	case StateContextAssembled:
		return "context_assembled"
	case StateResponseGenerated:
		return "response_generated"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Exchange is one inbound message event.
type Exchange struct {
	ChatID  string
	Content string
}

// MessageRelay drives the exchange state machine.
type MessageRelay struct {
	quota     *quota.Tracker
	ledger    *ledger.ConversationLedger
	assembler *assembler.ContextAssembler
	gateway   *completion.Gateway
	chats     store.Chats
	log       zerolog.Logger
}

func New(q *quota.Tracker, l *ledger.ConversationLedger, a *assembler.ContextAssembler, g *completion.Gateway, chats store.Chats, log zerolog.Logger) *MessageRelay {
	return &MessageRelay{quota: q, ledger: l, assembler: a, gateway: g, chats: chats, log: log}
}

// Process runs one exchange to a terminal state and emits exactly one signal.
// The returned state is the terminal state reached.
func (r *MessageRelay) Process(ctx context.Context, userID string, ex Exchange, emit Emitter) State {
	state := StateIdle
	log := r.log.With().Str("user_id", userID).Str("chat_id", ex.ChatID).Logger()

	// Admission check. Nothing is persisted before this passes.
	window, err := r.quota.Check(ctx, userID)
	if err != nil {
		log.Error().Stack().Err(err).Msg("quota check failed")
		emit.EmitError(ErrorSignal{Message: model.KindGeneric.UserMessage()})
		return state
	}
	if !window.Allowed {
		reset := quota.FormatResetTime(window.ResetAt)
		emit.EmitLimitReached(LimitReached{
			Title:         limitReachedTitle,
			Message:       fmt.Sprintf("Please try again after %s.", reset),
			FormattedTime: reset,
		})
		return state
	}
	state = StateQuotaChecked

	// Validate the target chat before any write. An unknown chat and a chat
	// owned by someone else answer the same way.
	if ex.ChatID == "" || ex.Content == "" {
		emit.EmitError(ErrorSignal{Message: model.KindValidation.UserMessage()})
		return state
	}
	if _, err := r.chats.GetByID(ctx, userID, ex.ChatID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			emit.EmitError(ErrorSignal{Message: model.KindValidation.UserMessage()})
		} else {
			log.Error().Stack().Err(err).Msg("chat lookup failed")
			emit.EmitError(ErrorSignal{Message: model.KindGeneric.UserMessage()})
		}
		return state
	}

	provisionalID, err := r.ledger.CreateProvisional(ctx, ex.ChatID, userID, ex.Content)
	if err != nil {
		log.Error().Stack().Err(err).Msg("provisional persist failed")
		emit.EmitError(ErrorSignal{Message: model.KindGeneric.UserMessage()})
		return state
	}
	state = StateUserMessagePersisted

	assembled, err := r.assembler.BuildContext(ctx, ex.ChatID, userID, ex.Content)
	if err != nil {
		return r.rollback(ctx, log, emit, userID, provisionalID, err)
	}
	state = StateContextAssembled

	text, err := r.gateway.Generate(ctx, assembled.Messages(), userID)
	if err != nil {
		return r.rollback(ctx, log, emit, userID, provisionalID, err)
	}
	state = StateResponseGenerated

	assistantID, err := r.ledger.CommitExchange(ctx, ex.ChatID, userID, text)
	if err != nil {
		return r.rollback(ctx, log, emit, userID, provisionalID, err)
	}

	// Usage is recorded only once the full exchange is durable, so a crash or
	// failure anywhere above never costs the user a quota unit.
	remaining, err := r.quota.Consume(ctx, userID)
	if err != nil {
		log.Error().Stack().Err(err).Msg("quota consume failed after commit")
		remaining = window.Remaining() - 1
		if remaining < 0 {
			remaining = 0
		}
	}

	r.writeAssistantMemory(ctx, log, userID, ex.ChatID, assistantID, text)
	state = StateCommitted

	emit.EmitResponse(Response{Content: text, Chat: ex.ChatID, Remaining: remaining})
	return state
}

// rollback removes the provisional user message and emits the typed failure
// signal for err. Quota is untouched because usage is only consumed after
// commit.
func (r *MessageRelay) rollback(ctx context.Context, log zerolog.Logger, emit Emitter, userID, provisionalID string, cause error) State {
	kind := model.KindOf(cause)
	log.Warn().Err(cause).Str("kind", kind.String()).Msg("exchange failed, rolling back")

	_ = r.ledger.Rollback(ctx, userID, provisionalID)

	switch kind {
	case model.KindProviderQuota, model.KindProviderTransient:
		emit.EmitFailed(Failed{Code: kind.String(), Message: kind.UserMessage()})
	default:
		emit.EmitError(ErrorSignal{Message: kind.UserMessage()})
	}
	return StateRolledBack
}

// writeAssistantMemory embeds the assistant reply and stores it for long-term
// recall. Best-effort only: a failure is logged, never surfaced.
func (r *MessageRelay) writeAssistantMemory(ctx context.Context, log zerolog.Logger, userID, chatID, messageID, text string) {
	vec, err := r.gateway.Embed(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("assistant memory embed failed")
		return
	}
	r.ledger.WriteMemory(ctx, memoryindex.Record{
		MessageID:    messageID,
		ChatID:       chatID,
		UserID:       userID,
		Role:         model.RoleModel,
		Content:      text,
		CreationTime: time.Now().UTC(),
	}, vec)
}
