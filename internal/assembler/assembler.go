// Package assembler gathers the conversational context for a model call:
// recent chat history plus similar past messages from the vector store.
package assembler

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/completion"
	"github.com/aurora-chat/aurora/internal/embeddings"
	"github.com/aurora-chat/aurora/internal/memoryindex"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

const memoryPrefix = "These are some previous messages from the chat, use them to generate a response:\n"

const (
	DefaultHistoryLimit = 20
	DefaultMemoryTopK   = 3
)

// AssembledContext is the model input for one exchange. LongTerm precedes
// ShortTerm; ShortTerm is in chronological ascending order so the newest user
// message comes last, which is the order a conversational model expects.
type AssembledContext struct {
	ShortTerm []completion.Message
	LongTerm  []completion.Message
}

// Messages flattens the context into the sequence sent to the model.
func (c *AssembledContext) Messages() []completion.Message {
	out := make([]completion.Message, 0, len(c.LongTerm)+len(c.ShortTerm))
	out = append(out, c.LongTerm...)
	out = append(out, c.ShortTerm...)
	return out
}

// ContextAssembler reads history and memory. It never writes.
type ContextAssembler struct {
	messages     store.Messages
	memory       memoryindex.MemoryStore
	embedder     embeddings.EmbeddingProvider
	historyLimit int
	topK         int
	log          zerolog.Logger
}

func New(messages store.Messages, memory memoryindex.MemoryStore, embedder embeddings.EmbeddingProvider, historyLimit, topK int, log zerolog.Logger) *ContextAssembler {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if topK <= 0 {
		topK = DefaultMemoryTopK
	}
	return &ContextAssembler{
		messages:     messages,
		memory:       memory,
		embedder:     embedder,
		historyLimit: historyLimit,
		topK:         topK,
		log:          log,
	}
}

// BuildContext returns the assembled context for the next model call. A
// failing embedding or memory lookup degrades to empty long-term context
// rather than failing the exchange; history read errors are fatal.
func (a *ContextAssembler) BuildContext(ctx context.Context, chatID, userID, latestContent string) (*AssembledContext, error) {
	recent, err := a.messages.ListRecent(ctx, chatID, a.historyLimit)
	if err != nil {
		return nil, model.NewRelayError(model.KindPersistenceFailure, err)
	}

	shortTerm := make([]completion.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		m := recent[i]
		role := "user"
		if m.Role == model.RoleModel {
			role = "assistant"
		}
		shortTerm = append(shortTerm, completion.Message{Role: role, Content: m.Content})
	}

	return &AssembledContext{
		ShortTerm: shortTerm,
		LongTerm:  a.longTerm(ctx, userID, latestContent),
	}, nil
}

func (a *ContextAssembler) longTerm(ctx context.Context, userID, latestContent string) []completion.Message {
	vec, err := a.embedder.Embed(ctx, latestContent)
	if err != nil {
		a.log.Warn().Err(err).Str("user_id", userID).Msg("embedding failed, continuing without long-term context")
		return nil
	}

	hits, err := a.memory.Query(ctx, userID, vec, a.topK)
	if err != nil {
		a.log.Warn().Err(err).Str("user_id", userID).Msg("memory query failed, continuing without long-term context")
		return nil
	}
	if len(hits) == 0 {
		return nil
	}

	snippets := make([]string, 0, len(hits))
	for _, h := range hits {
		snippets = append(snippets, h.Content)
	}
	return []completion.Message{{
		Role:    "user",
		Content: memoryPrefix + strings.Join(snippets, "\n"),
	}}
}
