// Package memoryindex provides the vector store behind long-term chat memory.
package memoryindex

import (
	"context"
	"time"
)

// Record is one remembered message.
type Record struct {
	MessageID    string    `json:"messageId"`
	ChatID       string    `json:"chatId"`
	UserID       string    `json:"userId"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	CreationTime time.Time `json:"creationTime"`
}

// Hit is a record returned from a similarity query.
type Hit struct {
	Record
	Score float64 `json:"score"`
}

// MemoryStore provides vector writes and top-K similarity lookup. Writes are
// append-only; duplicate writes on retry are acceptable and not deduplicated.
type MemoryStore interface {
	Write(ctx context.Context, rec Record, vec []float32) error
	Query(ctx context.Context, userID string, vec []float32, topK int) ([]Hit, error)
}
