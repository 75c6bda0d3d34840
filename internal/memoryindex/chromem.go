package memoryindex

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore is an embedded, pure-Go MemoryStore used for local runs.
// Each user gets an isolated collection.
type ChromemStore struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

func NewChromemStore() *ChromemStore {
	return &ChromemStore{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

func (s *ChromemStore) getOrCreateCollection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[userID]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, exists := s.collections[userID]; exists {
		return col, nil
	}

	col, err := s.db.CreateCollection("user_"+userID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s.collections[userID] = col
	return col, nil
}

func (s *ChromemStore) Write(ctx context.Context, rec Record, vec []float32) error {
	col, err := s.getOrCreateCollection(rec.UserID)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        rec.MessageID,
		Content:   rec.Content,
		Embedding: vec,
		Metadata: map[string]string{
			"chat_id":       rec.ChatID,
			"user_id":       rec.UserID,
			"role":          rec.Role,
			"creation_time": rec.CreationTime.Format(time.RFC3339),
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, userID string, vec []float32, topK int) ([]Hit, error) {
	col, err := s.getOrCreateCollection(userID)
	if err != nil {
		return nil, err
	}

	// chromem requires nResults <= collection size, so shrink the limit until
	// the query fits. An empty collection yields no hits, not an error.
	var results []chromem.Result
	for limit := topK; limit >= 1; limit-- {
		results, err = col.QueryEmbedding(ctx, vec, limit, nil, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if limit == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]Hit, 0, len(results))
	for _, r := range results {
		ts, _ := time.Parse(time.RFC3339, r.Metadata["creation_time"])
		out = append(out, Hit{
			Record: Record{
				MessageID:    r.ID,
				ChatID:       r.Metadata["chat_id"],
				UserID:       r.Metadata["user_id"],
				Role:         r.Metadata["role"],
				Content:      r.Content,
				CreationTime: ts,
			},
			Score: float64(r.Similarity),
		})
	}
	return out, nil
}

func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
