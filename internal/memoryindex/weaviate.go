package memoryindex

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	filters "github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const chatMemoryClass = "ChatMemory"

// weavStore is a MemoryStore backed by Weaviate. Vectors are supplied by the
// embedding provider, so the class is created with vectorizer "none".
type weavStore struct {
	client  *weaviate.Client
	baseURL string // host:port without scheme
}

// NewWeaviateStore constructs a MemoryStore backed by Weaviate at baseURL.
// baseURL should be host:port (without scheme), e.g., "localhost:8081".
func NewWeaviateStore(baseURL string) (MemoryStore, error) {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &weavStore{client: cl, baseURL: baseURL}, nil
}

// BootstrapWeaviate ensures the ChatMemory class exists.
func BootstrapWeaviate(ctx context.Context, baseURL string) error {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	exists, err := cl.Schema().ClassExistenceChecker().WithClassName(chatMemoryClass).Do(cctx)
	if err != nil {
		return fmt.Errorf("check class %s: %w", chatMemoryClass, err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      chatMemoryClass,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "messageId", DataType: []string{"uuid"}},
			{Name: "userId", DataType: []string{"text"}},
			{Name: "chatId", DataType: []string{"text"}},
			{Name: "role", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "creationTime", DataType: []string{"date"}},
		},
	}
	if err := cl.Schema().ClassCreator().WithClass(class).Do(cctx); err != nil {
		return fmt.Errorf("create class %s: %w", chatMemoryClass, err)
	}
	return nil
}

func (w *weavStore) Write(ctx context.Context, rec Record, vec []float32) error {
	props := map[string]interface{}{
		"messageId":    rec.MessageID,
		"userId":       rec.UserID,
		"chatId":       rec.ChatID,
		"role":         rec.Role,
		"content":      rec.Content,
		"creationTime": rec.CreationTime.Format(time.RFC3339),
	}
	_, err := w.client.Data().Creator().
		WithClassName(chatMemoryClass).
		WithID(rec.MessageID).
		WithProperties(props).
		WithVector(vec).
		Do(ctx)
	return err
}

func (w *weavStore) Query(ctx context.Context, userID string, vec []float32, topK int) ([]Hit, error) {
	safeString := func(v interface{}) string {
		s, _ := v.(string)
		return s
	}

	near := (&gql.NearVectorArgumentBuilder{}).WithVector(vec)
	where := filters.Where().WithPath([]string{"userId"}).WithOperator(filters.Equal).WithValueText(userID)

	resp, err := w.client.GraphQL().Get().
		WithClassName(chatMemoryClass).
		WithWhere(where).
		WithNearVector(near).
		WithLimit(topK).
		WithFields(
			gql.Field{Name: "messageId"},
			gql.Field{Name: "userId"},
			gql.Field{Name: "chatId"},
			gql.Field{Name: "role"},
			gql.Field{Name: "content"},
			gql.Field{Name: "creationTime"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "certainty"}}},
		).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %v", resp.Errors[0].Message)
	}

	getData, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	raw, ok := getData[chatMemoryClass].([]interface{})
	if !ok {
		return []Hit{}, nil
	}

	out := make([]Hit, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var score float64
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			switch v := add["certainty"].(type) {
			case float64:
				score = v
			case string:
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					score = f
				}
			}
		}
		ts, _ := time.Parse(time.RFC3339, safeString(m["creationTime"]))
		out = append(out, Hit{
			Record: Record{
				MessageID:    safeString(m["messageId"]),
				UserID:       safeString(m["userId"]),
				ChatID:       safeString(m["chatId"]),
				Role:         safeString(m["role"]),
				Content:      safeString(m["content"]),
				CreationTime: ts,
			},
			Score: score,
		})
	}
	return out, nil
}

// HealthPing calls GET /v1/meta and expects 200 OK.
func (w *weavStore) HealthPing(ctx context.Context) error {
	if w == nil || w.baseURL == "" {
		return fmt.Errorf("weaviate baseURL missing")
	}
	url := w.baseURL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/meta", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weaviate status %d", resp.StatusCode)
	}
	return nil
}
