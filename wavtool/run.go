package wavtool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	filters "github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/aurora-chat/aurora/internal/embeddings/ollama"
)

// Query runs a nearVector search against the ChatMemory class and returns the
// raw JSON response bytes. Results are always scoped to userID since memory
// snippets are private to their owner.
func Query(weaviateURL, ollamaURL, embedModel, userID, query string, topK int) ([]byte, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user is required")
	}
	if topK <= 0 {
		topK = 3
	}

	emb := ollama.New(ollamaURL, embedModel)
	vec, err := emb.Embed(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	cfg := weaviate.Config{Scheme: "http", Host: weaviateURL}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}

	nv := (&gql.NearVectorArgumentBuilder{}).WithVector(vec)
	where := filters.Where().WithPath([]string{"userId"}).WithOperator(filters.Equal).WithValueText(userID)

	resp, err := client.GraphQL().Get().
		WithClassName("ChatMemory").
		WithNearVector(nv).
		WithWhere(where).
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
		Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("marshal response indent failed; falling back to compact")
		return json.Marshal(resp)
	}
	return out, nil
}
