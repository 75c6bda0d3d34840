package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/config"
	"github.com/aurora-chat/aurora/internal/memoryindex"
)

// NewMemoryIndex builds the vector store named by cfg.VectorStore. Weaviate
// bootstraps its class asynchronously so a slow instance does not block startup.
func NewMemoryIndex(ctx context.Context, cfg *config.Config, log zerolog.Logger) (memoryindex.MemoryStore, error) {
	switch cfg.VectorStore {
	case "weaviate":
		idx, err := memoryindex.NewWeaviateStore(cfg.WeaviateURL)
		if err != nil {
			return nil, err
		}
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := memoryindex.BootstrapWeaviate(bootstrapCtx, cfg.WeaviateURL); err != nil {
				log.Warn().Err(err).Msg("weaviate bootstrap failed; writes will error until the class exists")
				return
			}
			log.Info().Str("url", cfg.WeaviateURL).Msg("weaviate memory index ready")
		}()
		return idx, nil
	case "chromem":
		log.Info().Msg("chromem memory index ready")
		return memoryindex.NewChromemStore(), nil
	default:
		return nil, fmt.Errorf("unknown VECTOR_STORE: %s", cfg.VectorStore)
	}
}
