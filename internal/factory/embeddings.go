package factory

import (
	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/config"
	emb "github.com/aurora-chat/aurora/internal/embeddings"
	"github.com/aurora-chat/aurora/internal/embeddings/ollama"
)

// NewEmbeddingProvider creates an embedding provider based on config.
func NewEmbeddingProvider(cfg *config.Config, log zerolog.Logger) emb.EmbeddingProvider {
	switch cfg.EmbedProvider {
	case "", "ollama":
		return ollama.New(cfg.OllamaURL, cfg.EmbedModel)
	default:
		log.Warn().Str("provider", cfg.EmbedProvider).Msg("unknown embedding provider; using ollama")
		return ollama.New(cfg.OllamaURL, cfg.EmbedModel)
	}
}
