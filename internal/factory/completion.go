package factory

import (
	"fmt"

	"github.com/aurora-chat/aurora/internal/completion"
	"github.com/aurora-chat/aurora/internal/config"
)

// NewCompletionProvider builds the generative model client.
func NewCompletionProvider(cfg *config.Config) (completion.Provider, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("AURORA_ANTHROPIC_API_KEY is required")
	}
	return completion.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.CompletionModel), nil
}
