package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/embeddings"
	"github.com/aurora-chat/aurora/internal/model"
)

const (
	// StatusOverloaded is Anthropic's overload status.
	StatusOverloaded = 529

	defaultRetryMax  = 3
	defaultRetryBase = time.Second
)

// Gateway wraps a Provider with bounded retry and failure classification.
// Only rate-limit and overload signals are retried; everything else fails the
// call immediately. The worst-case wait is base*(2^max - 1).
type Gateway struct {
	provider  Provider
	embedder  embeddings.EmbeddingProvider
	system    string
	maxTokens int
	retryMax  int
	retryBase time.Duration
	log       zerolog.Logger
}

type GatewayOptions struct {
	// SystemPrompt overrides the built-in persona when non-empty.
	SystemPrompt  string
	AssistantName string
	MaxTokens     int
	RetryMax      int
	RetryBase     time.Duration
}

func NewGateway(provider Provider, embedder embeddings.EmbeddingProvider, opts GatewayOptions, log zerolog.Logger) *Gateway {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt(opts.AssistantName)
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = defaultRetryMax
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = defaultRetryBase
	}
	return &Gateway{
		provider:  provider,
		embedder:  embedder,
		system:    opts.SystemPrompt,
		maxTokens: opts.MaxTokens,
		retryMax:  opts.RetryMax,
		retryBase: opts.RetryBase,
		log:       log,
	}
}

// Generate calls the provider with the assembled context and returns the
// reply text. Failures come back as RelayErrors carrying the taxonomy kind.
func (g *Gateway) Generate(ctx context.Context, contextMessages []Message, userID string) (string, error) {
	req := CompletionRequest{
		Messages:  contextMessages,
		MaxTokens: g.maxTokens,
		System:    g.system,
	}

	var lastErr error
	delay := g.retryBase
	for attempt := 0; ; attempt++ {
		resp, err := g.provider.Complete(ctx, req)
		if err == nil {
			if strings.TrimSpace(resp.Content) == "" {
				return "", model.NewRelayError(model.KindEmptyResponse, errors.New("provider returned empty text"))
			}
			return resp.Content, nil
		}
		lastErr = err

		kind, retryable := classify(err)
		if !retryable {
			return "", model.NewRelayError(kind, err)
		}
		if attempt >= g.retryMax {
			g.log.Warn().Err(err).Str("user_id", userID).Int("attempts", attempt+1).Msg("provider retries exhausted")
			return "", model.NewRelayError(kind, err)
		}

		g.log.Debug().Err(err).Str("user_id", userID).Dur("delay", delay).Msg("provider busy, backing off")
		select {
		case <-ctx.Done():
			return "", model.NewRelayError(kind, lastErr)
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// Embed produces a vector for text via the embedding provider.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	return g.embedder.Embed(ctx, text)
}

// classify maps a provider error to a taxonomy kind and whether it is worth
// retrying. Rate limiting exhausts into a provider-quota failure; overload
// exhausts into a transient one.
func classify(err error) (model.ErrorKind, bool) {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return model.KindGeneric, false
	}
	switch pe.StatusCode {
	case http.StatusTooManyRequests:
		return model.KindProviderQuota, true
	case http.StatusServiceUnavailable, StatusOverloaded:
		return model.KindProviderTransient, true
	default:
		return model.KindGeneric, false
	}
}
