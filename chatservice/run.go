package chatservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/api"
	"github.com/aurora-chat/aurora/internal/assembler"
	"github.com/aurora-chat/aurora/internal/completion"
	"github.com/aurora-chat/aurora/internal/config"
	emb "github.com/aurora-chat/aurora/internal/embeddings"
	"github.com/aurora-chat/aurora/internal/factory"
	"github.com/aurora-chat/aurora/internal/health"
	"github.com/aurora-chat/aurora/internal/ledger"
	"github.com/aurora-chat/aurora/internal/logger"
	"github.com/aurora-chat/aurora/internal/memoryindex"
	"github.com/aurora-chat/aurora/internal/quota"
	"github.com/aurora-chat/aurora/internal/relay"
	"github.com/aurora-chat/aurora/internal/services"
	"github.com/aurora-chat/aurora/internal/store"
	"github.com/aurora-chat/aurora/internal/ws"
)

// Run starts the chat service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("chat-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("vector_store", cfg.VectorStore).
		Int("http_port", cfg.HTTPPort).
		Str("completion_model", cfg.CompletionModel).
		Str("embed_model", cfg.EmbedModel).
		Msg("Chat service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, idx, embProvider, provider, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	handler := buildHandler(cfg, log, st, idx, embProvider, provider)

	svcHealth := startHealthCheckers(ctx, cfg, log, st, idx, embProvider)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, handler)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, memoryindex.MemoryStore, emb.EmbeddingProvider, completion.Provider, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, nil, nil, err
	}

	idx, err := factory.NewMemoryIndex(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Memory index adapter unavailable")
		return nil, nil, nil, nil, err
	}

	embProvider := factory.NewEmbeddingProvider(cfg, log)
	if embProvider == nil {
		return nil, nil, nil, nil, fmt.Errorf("embedding provider not configured")
	}

	provider, err := factory.NewCompletionProvider(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Completion provider unavailable")
		return nil, nil, nil, nil, err
	}
	return st, idx, embProvider, provider, nil
}

// buildHandler assembles the relay pipeline and mounts HTTP plus websocket routes.
func buildHandler(cfg *config.Config, log zerolog.Logger, st store.Store, idx memoryindex.MemoryStore, embProvider emb.EmbeddingProvider, provider completion.Provider) http.Handler {
	gateway := completion.NewGateway(provider, embProvider, completion.GatewayOptions{
		SystemPrompt:  cfg.SystemPrompt,
		AssistantName: cfg.AssistantName,
		MaxTokens:     int(cfg.CompletionMaxTokens),
		RetryMax:      cfg.RetryMax,
		RetryBase:     time.Duration(cfg.RetryBaseMS) * time.Millisecond,
	}, log)

	tracker := quota.NewTracker(st.Users(), quota.DefaultWindow, log)
	convLedger := ledger.New(st, idx, log)
	ctxAssembler := assembler.New(st.Messages(), idx, embProvider, cfg.HistoryLimit, cfg.MemoryTopK, log)
	messageRelay := relay.New(tracker, convLedger, ctxAssembler, gateway, st.Chats(), log)

	authenticator := factory.NewAuthenticator(cfg, st.Users(), log)
	wsServer := ws.NewServer(authenticator, messageRelay, log)

	userSvc := services.NewUserService(st, cfg.DefaultQuota)
	chatSvc := services.NewChatService(st)
	return api.NewRouter(authenticator, userSvc, chatSvc, wsServer.Handler())
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, idx memoryindex.MemoryStore, embProvider emb.EmbeddingProvider) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)
	checkers = append(checkers, storeChecker)

	idxChecker := memoryindex.NewIndexHealthChecker(idx, log, probeTimeout)
	go idxChecker.Start(ctx, interval)
	checkers = append(checkers, idxChecker)

	embChecker := emb.NewProviderHealthChecker(embProvider, log, probeTimeout)
	go embChecker.Start(ctx, interval)
	checkers = append(checkers, embChecker)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Websocket exchanges outlive ordinary request deadlines; the relay
		// bounds its own work, so no WriteTimeout here.
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
