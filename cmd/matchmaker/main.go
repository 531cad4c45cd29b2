package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/config"
	"github.com/kailas-cloud/matchmaker/internal/db"
	dbredis "github.com/kailas-cloud/matchmaker/internal/db/redis"
	"github.com/kailas-cloud/matchmaker/internal/domain"
	logpkg "github.com/kailas-cloud/matchmaker/internal/logger"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
	budgetrepo "github.com/kailas-cloud/matchmaker/internal/repository/budget"
	"github.com/kailas-cloud/matchmaker/internal/repository/embcache"
	"github.com/kailas-cloud/matchmaker/internal/repository/postgres"
	profilerepo "github.com/kailas-cloud/matchmaker/internal/repository/profile"
	chitransport "github.com/kailas-cloud/matchmaker/internal/transport/chi"
	openaiemb "github.com/kailas-cloud/matchmaker/internal/transport/openai"
	batchuc "github.com/kailas-cloud/matchmaker/internal/usecase/batch"
	embeddinguc "github.com/kailas-cloud/matchmaker/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
	profileuc "github.com/kailas-cloud/matchmaker/internal/usecase/profile"
	tasteuc "github.com/kailas-cloud/matchmaker/internal/usecase/taste"
	usageuc "github.com/kailas-cloud/matchmaker/internal/usecase/usage"
	"github.com/kailas-cloud/matchmaker/internal/version"
)

// profileStore is what the services need from a storage backend.
type profileStore interface {
	profileuc.Repository
	healthuc.StorePinger
}

// backend bundles the opened storage. kv is nil for postgres.
type backend struct {
	profiles profileStore
	kv       db.Store
	close    func()
}

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting matchmaker API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("taste_extractor", cfg.Taste.Extractor),
	)

	domain.KeyPrefix = cfg.Storage.KeyPrefix

	ctx := context.Background()
	be, err := openBackend(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open profile store", zap.Error(err))
	}
	defer be.close()
	logger.Info("Connected to profile store")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchingMetrics()

	inner, embedder, budget := buildExtractor(ctx, &cfg.Taste, be.kv, logger)
	extractor := tasteuc.NewInstrumented(inner, cfg.Taste.Extractor, cfg.Taste.Timeout(), tasteuc.BreakerConfig{
		FailureThreshold: uint32(cfg.Taste.Breaker.FailureThreshold), //nolint:gosec // validated non-negative
		OpenTimeout:      time.Duration(cfg.Taste.Breaker.OpenTimeoutSec) * time.Second,
		HalfOpenRequests: uint32(cfg.Taste.Breaker.HalfOpenRequests), //nolint:gosec // validated non-negative
	}, logger)

	matchCfg := matchinguc.DefaultConfig()
	matchCfg.StoreTimeout = cfg.Matching.StoreTimeout()
	matchCfg.TasteTimeout = cfg.Taste.Timeout()
	matchCfg.MaxConcurrency = cfg.Matching.MaxConcurrency
	matchCfg.Dimensions = cfg.Taste.Dimensions
	matchCfg.Weights = matchinguc.Weights{
		Age:      cfg.Matching.Weights.Age,
		Location: cfg.Matching.Weights.Location,
		Gender:   cfg.Matching.Weights.Gender,
		Taste:    cfg.Matching.Weights.Taste,
	}

	matchSvc := matchinguc.New(be.profiles, extractor, matchCfg, logger)
	profileSvc := profileuc.New(be.profiles)

	// Pass nil interface (not typed nil pointer) when no provider is configured.
	var embeddingChecker healthuc.Checker
	if hc, ok := embedder.(domain.HealthChecker); ok {
		embeddingChecker = hc
	}
	healthSvc := healthuc.New(be.profiles, extractor, embeddingChecker)

	// Same nil-interface rule for the budget reader.
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader)

	batchSvc := batchuc.New(profileSvc, profileSvc)

	server := chitransport.NewServer(profileSvc, matchSvc, healthSvc, usageSvc, batchSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openBackend connects the configured driver and waits until it answers.
func openBackend(ctx context.Context, cfg *config.DatabaseConfig) (*backend, error) {
	readiness := time.Duration(cfg.ReadinessTimeout) * time.Second

	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err := dbredis.NewStore(dbredis.Config{
			Addrs:      cfg.Addrs,
			Username:   cfg.Username,
			Password:   cfg.Password,
			DB:         cfg.DB,
			ClientName: "matchmaker",
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
		}
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
		}
		return &backend{
			profiles: kvProfiles{Repo: profilerepo.New(store), Pinger: store},
			kv:       store,
			close:    store.Close,
		}, nil

	case config.DriverPostgres:
		repo, err := postgres.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := repo.WaitForReady(ctx, readiness); err != nil {
			repo.Close()
			return nil, fmt.Errorf("postgres not ready: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return &backend{profiles: repo, close: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// kvProfiles pairs the hash repository with the connection it pings.
type kvProfiles struct {
	*profilerepo.Repo
	db.Pinger
}

// buildExtractor assembles the taste extractor. For the openai extractor the chain is
// OpenAI -> Cached -> Instrumented (budget + metrics) -> Instruction, and the returned
// embedder is the outermost link so health checks reach the provider.
// The budget tracker is nil unless a token limit is configured.
// providerConfig maps provider settings to the embeddings client. The taste
// width is never sent: the extractor folds the full embedding into buckets.
func providerConfig(prov *config.ProviderConfig, logger *zap.Logger) *openaiemb.Config {
	return &openaiemb.Config{
		APIKey:     prov.APIKey,
		BaseURL:    prov.BaseURL,
		Model:      prov.Model,
		Dimensions: prov.Dimensions,
		Provider:   prov.Name,
		Timeout:    time.Duration(prov.TimeoutSec) * time.Second,
		Logger:     logger,
	}
}

func buildExtractor(
	ctx context.Context,
	cfg *config.TasteConfig,
	kv db.Store,
	logger *zap.Logger,
) (tasteuc.Extractor, domain.Embedder, *embeddinguc.BudgetTracker) {
	if cfg.Extractor != config.ExtractorOpenAI {
		logger.Info("Using hash taste extractor", zap.Int("dimensions", cfg.Dimensions))
		return tasteuc.NewHashExtractor(cfg.Dimensions), nil, nil
	}

	prov := cfg.Provider
	base := openaiemb.NewEmbedder(providerConfig(&prov, logger))

	var embedder domain.Embedder = base
	if cfg.Cache.Enabled && kv != nil {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		embedder = embcache.New(base, kv, prov.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var tracker *embeddinguc.BudgetTracker
	var budget embeddinguc.BudgetChecker
	if cfg.Budget.DailyTokenLimit > 0 || cfg.Budget.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if cfg.Budget.Action == string(embeddinguc.BudgetActionReject) {
			action = embeddinguc.BudgetActionReject
		}
		tracker = embeddinguc.NewBudgetTracker(
			prov.Name, cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit, action, logger,
		)
		if kv != nil {
			tracker.WithStore(ctx, budgetrepo.NewCounter(kv, 48*time.Hour, 62*24*time.Hour))
		}
		budget = tracker
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, prov.Name, prov.Model, budget, logger)

	if prov.Instruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, prov.Instruction)
	}

	logger.Info("Using embedding taste extractor",
		zap.String("provider", prov.Name),
		zap.String("model", prov.Model),
		zap.Int("dimensions", cfg.Dimensions),
		zap.Int("provider_dimensions", prov.Dimensions),
		zap.Bool("cache", cfg.Cache.Enabled && kv != nil),
	)
	return tasteuc.NewEmbeddingExtractor(embedder, cfg.Dimensions), embedder, tracker
}
