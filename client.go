package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/db"
	dbredis "github.com/kailas-cloud/matchmaker/internal/db/redis"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	profilerepo "github.com/kailas-cloud/matchmaker/internal/repository/profile"
	batchuc "github.com/kailas-cloud/matchmaker/internal/usecase/batch"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
	profileuc "github.com/kailas-cloud/matchmaker/internal/usecase/profile"
	tasteuc "github.com/kailas-cloud/matchmaker/internal/usecase/taste"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped in tests.
type profileUseCase interface {
	Upsert(ctx context.Context, in profileuc.Input) (domprof.Profile, bool, error)
	Get(ctx context.Context, id string) (domprof.Profile, error)
	List(ctx context.Context) ([]domprof.Profile, error)
	Delete(ctx context.Context, id string) error
	UpdatePreferences(ctx context.Context, id string, in profileuc.PreferencesInput) (domprof.Profile, error)
}

type batchUseCase interface {
	Upsert(ctx context.Context, items []profileuc.Input) []batchuc.Result
}

type matchingUseCase interface {
	ComputeMatches(ctx context.Context, requesterID string) (match.Ranking, error)
}

// Client is the matchmaker SDK entry point.
type Client struct {
	store    db.Store
	profiles profileUseCase
	batch    batchUseCase
	matching matchingUseCase
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("matchmaker: database address required (use WithRedis or WithValkey)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("matchmaker: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis", "valkey":
		s, err := dbredis.NewStore(dbredis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			ClientName: "matchmaker-sdk",
		})
		if err != nil {
			return nil, fmt.Errorf("matchmaker: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("matchmaker: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	mcfg := matchinguc.DefaultConfig()
	if cfg.dimensions > 0 {
		mcfg.Dimensions = cfg.dimensions
	}
	if cfg.weights != nil {
		mcfg.Weights = cfg.weights.toInternal()
	}

	var extractor matchinguc.Extractor = tasteuc.NewHashExtractor(mcfg.Dimensions)
	if cfg.extractor != nil {
		extractor = &extractorAdapter{inner: cfg.extractor}
		// A custom extractor decides its own length.
		mcfg.Dimensions = 0
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	repo := profilerepo.New(store)
	profiles := profileuc.New(repo)
	return &Client{
		store:    store,
		profiles: profiles,
		batch:    batchuc.New(profiles, profiles),
		matching: matchinguc.New(repo, extractor, mcfg, logger),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// UpsertUser validates and stores p, replacing any previous version.
// An empty ID is generated. Reports whether the user was created.
func (c *Client) UpsertUser(ctx context.Context, p Profile) (Profile, bool, error) {
	saved, created, err := c.profiles.Upsert(ctx, p.toInput())
	if err != nil {
		return Profile{}, false, fmt.Errorf("upsert user: %w", err)
	}
	return profileFromDomain(&saved), created, nil
}

// UpsertUsers stores up to 100 users, reporting each one in order.
// A failed item does not stop the others unless the store is unavailable.
func (c *Client) UpsertUsers(ctx context.Context, users []Profile) []BatchResult {
	inputs := make([]profileuc.Input, len(users))
	for i := range users {
		inputs[i] = users[i].toInput()
	}
	results := c.batch.Upsert(ctx, inputs)
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult(r)
	}
	return out
}

// GetUser returns the user with the given id.
func (c *Client) GetUser(ctx context.Context, id string) (Profile, error) {
	p, err := c.profiles.Get(ctx, id)
	if err != nil {
		return Profile{}, fmt.Errorf("get user: %w", err)
	}
	return profileFromDomain(&p), nil
}

// ListUsers returns every stored user.
func (c *Client) ListUsers(ctx context.Context) ([]Profile, error) {
	ps, err := c.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]Profile, len(ps))
	for i := range ps {
		out[i] = profileFromDomain(&ps[i])
	}
	return out, nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := c.profiles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// SetPreferences replaces the matching preferences of a user.
func (c *Client) SetPreferences(ctx context.Context, id string, prefs Preferences) (Profile, error) {
	p, err := c.profiles.UpdatePreferences(ctx, id, prefs.toInput())
	if err != nil {
		return Profile{}, fmt.Errorf("set preferences: %w", err)
	}
	return profileFromDomain(&p), nil
}

// Matches ranks every other user for the requester.
func (c *Client) Matches(ctx context.Context, requesterID string) (Ranking, error) {
	r, err := c.matching.ComputeMatches(ctx, requesterID)
	if err != nil {
		return Ranking{}, fmt.Errorf("matches: %w", err)
	}
	return rankingFromDomain(r), nil
}
