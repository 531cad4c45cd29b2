package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
	"github.com/kailas-cloud/matchmaker/internal/logger"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
	tasteuc "github.com/kailas-cloud/matchmaker/internal/usecase/taste"
)

// Config tunes a matching request.
type Config struct {
	// StoreTimeout bounds each profile store read. Zero means no bound.
	StoreTimeout time.Duration
	// TasteTimeout bounds each taste extraction. Zero means no bound.
	TasteTimeout time.Duration
	// MaxConcurrency caps in-flight extractions. Zero or less means unlimited.
	MaxConcurrency int
	// Dimensions is the expected taste vector length. Zero skips the check.
	Dimensions int
	Weights    Weights
}

// DefaultConfig returns the stock request settings.
func DefaultConfig() Config {
	return Config{
		StoreTimeout:   2 * time.Second,
		TasteTimeout:   500 * time.Millisecond,
		MaxConcurrency: 16,
		Dimensions:     domtaste.DefaultDimensions,
		Weights:        DefaultWeights(),
	}
}

// Service computes ranked match lists.
type Service struct {
	store     ProfileReader
	extractor Extractor
	scorer    Scorer
	cfg       Config
	logger    *zap.Logger
}

// New creates a matching service.
func New(store ProfileReader, extractor Extractor, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		scorer:    NewScorer(cfg.Weights),
		cfg:       cfg,
		logger:    logger,
	}
}

// tasteResult is one extraction outcome. err is nil when vec is usable.
type tasteResult struct {
	vec domtaste.Vector
	err error
}

// ComputeMatches ranks every other user for requesterID: compatible
// candidates by descending score, then the rest unscored in store order.
// Taste failures degrade to rule-only scores. A cancelled ctx returns
// ctx.Err() and no ranking.
func (s *Service) ComputeMatches(ctx context.Context, requesterID string) (match.Ranking, error) {
	start := time.Now()
	ranking, err := s.computeMatches(ctx, requesterID)
	metrics.MatchDuration.Observe(time.Since(start).Seconds())
	metrics.MatchRequestsTotal.WithLabelValues(requestStatus(err)).Inc()
	if err != nil {
		return match.Ranking{}, err
	}
	metrics.MatchCandidates.WithLabelValues("compatible").Observe(float64(ranking.CompatibleCount))
	metrics.MatchCandidates.WithLabelValues("other").Observe(float64(len(ranking.Others())))
	return ranking, nil
}

func (s *Service) computeMatches(ctx context.Context, requesterID string) (match.Ranking, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("requester_id", requesterID))

	requester, err := s.getRequester(ctx, requesterID)
	if err != nil {
		return match.Ranking{}, err
	}
	pool, err := s.listPool(ctx)
	if err != nil {
		return match.Ranking{}, err
	}

	compatible, _ := Partition(requester, pool)
	if requester.Preferences().InvertedRange() {
		log.Debug("Requester age range is inverted, no compatible candidates")
	}

	// Malformed entries cannot be scored and are demoted before extraction.
	scorable := make([]domprof.Profile, 0, len(compatible))
	for _, c := range compatible {
		if err := c.CheckScorable(); err != nil {
			log.Warn("Demoting malformed candidate", zap.Error(domain.NewCandidateError(c.ID(), err)))
			continue
		}
		scorable = append(scorable, c)
	}

	reqTaste, tastes, err := s.extractAll(ctx, requester, scorable)
	if err != nil {
		return match.Ranking{}, err
	}
	if reqTaste.err == nil && s.cfg.Dimensions > 0 && reqTaste.vec.Dim() != s.cfg.Dimensions {
		reqTaste.err = fmt.Errorf("requester vector: %w: %d != %d",
			domain.ErrVectorDimMismatch, reqTaste.vec.Dim(), s.cfg.Dimensions)
	}
	if reqTaste.err != nil {
		log.Warn("Requester taste unavailable, scoring on attributes only", zap.Error(reqTaste.err))
	}

	scored := make([]match.Candidate, 0, len(scorable))
	kept := make(map[string]struct{}, len(scorable))
	for i, c := range scorable {
		cand, err := s.score(requester, c, reqTaste, tastes[i])
		if err != nil {
			log.Warn("Demoting unscorable candidate", zap.Error(err))
			continue
		}
		if cand.TasteFallback {
			reason := tasteuc.FallbackReason(firstErr(reqTaste.err, tastes[i].err))
			metrics.TasteFallbacksTotal.WithLabelValues(reason).Inc()
			if reqTaste.err == nil {
				log.Warn("Candidate taste unavailable, scoring on attributes only",
					zap.String("candidate_id", c.ID()), zap.String("reason", reason), zap.Error(tastes[i].err))
			}
		}
		scored = append(scored, cand)
		kept[c.ID()] = struct{}{}
	}

	// Others are rebuilt from the pool so demoted candidates keep store order.
	others := make([]domprof.Profile, 0, len(pool)-len(scored))
	for _, p := range pool {
		if p.ID() == requester.ID() {
			continue
		}
		if _, ok := kept[p.ID()]; ok {
			continue
		}
		others = append(others, p)
	}

	return Rank(scored, others), nil
}

// score returns a CandidateError when the candidate must be demoted.
func (s *Service) score(requester, c domprof.Profile, reqTaste, candTaste tasteResult) (match.Candidate, error) {
	if reqTaste.err != nil || candTaste.err != nil {
		return match.ScoredCandidate(c, s.scorer.RuleScore(requester, c), true), nil
	}
	bd, err := s.scorer.Score(requester, c, reqTaste.vec, candTaste.vec)
	if err != nil {
		return match.Candidate{}, domain.NewCandidateError(c.ID(), err)
	}
	return match.ScoredCandidate(c, bd, false), nil
}

func (s *Service) getRequester(ctx context.Context, id string) (domprof.Profile, error) {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()

	p, err := s.store.Get(sctx, id)
	if err != nil {
		return domprof.Profile{}, storeError(ctx, "get requester", err)
	}
	return p, nil
}

func (s *Service) listPool(ctx context.Context) ([]domprof.Profile, error) {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()

	pool, err := s.store.List(sctx)
	if err != nil {
		return nil, storeError(ctx, "list users", err)
	}
	return pool, nil
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.StoreTimeout)
	}
	return context.WithCancel(ctx)
}

// extractAll fetches the requester's and every candidate's taste vector
// concurrently. Extraction failures are recorded per slot; only
// cancellation of ctx fails the call.
func (s *Service) extractAll(
	ctx context.Context, requester domprof.Profile, candidates []domprof.Profile,
) (tasteResult, []tasteResult, error) {
	var reqTaste tasteResult
	tastes := make([]tasteResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.MaxConcurrency > 0 {
		g.SetLimit(s.cfg.MaxConcurrency)
	}

	g.Go(func() error {
		reqTaste = s.extract(gctx, requester)
		return nil
	})
	for i, c := range candidates {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err() //nolint:wrapcheck // context error is returned as-is
			}
			tastes[i] = s.extract(gctx, c)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return tasteResult{}, nil, err //nolint:wrapcheck // caller cancellation is returned as-is
	}
	return reqTaste, tastes, nil
}

func (s *Service) extract(ctx context.Context, p domprof.Profile) tasteResult {
	if s.cfg.TasteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TasteTimeout)
		defer cancel()
	}
	vec, err := s.extractor.Extract(ctx, p)
	if err != nil {
		return tasteResult{err: err}
	}
	return tasteResult{vec: vec}
}

// storeError maps a store failure. Caller cancellation wins; a timeout of
// the store's own deadline becomes domain.ErrStoreUnavailable.
func storeError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr //nolint:wrapcheck // caller cancellation is returned as-is
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requestStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
