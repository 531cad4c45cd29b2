package taste

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
)

// BreakerConfig configures the circuit breaker around an extractor.
type BreakerConfig struct {
	// FailureThreshold consecutive failures open the breaker. Zero disables the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests probes are let through while half-open.
	HalfOpenRequests uint32
	// Interval clears the closed-state counts periodically. Zero keeps them.
	Interval time.Duration
}

// Instrumented bounds each extraction with a timeout and a circuit breaker,
// and records outcome metrics. Every failure it returns wraps
// domain.ErrTasteUnavailable.
type Instrumented struct {
	inner   Extractor
	name    string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[domtaste.Vector]
	logger  *zap.Logger
}

// NewInstrumented wraps inner. name labels metrics and the breaker.
func NewInstrumented(inner Extractor, name string, timeout time.Duration, bc BreakerConfig, logger *zap.Logger) *Instrumented {
	i := &Instrumented{inner: inner, name: name, timeout: timeout, logger: logger}
	if bc.FailureThreshold > 0 {
		i.breaker = newBreaker(name, bc, logger)
	}
	return i
}

func newBreaker(name string, bc BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[domtaste.Vector] {
	metrics.TasteBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[domtaste.Vector](gobreaker.Settings{
		Name:        name,
		MaxRequests: max(bc.HalfOpenRequests, 1),
		Interval:    bc.Interval,
		Timeout:     bc.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.FailureThreshold
		},
		// A caller that gave up says nothing about the extractor's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.TasteBreakerState.WithLabelValues(name).Set(stateValue(to))
			logger.Warn("Taste extractor breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Extract implements Extractor.
func (i *Instrumented) Extract(ctx context.Context, p domprof.Profile) (domtaste.Vector, error) {
	start := time.Now()
	vec, err := i.execute(ctx, p)
	metrics.TasteExtractionDuration.WithLabelValues(i.name).Observe(time.Since(start).Seconds())

	if err != nil {
		reason := FallbackReason(err)
		metrics.TasteExtractionsTotal.WithLabelValues(i.name, reason).Inc()
		i.logger.Debug("Taste extraction failed",
			zap.String("extractor", i.name),
			zap.String("user_id", p.ID()),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return nil, fmt.Errorf("extract taste for %s: %w: %w", p.ID(), domain.ErrTasteUnavailable, err)
	}

	metrics.TasteExtractionsTotal.WithLabelValues(i.name, "success").Inc()
	return vec, nil
}

// State reports the breaker state, "disabled" without a breaker.
func (i *Instrumented) State() string {
	if i.breaker == nil {
		return "disabled"
	}
	return i.breaker.State().String()
}

// HealthCheck fails while the breaker is open.
func (i *Instrumented) HealthCheck(_ context.Context) error {
	if i.breaker != nil && i.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", i.name, gobreaker.ErrOpenState)
	}
	return nil
}

func (i *Instrumented) execute(ctx context.Context, p domprof.Profile) (domtaste.Vector, error) {
	call := func() (domtaste.Vector, error) {
		cctx := ctx
		if i.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, i.timeout)
			defer cancel()
		}
		return i.inner.Extract(cctx, p)
	}
	if i.breaker == nil {
		return call()
	}
	return i.breaker.Execute(call) //nolint:wrapcheck // wrapped by Extract
}

// FallbackReason classifies an extraction error for metrics and logs.
func FallbackReason(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return "quota"
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return "dimension"
	default:
		return "error"
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
