// Package batch applies profile writes in bulk with per-item error reporting.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	profileuc "github.com/kailas-cloud/matchmaker/internal/usecase/profile"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Result is the outcome of one batch item.
type Result struct {
	ID      string
	Created bool
	Err     error
}

// OK reports whether the item was applied.
func (r Result) OK() bool { return r.Err == nil }

// Service handles batch profile operations.
type Service struct {
	profiles     ProfileUpserter
	del          ProfileDeleter
	maxBatchSize int
}

// New creates a batch service.
func New(profiles ProfileUpserter, del ProfileDeleter) *Service {
	return &Service{profiles: profiles, del: del, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert stores profiles one by one. An unavailable store fails the item and
// every item after it without further writes; other errors only fail their item.
func (s *Service) Upsert(ctx context.Context, items []profileuc.Input) []Result {
	results := make([]Result, len(items))

	if err := s.checkSize(len(items)); err != nil {
		for i := range items {
			results[i] = Result{ID: items[i].ID, Err: err}
		}
		return results
	}

	for i := range items {
		p, created, err := s.profiles.Upsert(ctx, items[i])
		if err != nil {
			results[i] = Result{ID: items[i].ID, Err: err}
			if cascades(ctx, err) {
				for j := i + 1; j < len(items); j++ {
					results[j] = Result{ID: items[j].ID, Err: fmt.Errorf("skipped: %w", err)}
				}
				return results
			}
			continue
		}
		results[i] = Result{ID: p.ID(), Created: created}
	}
	return results
}

// Delete removes profiles by id. Missing profiles fail with domain.ErrUserNotFound.
func (s *Service) Delete(ctx context.Context, ids []string) []Result {
	results := make([]Result, len(ids))

	if err := s.checkSize(len(ids)); err != nil {
		for i, id := range ids {
			results[i] = Result{ID: id, Err: err}
		}
		return results
	}

	for i, id := range ids {
		if err := s.del.Delete(ctx, id); err != nil {
			results[i] = Result{ID: id, Err: err}
			if cascades(ctx, err) {
				for j := i + 1; j < len(ids); j++ {
					results[j] = Result{ID: ids[j], Err: fmt.Errorf("skipped: %w", err)}
				}
				return results
			}
			continue
		}
		results[i] = Result{ID: id}
	}
	return results
}

func (s *Service) checkSize(n int) error {
	if n > s.maxBatchSize {
		return fmt.Errorf("%w: batch size exceeds %d", domain.ErrInvalidProfile, s.maxBatchSize)
	}
	return nil
}

// cascades reports whether err makes the rest of the batch pointless.
func cascades(ctx context.Context, err error) bool {
	return errors.Is(err, domain.ErrStoreUnavailable) || ctx.Err() != nil
}
