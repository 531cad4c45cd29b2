// Package budget persists embedding token counters so spend survives restarts.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/matchmaker/internal/db"
)

// kv is the consumer interface for counter operations (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Counter keeps per-period token totals. Daily keys (":daily:") live for
// dailyTTL, every other key for monthlyTTL.
type Counter struct {
	kv         kv
	dailyTTL   time.Duration
	monthlyTTL time.Duration
}

// NewCounter creates a token counter on top of the key-value store.
func NewCounter(s kv, dailyTTL, monthlyTTL time.Duration) *Counter {
	return &Counter{kv: s, dailyTTL: dailyTTL, monthlyTTL: monthlyTTL}
}

// Add increments the counter and arms its expiry on first write.
func (c *Counter) Add(ctx context.Context, key string, tokens int64) error {
	if err := c.kv.IncrBy(ctx, key, tokens); err != nil {
		return fmt.Errorf("add tokens %s: %w", key, err)
	}
	// NX keeps the first expiry so later writes do not extend the window.
	if err := c.kv.Expire(ctx, key, c.ttl(key), true); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Load returns the stored total, 0 when the key is absent.
func (c *Counter) Load(ctx context.Context, key string) (int64, error) {
	raw, err := c.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("load tokens %s: %w", key, err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tokens %s: %w", key, err)
	}
	return n, nil
}

func (c *Counter) ttl(key string) time.Duration {
	if strings.Contains(key, ":daily:") {
		return c.dailyTTL
	}
	return c.monthlyTTL
}
