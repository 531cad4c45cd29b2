package profile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/matchmaker/internal/db"
	"github.com/kailas-cloud/matchmaker/internal/domain"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

// store is the consumer interface for profiles (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HReplace(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores profiles as hashes under {prefix}user:{id}.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert replaces the stored profile. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domprof.Profile) (bool, error) {
	key := userKey(p.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, storeErr(fmt.Sprintf("check exists %s", key), err)
	}

	if err := r.store.HReplace(ctx, key, buildHashFields(p)); err != nil {
		return false, storeErr(fmt.Sprintf("replace %s", key), err)
	}
	return !exists, nil
}

// Get returns a profile by id.
func (r *Repo) Get(ctx context.Context, id string) (domprof.Profile, error) {
	key := userKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domprof.Profile{}, storeErr(fmt.Sprintf("hgetall %s", key), err)
	}
	if len(m) == 0 {
		return domprof.Profile{}, domain.ErrUserNotFound
	}
	return parseHashFields(id, m), nil
}

// List returns every stored profile ordered by id.
// Keys removed between SCAN and HGETALL are skipped.
func (r *Repo) List(ctx context.Context) ([]domprof.Profile, error) {
	keys, err := r.store.Scan(ctx, userKey("*"))
	if err != nil {
		return nil, storeErr("scan users", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, storeErr("load users", err)
	}

	out := make([]domprof.Profile, 0, len(keys))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		out = append(out, parseHashFields(extractUserID(keys[i]), m))
	}
	return out, nil
}

// Delete removes a profile.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := userKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return storeErr(fmt.Sprintf("check exists %s", key), err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return storeErr(fmt.Sprintf("del %s", key), err)
	}
	return nil
}

// SavePreferences overwrites only the preference fields of a stored profile.
func (r *Repo) SavePreferences(ctx context.Context, id string, prefs domprof.Preferences) error {
	key := userKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return storeErr(fmt.Sprintf("check exists %s", key), err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	if err := r.store.HSet(ctx, key, buildPreferenceFields(prefs)); err != nil {
		return storeErr(fmt.Sprintf("hset preferences %s", key), err)
	}
	if unset := unsetBoundFields(prefs); len(unset) > 0 {
		if err := r.store.HDel(ctx, key, unset...); err != nil {
			return storeErr(fmt.Sprintf("hdel preferences %s", key), err)
		}
	}
	return nil
}

// storeErr marks connection failures as ErrStoreUnavailable so callers can
// tell an outage from a rejected command.
func storeErr(msg string, err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func userKey(id string) string {
	return domain.KeyPrefix + "user:" + id
}

func extractUserID(key string) string {
	return strings.TrimPrefix(key, domain.KeyPrefix+"user:")
}
