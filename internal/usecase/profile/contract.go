package profile

import (
	"context"

	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

// Repository defines the storage contract for profiles.
type Repository interface {
	Upsert(ctx context.Context, p *domprof.Profile) (bool, error)
	Get(ctx context.Context, id string) (domprof.Profile, error)
	List(ctx context.Context) ([]domprof.Profile, error)
	Delete(ctx context.Context, id string) error
	SavePreferences(ctx context.Context, id string, prefs domprof.Preferences) error
}
