package matching

import (
	"context"

	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
)

// ProfileReader is the read side of the profile store.
type ProfileReader interface {
	Get(ctx context.Context, id string) (domprof.Profile, error)
	List(ctx context.Context) ([]domprof.Profile, error)
}

// Extractor derives a taste vector from a profile.
type Extractor interface {
	Extract(ctx context.Context, p domprof.Profile) (domtaste.Vector, error)
}
