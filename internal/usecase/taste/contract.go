package taste

import (
	"context"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
)

// Extractor derives a taste vector from a profile.
type Extractor interface {
	Extract(ctx context.Context, p domprof.Profile) (domtaste.Vector, error)
}

// Embedder vectorizes feature text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
