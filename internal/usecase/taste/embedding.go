package taste

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
)

// EmbeddingExtractor embeds the profile feature text and folds the embedding
// into dim components in [0,1].
type EmbeddingExtractor struct {
	embedder Embedder
	dim      int
	fallback *HashExtractor
}

// NewEmbeddingExtractor creates the extractor. Profiles with no feature text
// are delegated to a HashExtractor of the same width.
func NewEmbeddingExtractor(embedder Embedder, dim int) *EmbeddingExtractor {
	if dim <= 0 {
		dim = domtaste.DefaultDimensions
	}
	return &EmbeddingExtractor{embedder: embedder, dim: dim, fallback: NewHashExtractor(dim)}
}

// Extract implements Extractor.
func (e *EmbeddingExtractor) Extract(ctx context.Context, p domprof.Profile) (domtaste.Vector, error) {
	text := FeatureText(p)
	if text == "" {
		return e.fallback.Extract(ctx, p)
	}

	res, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed profile %s: %w", p.ID(), err)
	}
	return project(res.Embedding, e.dim)
}

// project sums emb over dim contiguous buckets and min-max rescales the
// bucket sums into [0,1]. A flat embedding maps to 0.5 everywhere.
func project(emb []float32, dim int) (domtaste.Vector, error) {
	if len(emb) < dim {
		return nil, fmt.Errorf("%w: embedding has %d components, need at least %d",
			domain.ErrVectorDimMismatch, len(emb), dim)
	}
	out := make(domtaste.Vector, dim)
	for i := range dim {
		lo, hi := i*len(emb)/dim, (i+1)*len(emb)/dim
		for _, x := range emb[lo:hi] {
			out[i] += float64(x)
		}
	}

	lo, hi := slices.Min(out), slices.Max(out)
	for i := range out {
		if hi == lo {
			out[i] = 0.5
			continue
		}
		out[i] = (out[i] - lo) / (hi - lo)
	}
	return out, nil
}
