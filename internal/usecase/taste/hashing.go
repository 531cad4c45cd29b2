package taste

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"

	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
)

// HashExtractor is a deterministic pseudo-embedding. Every interest tag is
// hashed to a point in [0,1]^dim and the profile vector is their mean, so
// profiles sharing interests point in similar directions. A profile without
// interests hashes its id instead, which keeps the vector stable and non-zero.
type HashExtractor struct {
	dim int
}

// NewHashExtractor creates an extractor producing vectors of length dim.
func NewHashExtractor(dim int) *HashExtractor {
	if dim <= 0 {
		dim = domtaste.DefaultDimensions
	}
	return &HashExtractor{dim: dim}
}

// Dimensions returns the output vector length.
func (h *HashExtractor) Dimensions() int { return h.dim }

// Extract implements Extractor. It never fails except on a cancelled context.
func (h *HashExtractor) Extract(ctx context.Context, p domprof.Profile) (domtaste.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error is returned as-is
	}

	tokens := sortedInterests(p)
	if len(tokens) == 0 {
		tokens = []string{"id:" + p.ID()}
	}

	out := make(domtaste.Vector, h.dim)
	for _, tok := range tokens {
		for i, x := range hashPoint(tok, h.dim) {
			out[i] += x
		}
	}
	n := float64(len(tokens))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}

// hashPoint expands sha256(token) into dim uniform values in [0,1].
func hashPoint(token string, dim int) []float64 {
	out := make([]float64, 0, dim)
	var block [sha256.Size]byte
	for counter := uint32(0); len(out) < dim; counter++ {
		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], counter)
		block = sha256.Sum256(append([]byte(token), ctr[:]...))
		for off := 0; off+4 <= len(block) && len(out) < dim; off += 4 {
			out = append(out, float64(binary.BigEndian.Uint32(block[off:]))/math.MaxUint32)
		}
	}
	return out
}
