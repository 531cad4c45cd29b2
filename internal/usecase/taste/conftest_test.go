package taste

import (
	"context"
	"os"
	"testing"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

func user(id string, interests []string, bio string) domprof.Profile {
	return domprof.Reconstruct(id, "", 30, "남자", "서울", bio, interests, domprof.Preferences{})
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	texts   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	return m.embedFn(ctx, text)
}

type mockExtractor struct {
	extractFn func(ctx context.Context, p domprof.Profile) (domtaste.Vector, error)
	calls     int
}

func (m *mockExtractor) Extract(ctx context.Context, p domprof.Profile) (domtaste.Vector, error) {
	m.calls++
	return m.extractFn(ctx, p)
}
