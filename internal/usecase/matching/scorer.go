package matching

import (
	"math"

	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
)

// Weights are the score term magnitudes.
type Weights struct {
	// Age is the proximity score at zero age difference; each year costs one point.
	Age      float64 `yaml:"age"`
	Location float64 `yaml:"location"`
	Gender   float64 `yaml:"gender"`
	// Taste multiplies the cosine similarity of the taste vectors.
	Taste float64 `yaml:"taste"`
}

// DefaultWeights returns the stock weights: 100 / 50 / 30 / 50.
func DefaultWeights() Weights {
	return Weights{Age: 100, Location: 50, Gender: 30, Taste: 50}
}

// Scorer computes the blended attribute and taste score.
type Scorer struct {
	w Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) Scorer {
	return Scorer{w: w}
}

// Score returns the full breakdown. A vector length mismatch is returned as
// domain.ErrVectorDimMismatch; a zero vector contributes a taste term of 0.
func (s Scorer) Score(requester, candidate domprof.Profile, a, b domtaste.Vector) (match.Breakdown, error) {
	sim, err := domtaste.CosineSimilarity(a, b)
	if err != nil {
		return match.Breakdown{}, err //nolint:wrapcheck // caller attaches the candidate id
	}
	bd := s.RuleScore(requester, candidate)
	bd.Taste = sim * s.w.Taste
	return bd, nil
}

// RuleScore returns the attribute terms only.
func (s Scorer) RuleScore(requester, candidate domprof.Profile) match.Breakdown {
	var bd match.Breakdown

	diff := math.Abs(float64(requester.Age() - candidate.Age()))
	bd.Age = math.Max(0, s.w.Age-diff)

	if requester.Location() == candidate.Location() {
		bd.Location = s.w.Location
	}
	if requester.Preferences().AcceptsGender(candidate.Gender()) {
		bd.Gender = s.w.Gender
	}
	return bd
}
