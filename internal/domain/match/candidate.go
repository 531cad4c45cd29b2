// Package match holds the result types of a matching request.
package match

import "github.com/kailas-cloud/matchmaker/internal/domain/profile"

// Breakdown exposes the individual score terms.
type Breakdown struct {
	Age      float64
	Location float64
	Gender   float64
	Taste    float64
}

// Total sums the terms. No normalisation or clamping is applied.
func (b Breakdown) Total() float64 {
	return b.Age + b.Location + b.Gender + b.Taste
}

// Candidate is a ranked entry. Only compatible candidates carry a score.
type Candidate struct {
	Profile       profile.Profile
	Score         float64
	Scored        bool
	Breakdown     Breakdown
	TasteFallback bool
}

// ScoredCandidate builds a scored candidate from its breakdown.
func ScoredCandidate(p profile.Profile, b Breakdown, tasteFallback bool) Candidate {
	return Candidate{
		Profile:       p,
		Score:         b.Total(),
		Scored:        true,
		Breakdown:     b,
		TasteFallback: tasteFallback,
	}
}

// Unscored builds an entry of the other partition.
func Unscored(p profile.Profile) Candidate {
	return Candidate{Profile: p}
}

// Ranking is the ordered match list. The first CompatibleCount items are the
// compatible partition sorted by descending score; the rest keep store order.
type Ranking struct {
	Items           []Candidate
	CompatibleCount int
}

// Compatible returns the scored prefix.
func (r Ranking) Compatible() []Candidate {
	return r.Items[:r.CompatibleCount]
}

// Others returns the unscored suffix.
func (r Ranking) Others() []Candidate {
	return r.Items[r.CompatibleCount:]
}

// Len returns the number of ranked entries.
func (r Ranking) Len() int { return len(r.Items) }
