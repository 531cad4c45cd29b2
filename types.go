package matchmaker

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	domtaste "github.com/kailas-cloud/matchmaker/internal/domain/taste"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
	profileuc "github.com/kailas-cloud/matchmaker/internal/usecase/profile"
)

// AnyGender is the preferred gender that accepts every candidate.
const AnyGender = domprof.WildcardGender

// Profile is a user as stored by the service.
type Profile struct {
	ID          string
	Name        string
	Age         int
	Gender      string
	Location    string
	Bio         string
	Interests   []string
	Preferences Preferences
}

// Preferences filter the candidates a user wants to see.
// Nil age bounds are unbounded; an empty Gender on save means AnyGender.
type Preferences struct {
	Gender   string
	AgeMin   *int
	AgeMax   *int
	Location string
}

// Breakdown holds the individual score terms of a compatible match.
type Breakdown struct {
	Age      float64
	Location float64
	Gender   float64
	Taste    float64
}

// Match is one ranked entry. Score and Breakdown are zero when Scored is false.
type Match struct {
	Profile       Profile
	Score         float64
	Scored        bool
	Breakdown     Breakdown
	TasteFallback bool
}

// Ranking is the result of Matches: compatible users by descending score,
// then the remaining users in store order.
type Ranking struct {
	Items           []Match
	CompatibleCount int
}

// Compatible returns the scored prefix of the ranking.
func (r Ranking) Compatible() []Match { return r.Items[:r.CompatibleCount] }

// Others returns the unscored suffix of the ranking.
func (r Ranking) Others() []Match { return r.Items[r.CompatibleCount:] }

// BatchResult is the outcome of one UpsertUsers item.
type BatchResult struct {
	ID      string
	Created bool
	Err     error
}

// Weights are the maximum contributions of each score term.
type Weights struct {
	Age      float64
	Location float64
	Gender   float64
	Taste    float64
}

// Extractor derives a taste vector from a profile. All vectors returned by one
// extractor must have the same length.
type Extractor interface {
	Extract(ctx context.Context, p Profile) ([]float64, error)
}

// extractorAdapter lets a public Extractor serve the matching service.
type extractorAdapter struct {
	inner Extractor
}

func (a *extractorAdapter) Extract(ctx context.Context, p domprof.Profile) (domtaste.Vector, error) {
	v, err := a.inner.Extract(ctx, profileFromDomain(&p))
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return domtaste.Vector(v), nil
}

func (p *Profile) toInput() profileuc.Input {
	return profileuc.Input{
		ID:          p.ID,
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		Location:    p.Location,
		Bio:         p.Bio,
		Interests:   p.Interests,
		Preferences: p.Preferences.toInput(),
	}
}

func (p Preferences) toInput() profileuc.PreferencesInput {
	return profileuc.PreferencesInput{
		Gender:   p.Gender,
		AgeMin:   p.AgeMin,
		AgeMax:   p.AgeMax,
		Location: p.Location,
	}
}

func profileFromDomain(p *domprof.Profile) Profile {
	prefs := p.Preferences()
	out := Profile{
		ID:        p.ID(),
		Name:      p.Name(),
		Age:       p.Age(),
		Gender:    p.Gender(),
		Location:  p.Location(),
		Bio:       p.Bio(),
		Interests: p.Interests(),
		Preferences: Preferences{
			Gender:   prefs.Gender(),
			Location: prefs.Location(),
		},
	}
	if v, ok := prefs.AgeMin(); ok {
		out.Preferences.AgeMin = &v
	}
	if v, ok := prefs.AgeMax(); ok {
		out.Preferences.AgeMax = &v
	}
	return out
}

func rankingFromDomain(r match.Ranking) Ranking {
	items := make([]Match, len(r.Items))
	for i := range r.Items {
		c := &r.Items[i]
		items[i] = Match{
			Profile:       profileFromDomain(&c.Profile),
			Score:         c.Score,
			Scored:        c.Scored,
			Breakdown:     Breakdown(c.Breakdown),
			TasteFallback: c.TasteFallback,
		}
	}
	return Ranking{Items: items, CompatibleCount: r.CompatibleCount}
}

func (w Weights) toInternal() matchinguc.Weights {
	return matchinguc.Weights{Age: w.Age, Location: w.Location, Gender: w.Gender, Taste: w.Taste}
}
