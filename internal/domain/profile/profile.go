package profile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxInterests caps the number of interest tags stored per profile.
const MaxInterests = 32

// Profile is the user profile aggregate (immutable value object).
// The id is fixed for the lifetime of the user; everything else is replaced wholesale on save.
type Profile struct {
	id        string
	name      string
	age       int
	gender    string
	location  string
	bio       string
	interests []string
	prefs     Preferences
}

// New validates and creates a Profile.
// ID: ^[a-zA-Z0-9_-]+$, 1-128 chars. Age: 1..MaxAge. Interests are trimmed and de-duplicated.
func New(
	id, name string, age int, gender, location, bio string,
	interests []string, prefs Preferences,
) (Profile, error) {
	if id == "" {
		return Profile{}, fmt.Errorf("%w: user ID is required", domain.ErrInvalidProfile)
	}
	if len(id) > 128 {
		return Profile{}, fmt.Errorf("%w: user ID too long (max 128)", domain.ErrInvalidProfile)
	}
	if !idRegex.MatchString(id) {
		return Profile{}, fmt.Errorf("%w: user ID must be alphanumeric with underscores and hyphens", domain.ErrInvalidProfile)
	}
	if age <= 0 || age > MaxAge {
		return Profile{}, fmt.Errorf("%w: age must be between 1 and %d", domain.ErrInvalidProfile, MaxAge)
	}
	gender = strings.TrimSpace(gender)
	if gender == "" {
		return Profile{}, fmt.Errorf("%w: gender is required", domain.ErrInvalidProfile)
	}
	cleaned := NormalizeInterests(interests)
	if len(cleaned) > MaxInterests {
		return Profile{}, fmt.Errorf("%w: too many interests (max %d)", domain.ErrInvalidProfile, MaxInterests)
	}

	return Profile{
		id:        id,
		name:      strings.TrimSpace(name),
		age:       age,
		gender:    gender,
		location:  strings.TrimSpace(location),
		bio:       bio,
		interests: cleaned,
		prefs:     prefs,
	}, nil
}

// Reconstruct creates a Profile without validation (storage hydration).
func Reconstruct(
	id, name string, age int, gender, location, bio string,
	interests []string, prefs Preferences,
) Profile {
	return Profile{
		id: id, name: name, age: age, gender: gender, location: location, bio: bio,
		interests: cloneStrings(interests), prefs: prefs,
	}
}

// ID returns the user identifier.
func (p *Profile) ID() string { return p.id }

// Name returns the display name.
func (p *Profile) Name() string { return p.name }

// Age returns the age in years.
func (p *Profile) Age() int { return p.age }

// Gender returns the gender tag.
func (p *Profile) Gender() string { return p.gender }

// Location returns the home location label.
func (p *Profile) Location() string { return p.location }

// Bio returns the free-text introduction.
func (p *Profile) Bio() string { return p.bio }

// Interests returns a copy of the interest tags.
func (p *Profile) Interests() []string { return cloneStrings(p.interests) }

// Preferences returns the matching preferences.
func (p *Profile) Preferences() Preferences { return p.prefs }

// WithPreferences returns a copy with the given preferences.
func (p *Profile) WithPreferences(prefs Preferences) Profile {
	c := *p
	c.interests = cloneStrings(p.interests)
	c.prefs = prefs
	return c
}

// CheckScorable reports whether the profile carries the fields the scorer relies on.
// Stored profiles are hydrated without validation, so the matching engine checks each candidate.
func (p *Profile) CheckScorable() error {
	if p.id == "" {
		return fmt.Errorf("%w: empty user ID", domain.ErrInvalidProfile)
	}
	if p.age <= 0 {
		return fmt.Errorf("%w: non-positive age %d", domain.ErrInvalidProfile, p.age)
	}
	return nil
}

// ParseInterests splits a comma separated list ("여행, 운동,독서") into normalised tags.
func ParseInterests(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeInterests(strings.Split(raw, ","))
}

// NormalizeInterests trims, drops empty entries and removes duplicates preserving first occurrence.
func NormalizeInterests(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
