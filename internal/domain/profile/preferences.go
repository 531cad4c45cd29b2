package profile

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

// WildcardGender is the preferred-gender value that accepts every candidate.
const WildcardGender = "상관없음"

// wildcardAliases are accepted on input and normalised to WildcardGender.
var wildcardAliases = map[string]struct{}{
	"any":          {},
	"*":            {},
	WildcardGender: {},
}

// MaxAge bounds preference values accepted on save.
const MaxAge = 150

// Preferences are the requester-side matching constraints.
// Absent age bounds are unbounded on that side; an empty location accepts any location.
type Preferences struct {
	gender   string
	ageMin   *int
	ageMax   *int
	location string
}

// NewPreferences validates and creates matching preferences (save boundary).
func NewPreferences(gender string, ageMin, ageMax *int, location string) (Preferences, error) {
	gender = strings.TrimSpace(gender)
	if gender == "" {
		return Preferences{}, fmt.Errorf("%w: preferred gender is required", domain.ErrInvalidPreferences)
	}
	if ageMin != nil && (*ageMin < 0 || *ageMin > MaxAge) {
		return Preferences{}, fmt.Errorf("%w: preferred_age_min must be between 0 and %d", domain.ErrInvalidPreferences, MaxAge)
	}
	if ageMax != nil && (*ageMax < 0 || *ageMax > MaxAge) {
		return Preferences{}, fmt.Errorf("%w: preferred_age_max must be between 0 and %d", domain.ErrInvalidPreferences, MaxAge)
	}
	if ageMin != nil && ageMax != nil && *ageMin > *ageMax {
		return Preferences{}, fmt.Errorf(
			"%w: preferred_age_min %d is greater than preferred_age_max %d",
			domain.ErrInvalidPreferences, *ageMin, *ageMax,
		)
	}
	return ReconstructPreferences(gender, ageMin, ageMax, strings.TrimSpace(location)), nil
}

// ReconstructPreferences creates Preferences without validation (storage hydration).
// An empty gender is treated as the wildcard.
func ReconstructPreferences(gender string, ageMin, ageMax *int, location string) Preferences {
	return Preferences{
		gender:   NormalizeGender(gender),
		ageMin:   cloneInt(ageMin),
		ageMax:   cloneInt(ageMax),
		location: location,
	}
}

// NormalizeGender maps wildcard aliases and the empty string to WildcardGender.
func NormalizeGender(g string) string {
	trimmed := strings.TrimSpace(g)
	if trimmed == "" {
		return WildcardGender
	}
	if _, ok := wildcardAliases[strings.ToLower(trimmed)]; ok {
		return WildcardGender
	}
	return trimmed
}

// Gender returns the preferred gender tag (possibly WildcardGender).
func (p Preferences) Gender() string { return p.gender }

// AgeMin returns the lower age bound and whether it is set.
func (p Preferences) AgeMin() (int, bool) {
	if p.ageMin == nil {
		return 0, false
	}
	return *p.ageMin, true
}

// AgeMax returns the upper age bound and whether it is set.
func (p Preferences) AgeMax() (int, bool) {
	if p.ageMax == nil {
		return 0, false
	}
	return *p.ageMax, true
}

// Location returns the preferred location; empty means any.
func (p Preferences) Location() string { return p.location }

// AnyGender reports whether the gender preference is the wildcard.
// The zero Preferences value counts as the wildcard.
func (p Preferences) AnyGender() bool { return p.gender == "" || p.gender == WildcardGender }

// AcceptsGender reports whether a candidate of gender g satisfies the preference.
func (p Preferences) AcceptsGender(g string) bool {
	return p.AnyGender() || g == p.gender
}

// AcceptsAge reports whether age lies within the preferred bounds (inclusive).
// With min > max no age is accepted.
func (p Preferences) AcceptsAge(age int) bool {
	if p.ageMin != nil && age < *p.ageMin {
		return false
	}
	if p.ageMax != nil && age > *p.ageMax {
		return false
	}
	return true
}

// AcceptsLocation reports whether loc satisfies the location preference.
func (p Preferences) AcceptsLocation(loc string) bool {
	return p.location == "" || loc == p.location
}

// InvertedRange reports whether both bounds are set and min > max.
func (p Preferences) InvertedRange() bool {
	return p.ageMin != nil && p.ageMax != nil && *p.ageMin > *p.ageMax
}

// IntPtr is a helper for optional age bounds.
func IntPtr(v int) *int { return &v }

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
