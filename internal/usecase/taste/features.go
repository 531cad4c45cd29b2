package taste

import (
	"slices"
	"strings"

	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

// FeatureText renders the taste-relevant parts of a profile as one line of text.
// Interests are sorted so the text does not depend on input order.
func FeatureText(p domprof.Profile) string {
	var b strings.Builder
	if interests := sortedInterests(p); len(interests) > 0 {
		b.WriteString("관심사: ")
		b.WriteString(strings.Join(interests, ", "))
	}
	if bio := strings.TrimSpace(p.Bio()); bio != "" {
		if b.Len() > 0 {
			b.WriteString(". ")
		}
		b.WriteString("소개: ")
		b.WriteString(bio)
	}
	return b.String()
}

func sortedInterests(p domprof.Profile) []string {
	in := p.Interests()
	for i := range in {
		in[i] = strings.ToLower(in[i])
	}
	slices.Sort(in)
	return in
}
