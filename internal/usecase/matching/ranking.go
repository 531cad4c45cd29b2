package matching

import (
	"sort"

	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

// Rank orders scored candidates by descending score, ties keeping input
// order, and appends others unscored in their given order.
func Rank(scored []match.Candidate, others []domprof.Profile) match.Ranking {
	items := make([]match.Candidate, 0, len(scored)+len(others))
	items = append(items, scored...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	for _, p := range others {
		items = append(items, match.Unscored(p))
	}
	return match.Ranking{Items: items, CompatibleCount: len(scored)}
}
