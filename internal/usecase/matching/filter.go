package matching

import domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"

// Partition splits pool into the candidates the requester's preferences
// accept and everyone else. Both slices keep pool order and never contain
// the requester.
func Partition(requester domprof.Profile, pool []domprof.Profile) (compatible, other []domprof.Profile) {
	prefs := requester.Preferences()
	compatible = make([]domprof.Profile, 0, len(pool))
	other = make([]domprof.Profile, 0, len(pool))

	for _, c := range pool {
		if c.ID() == requester.ID() {
			continue
		}
		if prefs.AcceptsGender(c.Gender()) && prefs.AcceptsAge(c.Age()) && prefs.AcceptsLocation(c.Location()) {
			compatible = append(compatible, c)
		} else {
			other = append(other, c)
		}
	}
	return compatible, other
}
