package profile

import (
	"strconv"

	"github.com/goccy/go-json"

	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

// Hash field names of a stored profile.
const (
	fieldID           = "id"
	fieldName         = "name"
	fieldAge          = "age"
	fieldGender       = "gender"
	fieldLocation     = "location"
	fieldBio          = "bio"
	fieldInterests    = "interests"
	fieldPrefGender   = "pref_gender"
	fieldPrefAgeMin   = "pref_age_min"
	fieldPrefAgeMax   = "pref_age_max"
	fieldPrefLocation = "pref_location"
)

// buildHashFields flattens a profile into HSET field/value pairs.
// Absent age bounds are omitted rather than written as empty strings.
func buildHashFields(p *domprof.Profile) map[string]string {
	m := map[string]string{
		fieldID:        p.ID(),
		fieldName:      p.Name(),
		fieldAge:       strconv.Itoa(p.Age()),
		fieldGender:    p.Gender(),
		fieldLocation:  p.Location(),
		fieldBio:       p.Bio(),
		fieldInterests: encodeInterests(p.Interests()),
	}
	for k, v := range buildPreferenceFields(p.Preferences()) {
		m[k] = v
	}
	return m
}

func buildPreferenceFields(prefs domprof.Preferences) map[string]string {
	m := map[string]string{
		fieldPrefGender:   prefs.Gender(),
		fieldPrefLocation: prefs.Location(),
	}
	if v, ok := prefs.AgeMin(); ok {
		m[fieldPrefAgeMin] = strconv.Itoa(v)
	}
	if v, ok := prefs.AgeMax(); ok {
		m[fieldPrefAgeMax] = strconv.Itoa(v)
	}
	return m
}

// unsetBoundFields lists the bound fields to HDEL when prefs leave them absent.
func unsetBoundFields(prefs domprof.Preferences) []string {
	var fields []string
	if _, ok := prefs.AgeMin(); !ok {
		fields = append(fields, fieldPrefAgeMin)
	}
	if _, ok := prefs.AgeMax(); !ok {
		fields = append(fields, fieldPrefAgeMax)
	}
	return fields
}

// parseHashFields rebuilds a profile from HGETALL output without validation.
// Unparseable numbers become zero or absent, which the matching engine treats as malformed.
func parseHashFields(id string, m map[string]string) domprof.Profile {
	age, _ := strconv.Atoi(m[fieldAge])
	prefs := domprof.ReconstructPreferences(
		m[fieldPrefGender],
		parseOptionalInt(m, fieldPrefAgeMin),
		parseOptionalInt(m, fieldPrefAgeMax),
		m[fieldPrefLocation],
	)
	return domprof.Reconstruct(
		id, m[fieldName], age, m[fieldGender], m[fieldLocation], m[fieldBio],
		decodeInterests(m[fieldInterests]), prefs,
	)
}

func parseOptionalInt(m map[string]string, field string) *int {
	raw, ok := m[field]
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func encodeInterests(interests []string) string {
	if len(interests) == 0 {
		return "[]"
	}
	data, err := json.Marshal(interests)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeInterests(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
