// Package search decides when the paid external search actually runs and how
// its query is built. The decision couples the confirmation gate with a
// lexical cue in the generated reply; the gate alone never triggers spend.
package search

import (
	"regexp"
	"strings"

	gatex "github.com/gharmitra/gharmitra/agent/gate"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

// siteSuffix restricts results to the listings site.
const siteSuffix = "site:housing.com"

var searchCuePattern = regexp.MustCompile(`(?i)\b(?:search|find|looking|properties)\b`)

// ShouldTrigger reports whether this turn may invoke the paid search: the
// gate must pass AND the just-generated reply must carry a search-intent cue.
func ShouldTrigger(reqs statex.Requirements, reply string) bool {
	return gatex.ShouldSearch(reqs) && searchCuePattern.MatchString(reply)
}

// BuildQuery concatenates the filled slots in fixed order: property type,
// BHK, locality, city, budget, then the site restriction.
func BuildQuery(r statex.Requirements) string {
	parts := make([]string, 0, 6)
	if r.PropertyType != "" {
		parts = append(parts, r.PropertyType)
	}
	if r.BHK != "" {
		parts = append(parts, r.BHK)
	}
	if r.Locality != "" {
		parts = append(parts, r.Locality)
	}
	if r.City != "" {
		parts = append(parts, r.City)
	}
	if r.Budget != "" {
		parts = append(parts, r.Budget)
	}
	parts = append(parts, siteSuffix)
	return strings.Join(parts, " ")
}

// Refinement tokens keyed by complaint category. Multiple tokens stack when
// the accumulated feedback hits multiple categories.
var refinements = []struct {
	cues  []string
	token string
}{
	{cues: []string{"expensive", "costly", "price", "budget", "afford"}, token: "affordable budget"},
	{cues: []string{"location", "far", "area", "locality", "remote"}, token: "prime location central"},
	{cues: []string{"small", "space", "size", "cramped", "tiny"}, token: "spacious large"},
}

// Refine starts from the base requirements query and appends refinement
// tokens based on keyword scans over accumulated negative-feedback reasons.
func Refine(r statex.Requirements, negativeReasons []string) string {
	query := BuildQuery(r)
	if len(negativeReasons) == 0 {
		return query
	}

	combined := strings.ToLower(strings.Join(negativeReasons, " "))
	var extra []string
	for _, ref := range refinements {
		for _, cue := range ref.cues {
			if strings.Contains(combined, cue) {
				extra = append(extra, ref.token)
				break
			}
		}
	}
	if len(extra) == 0 {
		return query
	}

	// Keep the site restriction at the end.
	base := strings.TrimSuffix(query, " "+siteSuffix)
	return base + " " + strings.Join(extra, " ") + " " + siteSuffix
}
