// Package extract turns free-text utterances into structured property
// requirements. Extraction is deterministic pattern matching over normalized
// text: a total function with no side effects, and first-write-wins per slot,
// so replaying an utterance is always a fixed point.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	statex "github.com/gharmitra/gharmitra/agent/state"
)

var (
	buyPattern  = regexp.MustCompile(`\b(?:buy|purchase|buying|purchasing)\b`)
	rentPattern = regexp.MustCompile(`\b(?:rent|rental|renting)\b`)

	bhkPattern = regexp.MustCompile(`\b(\d+)\s*(?:bhk|bedrooms?)\b`)

	localityPattern = regexp.MustCompile(`\b(?:locality|area|near)\s+(?:is\s+)?([a-z]+(?:\s+[a-z]+){0,2})`)
)

// Budget patterns are applied in this exact order; the first match wins.
// Fractional values are truncated to the integer part, and a bare numeric
// mention defaults to Lakh.
var budgetPatterns = []struct {
	re   *regexp.Regexp
	unit string
}{
	{regexp.MustCompile(`\b(\d+)(?:\.\d+)?\s*(?:crores?|cr)\b`), "Crore"},
	{regexp.MustCompile(`\b(\d+)(?:\.\d+)?\s*(?:lakhs?|lacs?)\b`), "Lakh"},
	{regexp.MustCompile(`\b(\d+)(?:\.\d+)?\s*(?:k|thousand)\b`), "K"},
	{regexp.MustCompile(`\b(?:budget|around|about|upto|under|within)\s+(?:is\s+|of\s+)?(?:rs\.?\s*|inr\s*)?(\d+)\b`), "Lakh"},
}

// Tokens that can never be a locality. Compound city matches capture the run
// of words before the city name, which drags filler along on utterances like
// "i want to buy in pune".
var localityStopwords = map[string]struct{}{
	"i": {}, "we": {}, "me": {}, "my": {}, "a": {}, "an": {}, "the": {},
	"in": {}, "at": {}, "near": {}, "to": {}, "for": {}, "of": {}, "is": {},
	"am": {}, "want": {}, "need": {}, "looking": {}, "searching": {},
	"buy": {}, "rent": {}, "buying": {}, "renting": {}, "purchase": {},
	"flat": {}, "apartment": {}, "house": {}, "property": {}, "home": {},
	"within": {}, "around": {}, "budget": {}, "and": {}, "with": {},
}

type cityMatcher struct {
	canonical  string
	inLocality *regexp.Regexp
	compound   *regexp.Regexp
	inCity     *regexp.Regexp
	plain      string
}

var cityMatchers = func() []cityMatcher {
	matchers := make([]cityMatcher, 0, len(cityGazetteer))
	for _, city := range cityGazetteer {
		lower := strings.ToLower(city)
		quoted := regexp.QuoteMeta(lower)
		matchers = append(matchers, cityMatcher{
			canonical:  city,
			inLocality: regexp.MustCompile(`\bin\s+([a-z]+(?:\s+[a-z]+){0,2})\s+` + quoted + `\b`),
			compound:   regexp.MustCompile(`\b([a-z]+(?:\s+[a-z]+){0,2})\s+` + quoted + `\b`),
			inCity:     regexp.MustCompile(`\bin\s+` + quoted + `\b`),
			plain:      lower,
		})
	}
	return matchers
}()

// Apply extracts slots from one utterance on top of the current requirements.
// Unmatched text leaves every slot untouched; already-filled slots are never
// overwritten.
func Apply(utterance string, current statex.Requirements) statex.Requirements {
	out := current
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return out
	}

	if out.PropertyType == "" {
		switch {
		case buyPattern.MatchString(text):
			out.PropertyType = "buy"
		case rentPattern.MatchString(text):
			out.PropertyType = "rent"
		}
	}

	if out.Budget == "" {
		for _, p := range budgetPatterns {
			m := p.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if p.unit == "K" {
				out.Budget = m[1] + "K"
			} else {
				out.Budget = fmt.Sprintf("%s %s", m[1], p.unit)
			}
			break
		}
	}

	if out.City == "" {
		city, locality := matchCity(text)
		if city != "" {
			out.City = city
			if locality != "" && out.Locality == "" {
				out.Locality = properCase(locality)
			}
		}
	}

	if out.Locality == "" {
		if m := localityPattern.FindStringSubmatch(text); m != nil {
			locality := trimLocality(m[1])
			if locality != "" {
				out.Locality = properCase(locality)
			}
		}
	}

	if out.BHK == "" {
		if m := bhkPattern.FindStringSubmatch(text); m != nil {
			out.BHK = m[1] + "BHK"
		}
	}

	return out
}

// matchCity tries compound patterns first, then falls back to a plain
// substring scan over the gazetteer.
func matchCity(text string) (city, locality string) {
	for _, m := range cityMatchers {
		if sub := m.inLocality.FindStringSubmatch(text); sub != nil {
			if loc := trimLocality(sub[1]); loc != "" {
				return m.canonical, loc
			}
			return m.canonical, ""
		}
		if sub := m.compound.FindStringSubmatch(text); sub != nil {
			return m.canonical, trimLocality(sub[1])
		}
		if m.inCity.MatchString(text) {
			return m.canonical, ""
		}
	}
	for _, m := range cityMatchers {
		if strings.Contains(text, m.plain) {
			return m.canonical, ""
		}
	}
	return "", ""
}

// trimLocality drops leading stopwords from a captured locality run and
// rejects runs made of nothing else.
func trimLocality(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	start := 0
	for start < len(words) {
		if _, stop := localityStopwords[words[start]]; !stop {
			break
		}
		start++
	}
	if start == len(words) {
		return ""
	}
	for _, w := range words[start:] {
		if _, stop := localityStopwords[w]; stop {
			return ""
		}
	}
	return strings.Join(words[start:], " ")
}

func properCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
