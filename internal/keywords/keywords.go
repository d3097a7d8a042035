// Package keywords extracts technical keywords from free text and scores how
// many of them a candidate text covers. It makes no network calls.
package keywords

import (
	"sort"
	"strings"
)

// maxCapitalizedTerms caps the heuristic proper-noun candidates taken per call.
const maxCapitalizedTerms = 15

// Set is a deduplicated set of lower-case keywords.
type Set map[string]struct{}

// Extract returns the keywords found in text: catalog technical terms, action
// verbs and capitalized words outside the common-word stop-list.
func Extract(text string) Set {
	set := make(Set)
	if strings.TrimSpace(text) == "" {
		return set
	}

	for _, re := range techPatterns {
		for _, m := range re.FindAllString(text, -1) {
			set[strings.ToLower(m)] = struct{}{}
		}
	}

	lower := strings.ToLower(text)
	for _, verb := range actionVerbs {
		if strings.Contains(lower, verb) {
			set[verb] = struct{}{}
		}
	}

	taken := 0
	for _, word := range capitalizedPattern.FindAllString(text, -1) {
		if taken == maxCapitalizedTerms {
			break
		}
		if _, common := commonWords[word]; common {
			continue
		}
		set[strings.ToLower(word)] = struct{}{}
		taken++
	}

	return set
}

// Slice returns the keywords sorted alphabetically.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether keyword is in the set.
func (s Set) Contains(keyword string) bool {
	_, ok := s[keyword]
	return ok
}

// Score returns the fraction of keywords whose lower-cased form occurs as a
// substring of the lower-cased text. It returns 0 when keywords is empty.
func Score(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	lower := strings.ToLower(text)
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}
