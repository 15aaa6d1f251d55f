// Package candidates infers candidate names from prediction-market event
// metadata and matches them against the donation file's "LAST, FIRST"
// candidate column, so donation ingestion can filter a multi-gigabyte file
// down to the rows relevant to one event.
package candidates

import (
	"regexp"
	"strings"
)

var (
	nonWord = regexp.MustCompile(`[^\w\s]`)
	word    = regexp.MustCompile(`\b[A-Za-z]{2,}\b`)
)

// Generic market labels that never name a candidate.
var skipTitles = map[string]struct{}{
	"other":   {},
	"others":  {},
	"unknown": {},
	"none":    {},
}

// Words common in market titles and questions that are not candidate names.
var stopWords = map[string]struct{}{
	"presidential": {},
	"election":     {},
	"winner":       {},
	"president":    {},
	"will":         {},
	"win":          {},
	"the":          {},
	"who":          {},
	"be":           {},
	"become":       {},
}

// NormalizeName lowercases, strips punctuation, and collapses whitespace.
func NormalizeName(s string) string {
	s = nonWord.ReplaceAllString(strings.ToLower(s), "")
	return strings.Join(strings.Fields(s), " ")
}

// LastNameFromRecord extracts the normalized last name from a donation-file
// candidate value, either "LAST, FIRST" or a bare name.
func LastNameFromRecord(candidate string) string {
	s := strings.TrimSpace(candidate)
	if idx := strings.Index(s, ","); idx >= 0 {
		return NormalizeName(s[:idx])
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return NormalizeName(fields[0])
}

// TokensFromTitles derives last-name tokens from per-market candidate titles
// like "Kari Lake". Generic entries are skipped; order of first appearance is
// preserved.
func TokensFromTitles(titles []string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		if _, skip := skipTitles[NormalizeName(title)]; skip {
			continue
		}
		parts := strings.Fields(title)
		last := NormalizeName(parts[len(parts)-1])
		if len(last) < 2 {
			continue
		}
		if _, ok := seen[last]; ok {
			continue
		}
		seen[last] = struct{}{}
		tokens = append(tokens, last)
	}
	return tokens
}

// TokensFromFreeText is the fallback when no per-market titles exist: it mines
// candidate-like words out of the event title, market questions, and outcome
// labels, dropping common election vocabulary. Output order is unspecified.
func TokensFromFreeText(title string, questions, outcomes []string) []string {
	set := make(map[string]struct{})

	for _, w := range word.FindAllString(title, -1) {
		lower := strings.ToLower(w)
		if _, stop := stopWords[lower]; !stop {
			set[lower] = struct{}{}
		}
	}
	for _, q := range questions {
		for _, w := range word.FindAllString(q, -1) {
			lower := strings.ToLower(w)
			if _, stop := stopWords[lower]; !stop {
				set[lower] = struct{}{}
			}
		}
	}
	for _, o := range outcomes {
		if len(strings.TrimSpace(o)) > 1 {
			set[NormalizeName(o)] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(set))
	for t := range set {
		tokens = append(tokens, t)
	}
	return tokens
}

// MatchTokens returns the donation-file candidate values whose last name
// exactly equals one of the tokens. No substring or fuzzy matching: "lake"
// matches "LAKE, KARI" but not "WESTLAKE, ANNE". Order of the input candidate
// list is preserved, duplicates removed.
func MatchTokens(tokens []string, csvCandidates []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	seen := make(map[string]struct{})
	var matched []string
	for _, cand := range csvCandidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		last := LastNameFromRecord(cand)
		if last == "" {
			continue
		}
		if _, ok := tokenSet[last]; !ok {
			continue
		}
		if _, dup := seen[cand]; dup {
			continue
		}
		seen[cand] = struct{}{}
		matched = append(matched, cand)
	}
	return matched
}

// Matcher wraps a matched candidate set as a keep-predicate for streamed
// donation ingestion. Matching is exact on the raw candidate value.
type Matcher struct {
	keep map[string]struct{}
}

func NewMatcher(matched []string) *Matcher {
	keep := make(map[string]struct{}, len(matched))
	for _, m := range matched {
		keep[strings.TrimSpace(m)] = struct{}{}
	}
	return &Matcher{keep: keep}
}

// Empty reports whether no candidates matched; callers fall back to keeping
// every row in that case.
func (m *Matcher) Empty() bool { return len(m.keep) == 0 }

func (m *Matcher) Keep(candidate string) bool {
	_, ok := m.keep[strings.TrimSpace(candidate)]
	return ok
}
