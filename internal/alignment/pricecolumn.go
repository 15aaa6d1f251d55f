package alignment

import "strings"

// ColumnRule tags which strategy in the fallback chain selected the Democrat
// price column, so callers can tell a primary match from a fallback.
type ColumnRule string

// Column selection rules, in the order they are tried.
const (
	RuleExactDemocrat      ColumnRule = "exact_democrat"
	RuleCandidateLastName  ColumnRule = "candidate_last_name"
	RuleContainsDemocratic ColumnRule = "contains_democratic"
	RuleFirstNonNo         ColumnRule = "first_non_no"
)

// SelectDemocratColumn picks the outcome label representing the Democrat side
// from a price table's columns. Strategies are tried in sequence:
//
//  1. exact case-insensitive match on "Democrat"
//  2. label containing the configured Democratic candidate's last name
//  3. label containing "Democratic"
//  4. first label not starting with "No"
//
// Returns false when no label qualifies.
func SelectDemocratColumn(labels []string, democratName string) (string, ColumnRule, bool) {
	for _, l := range labels {
		if strings.EqualFold(strings.TrimSpace(l), "Democrat") {
			return l, RuleExactDemocrat, true
		}
	}

	if last := lastNameOf(democratName); last != "" {
		for _, l := range labels {
			if strings.Contains(strings.ToLower(l), last) {
				return l, RuleCandidateLastName, true
			}
		}
	}

	for _, l := range labels {
		if strings.Contains(strings.ToLower(l), "democratic") {
			return l, RuleContainsDemocratic, true
		}
	}

	for _, l := range labels {
		if !strings.HasPrefix(strings.TrimSpace(l), "No") {
			return l, RuleFirstNonNo, true
		}
	}

	return "", "", false
}

func lastNameOf(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}
