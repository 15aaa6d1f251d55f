package candidates

import (
	"reflect"
	"sort"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kamala Harris", "kamala harris"},
		{"  O'Brien,  Pat ", "obrien pat"},
		{"TRUMP JR.", "trump jr"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLastNameFromRecord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HARRIS, KAMALA", "harris"},
		{"TRUMP, DONALD J", "trump"},
		{"Gallego Ruben", "gallego"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LastNameFromRecord(tt.in); got != tt.want {
			t.Errorf("LastNameFromRecord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokensFromTitles(t *testing.T) {
	titles := []string{"Kari Lake", "Ruben Gallego", "Other", "", "Kari Lake"}

	got := TokensFromTitles(titles)

	want := []string{"lake", "gallego"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokensFromTitles() = %v, want %v", got, want)
	}
}

func TestTokensFromFreeText_DropsStopWords(t *testing.T) {
	got := TokensFromFreeText(
		"Presidential Election Winner 2024",
		[]string{"Will Trump win?"},
		[]string{"Trump", "Harris"},
	)
	sort.Strings(got)

	for _, banned := range []string{"will", "win", "election", "winner", "presidential"} {
		for _, tok := range got {
			if tok == banned {
				t.Errorf("Stop word %q leaked into tokens %v", banned, got)
			}
		}
	}
	found := map[string]bool{}
	for _, tok := range got {
		found[tok] = true
	}
	if !found["trump"] || !found["harris"] {
		t.Errorf("Expected candidate tokens in %v", got)
	}
}

func TestMatchTokens_ExactLastNameOnly(t *testing.T) {
	candidates := []string{
		"LAKE, KARI",
		"WESTLAKE, ANNE", // substring of a token's superset, must not match
		"GALLEGO, RUBEN",
		"LAKE, KARI", // duplicate
		"SMITH, JOHN",
	}

	got := MatchTokens([]string{"lake", "gallego"}, candidates)

	want := []string{"LAKE, KARI", "GALLEGO, RUBEN"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchTokens() = %v, want %v", got, want)
	}
}

func TestMatchTokens_NoTokens(t *testing.T) {
	if got := MatchTokens(nil, []string{"LAKE, KARI"}); got != nil {
		t.Errorf("Expected nil for empty token list, got %v", got)
	}
}

func TestMatcher_Keep(t *testing.T) {
	m := NewMatcher([]string{"LAKE, KARI"})

	if m.Empty() {
		t.Fatal("Matcher with one candidate is not empty")
	}
	if !m.Keep("LAKE, KARI") {
		t.Error("Expected matched candidate to be kept")
	}
	if m.Keep("SMITH, JOHN") {
		t.Error("Unmatched candidate must be dropped")
	}
}
