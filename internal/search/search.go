package search

import (
	"strings"
)

// Source says where a suggestion came from.
type Source string

const (
	SourceRecent Source = "recent"
	SourceTitle  Source = "title"
)

// recentBonus pulls recent keywords ahead of titles with a similar score.
const recentBonus = 5

// Suggestion is a ranked completion for a search box.
type Suggestion struct {
	Text           string
	Source         Source
	MatchedIndexes []int
	Score          int
}

// Suggest ranks recent keywords and known titles against query and returns
// at most limit suggestions, deduplicated case-insensitively. An empty query
// returns the recent keywords in their given order.
func Suggest(query string, recent, titles []string, limit int) []Suggestion {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []Suggestion
	add := func(s Suggestion) bool {
		key := strings.ToLower(s.Text)
		if seen[key] {
			return len(out) < limit
		}
		seen[key] = true
		out = append(out, s)
		return len(out) < limit
	}

	if strings.TrimSpace(query) == "" {
		for _, kw := range recent {
			if !add(Suggestion{Text: kw, Source: SourceRecent}) {
				break
			}
		}
		return out
	}

	candidates := make([]string, 0, len(recent)+len(titles))
	candidates = append(candidates, recent...)
	candidates = append(candidates, titles...)

	matches := Rank(query, candidates)
	ranked := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		s := Suggestion{
			Text:           candidates[m.Index],
			Source:         SourceTitle,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
		if m.Index < len(recent) {
			s.Source = SourceRecent
			s.Score -= recentBonus
		}
		ranked = append(ranked, s)
	}
	sortSuggestions(ranked)

	for _, s := range ranked {
		if !add(s) {
			break
		}
	}
	return out
}

// sortSuggestions is a stable insertion sort by score; inputs are short.
func sortSuggestions(s []Suggestion) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Score < s[j-1].Score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
