package search

import (
	"slices"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"
)

// Match is one ranked title.
type Match struct {
	Index          int   // Index in source slice
	Score          int   // Match score (lower = better)
	MatchedIndexes []int // Rune positions that matched (for highlighting)
}

// Score tiers. A title's score is the sum of its query tokens' scores.
const (
	scoreExact     = 0
	scorePrefix    = 10
	scorePartial   = 20
	scoreSubstring = 50
	scoreTypo      = 100
	scoreAnywhere  = 150
	scoreScattered = 300
	extraWordCost  = 5
)

// Rank performs token-based fuzzy matching optimized for media titles.
//
// Every query token must match some title token (AND semantics), word order
// does not matter ("robot mr" matches "Mr. Robot") and longer tokens tolerate
// typos. Titles where no token matches but the query characters appear in
// order are kept as a last tier.
//
// Returns matches sorted by score, then by title length.
func Rank(query string, titles []string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var matches []Match
	matched := make(map[int]bool)
	for i, title := range titles {
		if m, ok := matchTitle(title, queryTokens); ok {
			m.Index = i
			matches = append(matches, m)
			matched[i] = true
		}
	}

	// Scattered subsequence matches, e.g. "lotr" for "Lord of the Rings".
	for _, m := range sfuzzy.Find(strings.ToLower(query), lowerAll(titles)) {
		if matched[m.Index] {
			continue
		}
		matches = append(matches, Match{
			Index:          m.Index,
			Score:          scoreScattered - min(m.Score, scoreScattered-scoreAnywhere-1),
			MatchedIndexes: runeIndexes(titles[m.Index], m.MatchedIndexes),
		})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if a.Score != b.Score {
			return a.Score - b.Score
		}
		return len(titles[a.Index]) - len(titles[b.Index])
	})
	return matches
}

type token struct {
	text  string // lowercase
	start int    // rune offsets in the original string
	end   int
}

func tokenize(text string) []token {
	var tokens []token
	runes := []rune(strings.ToLower(text))

	inWord := false
	wordStart := 0
	for i, r := range runes {
		isWordChar := unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWordChar && !inWord {
			wordStart = i
			inWord = true
		} else if !isWordChar && inWord {
			tokens = append(tokens, token{text: string(runes[wordStart:i]), start: wordStart, end: i})
			inWord = false
		}
	}
	if inWord {
		tokens = append(tokens, token{text: string(runes[wordStart:]), start: wordStart, end: len(runes)})
	}
	return tokens
}

func matchTitle(title string, queryTokens []token) (Match, bool) {
	lowerTitle := strings.ToLower(title)
	titleTokens := tokenize(title)

	// Each title token can satisfy only one query token.
	used := make([]bool, len(titleTokens))

	var indexes []int
	total := 0
	for _, qt := range queryTokens {
		score, idx, hit := bestTokenMatch(qt.text, titleTokens, lowerTitle, used)
		if score < 0 {
			return Match{}, false
		}
		if idx >= 0 {
			used[idx] = true
		}
		total += score
		indexes = append(indexes, hit...)
	}

	if extra := len(titleTokens) - len(queryTokens); extra > 0 {
		total += extra * extraWordCost
	}

	slices.Sort(indexes)
	return Match{Score: total, MatchedIndexes: slices.Compact(indexes)}, true
}

// bestTokenMatch returns the best score for q, the title token it used (-1
// for a whole-title substring hit) and the matched rune positions. A
// negative score means no match.
func bestTokenMatch(q string, titleTokens []token, lowerTitle string, used []bool) (int, int, []int) {
	best, bestIdx := -1, -1
	var bestHit []int
	for i, tt := range titleTokens {
		if used[i] {
			continue
		}
		score, hit := matchToken(q, tt)
		if score >= 0 && (best < 0 || score < best) {
			best, bestIdx, bestHit = score, i, hit
		}
	}
	if best >= 0 {
		return best, bestIdx, bestHit
	}

	if idx := strings.Index(lowerTitle, q); idx >= 0 {
		start := len([]rune(lowerTitle[:idx]))
		return scoreAnywhere + start, -1, span(start, start+len([]rune(q)))
	}
	return -1, -1, nil
}

func matchToken(q string, tt token) (int, []int) {
	t := tt.text
	qLen := len([]rune(q))

	switch {
	case q == t:
		return scoreExact, span(tt.start, tt.end)
	case strings.HasPrefix(t, q):
		return scorePrefix, span(tt.start, tt.start+qLen)
	case strings.HasPrefix(q, t):
		return scorePartial, span(tt.start, tt.end)
	}

	if idx := strings.Index(t, q); idx >= 0 {
		start := tt.start + len([]rune(t[:idx]))
		return scoreSubstring + idx, span(start, start+qLen)
	}

	if maxTypos := allowedTypos(qLen); maxTypos > 0 {
		if d := fuzzy.LevenshteinDistance(q, t); d <= maxTypos {
			return scoreTypo + d*20, span(tt.start, tt.end)
		}
	}
	return -1, nil
}

// allowedTypos: 1-3 chars = 0, 4-6 chars = 1, 7+ chars = 2
func allowedTypos(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}

func span(start, end int) []int {
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

func lowerAll(titles []string) []string {
	out := make([]string, len(titles))
	for i, t := range titles {
		out[i] = strings.ToLower(t)
	}
	return out
}

// runeIndexes converts byte offsets reported by sahilm/fuzzy into rune offsets.
func runeIndexes(s string, byteIdx []int) []int {
	lower := strings.ToLower(s)
	out := make([]int, 0, len(byteIdx))
	for _, b := range byteIdx {
		if b <= len(lower) {
			out = append(out, len([]rune(lower[:b])))
		}
	}
	return out
}
