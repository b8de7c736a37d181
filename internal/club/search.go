package club

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mauv0809/courtside/internal/session"
)

// minConfidence is the lowest similarity a search result may have.
const minConfidence = 0.3

// PlayerMatch is a search hit with its similarity to the query.
type PlayerMatch struct {
	Player     session.Player `json:"player"`
	Confidence float64        `json:"confidence"`
	Reasons    []string       `json:"reasons"`
}

// rankPlayers scores every player's display name against query and returns
// the best limit hits, most similar first. A non-positive limit means no limit.
func rankPlayers(query string, players []session.Player, limit int) []PlayerMatch {
	q := normalizeName(query)
	if q == "" {
		return nil
	}

	var matches []PlayerMatch
	for _, p := range players {
		name := normalizeName(p.DisplayName())
		score := (stringSimilarity(q, name) + tokenSimilarity(q, name)) / 2
		if strings.Contains(name, q) {
			score = max(score, 0.75)
		}
		if score > minConfidence {
			matches = append(matches, PlayerMatch{
				Player:     p,
				Confidence: score,
				Reasons:    matchReasons(q, name),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// normalizeName lowercases a name, drops everything but letters and spaces and
// collapses runs of spaces.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// stringSimilarity is 1 minus the edit distance relative to the longer string.
func stringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}
	a, b := []rune(s1), []rune(s2)
	return 1.0 - float64(levenshteinDistance(a, b))/float64(max(len(a), len(b)))
}

// tokenSimilarity is the share of words in the longer name that have a close
// counterpart in the other.
func tokenSimilarity(s1, s2 string) float64 {
	tokens1 := strings.Fields(s1)
	tokens2 := strings.Fields(s2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	matched := 0
	for _, t1 := range tokens1 {
		for _, t2 := range tokens2 {
			if stringSimilarity(t1, t2) > 0.8 {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(max(len(tokens1), len(tokens2)))
}

func levenshteinDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func matchReasons(query, name string) []string {
	var reasons []string
	switch {
	case query == name:
		reasons = append(reasons, "Exact name match")
	case strings.Contains(name, query):
		reasons = append(reasons, "Name contains query")
	case stringSimilarity(query, name) > 0.8:
		reasons = append(reasons, "Very similar name")
	}
	if tokenSimilarity(query, name) > 0.5 {
		reasons = append(reasons, "Matching name components")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Partial name similarity")
	}
	return reasons
}
