// Package relevance implements the term-overlap scoring used to rank search
// results across heterogeneous content collections.
package relevance

import (
	"regexp"
	"strings"
)

// Score rates how well text matches query.
//
// The query is split into lower-cased whitespace tokens. Each token adds 1.0
// when it appears as a substring of the lower-cased text, plus 0.5 more when
// it also matches as a whole word. The sum is divided by the token count, so
// a per-pair score lands in [0, 1.5]: a text containing every query token as
// a whole word scores exactly 1.5 regardless of token count.
//
// The arithmetic intentionally mixes the per-token bonus with averaging; it
// matches the observed ranking behavior of the production system and must not
// be normalized to [0, 1].
func Score(query, text string) float64 {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return 0
	}

	textLower := strings.ToLower(text)

	var score float64
	for _, token := range tokens {
		if !strings.Contains(textLower, token) {
			continue
		}
		score += 1.0
		if matchesWholeWord(token, textLower) {
			score += 0.5
		}
	}

	return score / float64(len(tokens))
}

// matchesWholeWord reports whether token appears at a word boundary in text.
// The token is quoted so that regex metacharacters in user queries cannot
// break compilation.
func matchesWholeWord(token, text string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(token) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
