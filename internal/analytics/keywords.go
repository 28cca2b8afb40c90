package analytics

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keyword is one entry of the report's keyword profile.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// stopwords is the fixed Korean stopword set for the strict keyword pass.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"안녕하세요", "저는", "제가", "그리고", "그러나", "하지만", "또는", "및",
		"합니다", "했습니다", "있습니다", "입니다", "요", "은", "는", "이", "가",
		"을", "를", "에", "의", "와", "과", "도", "으로", "에서", "까지", "부터",
		"한", "좀", "거", "네", "음", "어", "그", "아", "했다", "같습니다", "수", "더", "또",
	} {
		stopwords[w] = struct{}{}
	}
}

// relaxedTokenCap bounds the fallback pass to a prefix of the token stream.
const relaxedTokenCap = 100

// relaxedResultCap bounds the fallback result size.
const relaxedResultCap = 8

// TopKeywords tokenizes the text on Unicode letter/number boundaries,
// lowercases, drops stopwords and single-character artifacts, and returns
// the top-N words by descending count. When the strict pass filters
// everything out, a relaxed pass (no stopword or length filter, bounded
// token prefix, up to relaxedResultCap results) guarantees a non-empty
// profile for non-empty input.
func TopKeywords(text string, topN int) []Keyword {
	tokens := tokenize(text)

	strict := make([]string, 0, len(tokens))
	for _, w := range tokens {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		strict = append(strict, w)
	}
	if top := countAndRank(strict, topN); len(top) > 0 {
		return top
	}

	relaxed := tokens
	if len(relaxed) > relaxedTokenCap {
		relaxed = relaxed[:relaxedTokenCap]
	}
	return countAndRank(relaxed, relaxedResultCap)
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Fields(cleaned)
}

// countAndRank counts token frequencies and returns the top-n, descending
// by count with first-seen order preserved on ties.
func countAndRank(tokens []string, n int) []Keyword {
	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, w := range tokens {
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	ranked := make([]Keyword, 0, len(order))
	for _, w := range order {
		ranked = append(ranked, Keyword{Word: w, Count: counts[w]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
