package simple

import (
	"strings"

	"github.com/coregx/textguard/internal/config"
)

// maxPositiveSubwords and maxOccurrence are the hard limits spec.md §3
// imposes on a single pattern: at most 32 distinct positive sub-words, and
// any single sub-word's required occurrence count clamps at 8.
const (
	maxPositiveSubwords = 32
	maxOccurrence       = 8
)

// Parsed is one compiled `&`/`~` pattern: a positive multiset (sub-word ->
// minimum occurrence count) and a negative set (any occurrence disqualifies
// the match), per spec.md §3's grammar
// `pattern := positive ('&' positive)* ('~' negative)*`.
type Parsed struct {
	PositiveWords    []string // distinct, first-seen order
	PositiveRequired []int    // aligned with PositiveWords, clamped to [1,8]
	NegativeWords    []string // distinct, first-seen order
}

// Parse compiles a raw pattern string into a Parsed expression. It rejects
// patterns that interleave `~` before `&` (e.g. "a~b&c") as InvalidPattern,
// per spec.md §9's explicit instruction not to guess intent there, and
// rejects empty sub-words and patterns with more than 32 distinct positive
// sub-words.
func Parse(wordID uint32, pattern string) (*Parsed, error) {
	if pattern == "" {
		return nil, config.New(config.InvalidPattern, "empty pattern", nil)
	}

	negIdx := strings.IndexByte(pattern, '~')
	posPart := pattern
	negPart := ""
	if negIdx >= 0 {
		posPart = pattern[:negIdx]
		negPart = pattern[negIdx+1:]
	}

	positives := strings.Split(posPart, "&")
	required := make(map[string]int)
	order := make([]string, 0, len(positives))
	for _, w := range positives {
		if w == "" {
			return nil, config.New(config.InvalidPattern, "empty positive sub-word in "+pattern, nil)
		}
		if _, seen := required[w]; !seen {
			order = append(order, w)
		}
		required[w]++
		if required[w] > maxOccurrence {
			required[w] = maxOccurrence
		}
	}
	if len(order) > maxPositiveSubwords {
		return nil, config.New(config.InvalidPattern, "more than 32 distinct positive sub-words in "+pattern, nil)
	}

	var negatives []string
	if negPart != "" {
		negSegments := strings.Split(negPart, "~")
		seen := make(map[string]bool)
		for _, seg := range negSegments {
			// A negative segment containing '&' means the original pattern
			// interleaved '~' before '&' (e.g. "a~b&c"): reject per
			// spec.md §9.
			if strings.Contains(seg, "&") {
				return nil, config.New(config.InvalidPattern, "'~' before '&' in "+pattern, nil)
			}
			if seg == "" {
				return nil, config.New(config.InvalidPattern, "empty negative sub-word in "+pattern, nil)
			}
			if !seen[seg] {
				seen[seg] = true
				negatives = append(negatives, seg)
			}
		}
	}

	reqSlice := make([]int, len(order))
	for i, w := range order {
		reqSlice[i] = required[w]
	}

	return &Parsed{
		PositiveWords:    order,
		PositiveRequired: reqSlice,
		NegativeWords:    negatives,
	}, nil
}
