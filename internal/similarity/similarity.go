// Package similarity implements C6, the similarity matcher: a windowed,
// threshold-gated edit-distance search over a process view, per spec.md
// §4.6. Distance itself follows the Wagner-Fischer dynamic-programming
// algorithm described by fulmenhq-gofulmen's similarity package (see
// other_examples), generalized here from whole-string comparison to a
// sliding window so a short configured word can be found anywhere inside
// a much longer input view.
package similarity

import (
	"math"

	"github.com/coregx/textguard/internal/chartable"
	"github.com/coregx/textguard/internal/process"
)

// Kind selects the edit-distance variant. Levenshtein is spec.md §4.6's
// mandatory algorithm; DamerauLevenshtein (optimal string alignment, with
// adjacent transpositions as a single edit) is the supplemental sim_kind
// SPEC_FULL.md adds.
type Kind int

const (
	Levenshtein Kind = iota
	DamerauLevenshtein
)

// WordEntry is one (process_type, sim_kind, word_id, word, threshold)
// input to the similarity matcher.
type WordEntry struct {
	ProcessType process.Type
	Kind        Kind
	WordID      uint32
	Word        string
	Threshold   float32
}

// Hit is one matching word with its best observed similarity score.
type Hit struct {
	WordID     uint32
	Word       string
	Similarity float32
}

type compiledWord struct {
	wordID    uint32
	word      string
	runes     []rune
	kind      Kind
	threshold float32
	slack     int
}

type engine struct {
	words []compiledWord
}

// Matcher is the full compiled similarity matcher: one engine per distinct
// process_type present across the configured word entries.
type Matcher struct {
	engines map[process.Type]*engine
}

// Build compiles entries into a Matcher.
func Build(entries []WordEntry) *Matcher {
	byProcessType := make(map[process.Type][]WordEntry)
	for _, e := range entries {
		byProcessType[e.ProcessType] = append(byProcessType[e.ProcessType], e)
	}

	engines := make(map[process.Type]*engine, len(byProcessType))
	for pt, group := range byProcessType {
		words := make([]compiledWord, len(group))
		for i, e := range group {
			// Transform the configured word through its own process_type so
			// it lives in the same normalized space as the view it will be
			// slid across (mirrors the simple matcher's sub-word transform;
			// see internal/simple's buildEngine).
			normalized := process.Process(chartable.Shared(), pt, e.Word).Text
			rs := []rune(normalized)
			words[i] = compiledWord{
				wordID:    e.WordID,
				word:      e.Word,
				runes:     rs,
				kind:      e.Kind,
				threshold: e.Threshold,
				slack:     slackFor(len(rs), e.Threshold),
			}
		}
		engines[pt] = &engine{words: words}
	}
	return &Matcher{engines: engines}
}

// slackFor computes ⌈|word|·(1-threshold)⌉, the window-length slack
// spec.md §4.6 specifies.
func slackFor(wordLen int, threshold float32) int {
	return int(math.Ceil(float64(wordLen) * (1 - float64(threshold))))
}

// Match runs every compiled word for process_type pt against view,
// returning the best-scoring hit per word whose best window meets or
// exceeds its threshold.
func (m *Matcher) Match(pt process.Type, view string) []Hit {
	eng, ok := m.engines[pt]
	if !ok {
		return nil
	}
	viewRunes := []rune(view)

	var hits []Hit
	for _, w := range eng.words {
		if best, ok := bestWindow(viewRunes, w); ok {
			hits = append(hits, Hit{WordID: w.wordID, Word: w.word, Similarity: best})
		}
	}
	return hits
}

// HasProcessType reports whether any word was compiled for pt.
func (m *Matcher) HasProcessType(pt process.Type) bool {
	_, ok := m.engines[pt]
	return ok
}

// bestWindow slides windows of length in [n-slack, n+slack] (clamped to
// >=1 and <=len(view)) across view, returning the highest normalized
// similarity score that meets w's threshold, if any.
func bestWindow(view []rune, w compiledWord) (float32, bool) {
	n := len(w.runes)
	if n == 0 {
		return 0, false
	}
	minLen := n - w.slack
	if minLen < 1 {
		minLen = 1
	}
	maxLen := n + w.slack
	if maxLen > len(view) {
		maxLen = len(view)
	}

	var best float32
	found := false
	for length := minLen; length <= maxLen; length++ {
		for start := 0; start+length <= len(view); start++ {
			window := view[start : start+length]
			dist := distance(window, w.runes, w.kind)
			denom := n
			if length > denom {
				denom = length
			}
			sim := float32(1) - float32(dist)/float32(denom)
			if sim >= w.threshold && (!found || sim > best) {
				best = sim
				found = true
			}
		}
	}
	return best, found
}

// distance computes the edit distance between a and b using the classic
// Wagner-Fischer DP, banded implicitly by the caller only ever supplying
// windows within slack of the target length. DamerauLevenshtein adds the
// optimal-string-alignment transposition rule (swap of two adjacent
// characters costs one edit, not two).
func distance(a, b []rune, kind Kind) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
		d[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1] + cost
			v := min3(del, ins, sub)
			if kind == DamerauLevenshtein && i > 1 && j > 1 &&
				a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if t := d[i-2][j-2] + 1; t < v {
					v = t
				}
			}
			d[i][j] = v
		}
	}
	return d[la][lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
