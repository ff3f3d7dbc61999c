// Package simple implements C4, the simple matcher: compiled `&`/`~`
// sub-word expressions evaluated against shared per-process-type
// Aho-Corasick automata, with repetition-aware counting per spec.md §4.4.
package simple

import (
	"github.com/coregx/textguard/internal/ahocorasick"
	"github.com/coregx/textguard/internal/chartable"
	"github.com/coregx/textguard/internal/config"
	"github.com/coregx/textguard/internal/process"
)

// WordEntry is one (process_type, word_id, pattern) input to the simple
// matcher, matching spec.md §3's "Simple-matcher table".
type WordEntry struct {
	ProcessType process.Type
	WordID      uint32
	Pattern     string
}

// Hit is one matching word_id, with the similarity the spec always fixes
// at 1.0 for exact matches.
type Hit struct {
	WordID uint32
	Word   string
}

type subwordRef struct {
	patternIdx int
	slotIdx    int // index into pattern.PositiveWords; -1 for negative refs
}

type compiledPattern struct {
	wordID  uint32
	pattern string
	parsed  *Parsed
}

// engine is the per-process-type compiled state: one shared automaton over
// every distinct sub-word (positive or negative) used by any pattern
// assigned to this process type, plus the index from automaton hit to
// every pattern slot it feeds.
type engine struct {
	automaton  *ahocorasick.Automaton
	patterns   []compiledPattern
	refsByWord []([]subwordRef) // automaton dictionary index -> referencing slots
}

// Matcher is the full compiled simple matcher: one engine per distinct
// process_type present across the configured word entries.
type Matcher struct {
	engines map[process.Type]*engine
}

// Build compiles entries into a Matcher. word_id must be globally unique
// across the whole simple matcher (spec.md §3); duplicates are rejected
// with DuplicateWordId.
func Build(entries []WordEntry) (*Matcher, error) {
	seen := make(map[uint32]bool, len(entries))
	byProcessType := make(map[process.Type][]WordEntry)
	for _, e := range entries {
		if seen[e.WordID] {
			return nil, config.New(config.DuplicateWordID, "", nil)
		}
		seen[e.WordID] = true
		byProcessType[e.ProcessType] = append(byProcessType[e.ProcessType], e)
	}

	engines := make(map[process.Type]*engine, len(byProcessType))
	for pt, group := range byProcessType {
		eng, err := buildEngine(pt, group)
		if err != nil {
			return nil, err
		}
		engines[pt] = eng
	}
	return &Matcher{engines: engines}, nil
}

// buildEngine compiles every pattern assigned to process_type pt. Each
// sub-word is transformed through pt before it is interned into the shared
// automaton, so a pattern written in its natural surface form (e.g. the
// Han characters "西安") lives in the same normalized space as the views
// C3 produces for matching (e.g. the pinyin rendering "xi an") — the
// dictionary and the haystack must agree on the coordinate system they're
// compared in.
func buildEngine(pt process.Type, entries []WordEntry) (*engine, error) {
	subwordID := make(map[string]int)
	var dictionary []string
	var patterns []compiledPattern
	var refs [][]subwordRef

	internSubword := func(w string) int {
		if id, ok := subwordID[w]; ok {
			return id
		}
		id := len(dictionary)
		subwordID[w] = id
		dictionary = append(dictionary, w)
		refs = append(refs, nil)
		return id
	}

	transform := func(w string) string {
		return process.Process(chartable.Shared(), pt, w).Text
	}

	for _, e := range entries {
		parsed, err := Parse(e.WordID, e.Pattern)
		if err != nil {
			return nil, err
		}
		patternIdx := len(patterns)
		patterns = append(patterns, compiledPattern{wordID: e.WordID, pattern: e.Pattern, parsed: parsed})

		for slot, w := range parsed.PositiveWords {
			id := internSubword(transform(w))
			refs[id] = append(refs[id], subwordRef{patternIdx: patternIdx, slotIdx: slot})
		}
		for _, w := range parsed.NegativeWords {
			id := internSubword(transform(w))
			refs[id] = append(refs[id], subwordRef{patternIdx: patternIdx, slotIdx: -1})
		}
	}

	return &engine{
		automaton:  ahocorasick.Build(dictionary),
		patterns:   patterns,
		refsByWord: refs,
	}, nil
}

// patternState is per-query scratch: a saturating occurrence count per
// positive slot plus a negative-hit flag. This is the "equivalent" of
// spec.md §4's packed bitfield/3-bit-counter suggestion, sized exactly to
// each touched pattern instead of a fixed-width word, which keeps the
// query-time allocation proportional to what actually matched.
type patternState struct {
	counts []uint8
	negHit bool
}

// Match runs the engine for process_type pt over view, returning every
// word_id whose pattern is fully satisfied: every positive slot's count
// reaches its required minimum and no negative sub-word was seen.
// Overlapping and repeated occurrences of a sub-word both count (spec.md
// §4.4's repetition policy; "aa" against "a&a" yields two occurrences).
func (m *Matcher) Match(pt process.Type, view string) []Hit {
	eng, ok := m.engines[pt]
	if !ok {
		return nil
	}
	return eng.match(view)
}

// HasProcessType reports whether any pattern was compiled for pt, so
// callers (C7) only ask C3 to produce views they actually need.
func (m *Matcher) HasProcessType(pt process.Type) bool {
	_, ok := m.engines[pt]
	return ok
}

func (e *engine) match(view string) []Hit {
	hits := e.automaton.Scan(view)
	if len(hits) == 0 {
		return nil
	}

	states := make(map[int]*patternState)
	for _, h := range hits {
		for _, ref := range e.refsByWord[h.Index] {
			st, ok := states[ref.patternIdx]
			if !ok {
				st = &patternState{counts: make([]uint8, len(e.patterns[ref.patternIdx].parsed.PositiveWords))}
				states[ref.patternIdx] = st
			}
			if ref.slotIdx < 0 {
				st.negHit = true
				continue
			}
			if st.counts[ref.slotIdx] < maxOccurrence {
				st.counts[ref.slotIdx]++
			}
		}
	}

	var result []Hit
	for idx, st := range states {
		if st.negHit {
			continue
		}
		p := e.patterns[idx]
		satisfied := true
		for slot, need := range p.parsed.PositiveRequired {
			if int(st.counts[slot]) < need {
				satisfied = false
				break
			}
		}
		if satisfied {
			result = append(result, Hit{WordID: p.wordID, Word: p.pattern})
		}
	}
	return result
}
