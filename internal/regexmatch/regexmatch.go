// Package regexmatch implements C5, the regex matcher: similar_char and
// acrostic pattern expansion into stdlib regular expressions, plus raw
// regex pass-through, per spec.md §4.5.
//
// coregx-coregex's own NFA/DFA engine (the teacher's reason for being) is
// not usable here: the retrieved snapshot references StateLook/Look/
// LookStartText symbols throughout nfa/ and dfa/lazy/ that are never
// defined anywhere in the non-test source, so the engine cannot compile.
// spec.md §9 explicitly allows "a PCRE-compatible engine (e.g. Go's
// regexp, RE2)" for this component, so compiled patterns here are plain
// *regexp.Regexp; the package keeps the teacher's construction/query
// shape (one compiled matcher per table, built once, queried many times).
package regexmatch

import (
	"regexp"
	"strings"

	"github.com/coregx/textguard/internal/config"
	"github.com/coregx/textguard/internal/process"
)

// Kind is one of the three regex_kind expansions spec.md §4.5 names.
type Kind int

const (
	SimilarChar Kind = iota
	Acrostic
	Regex
)

// WordEntry is one (process_type, regex_kind, word_id, pattern) input.
type WordEntry struct {
	ProcessType process.Type
	Kind        Kind
	WordID      uint32
	Pattern     string
}

// Hit is one matching word, always reported at similarity 1.0 per
// spec.md §4.5.
type Hit struct {
	WordID uint32
	Word   string
}

type compiledPattern struct {
	wordID  uint32
	pattern string
	re      *regexp.Regexp
}

type engine struct {
	patterns []compiledPattern
}

// Matcher is the full compiled regex matcher: one engine per distinct
// process_type present across the configured word entries.
type Matcher struct {
	engines map[process.Type]*engine
}

// Build compiles entries into a Matcher, expanding each pattern per its
// regex_kind and compiling it dotall and case-insensitive (see
// dotallASCIIFold for the scope of the case folding).
func Build(entries []WordEntry) (*Matcher, error) {
	byProcessType := make(map[process.Type][]WordEntry)
	for _, e := range entries {
		byProcessType[e.ProcessType] = append(byProcessType[e.ProcessType], e)
	}

	engines := make(map[process.Type]*engine, len(byProcessType))
	for pt, group := range byProcessType {
		eng, err := buildEngine(group)
		if err != nil {
			return nil, err
		}
		engines[pt] = eng
	}
	return &Matcher{engines: engines}, nil
}

func buildEngine(entries []WordEntry) (*engine, error) {
	patterns := make([]compiledPattern, 0, len(entries))
	for _, e := range entries {
		expanded, err := expand(e.Kind, e.Pattern)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(dotallASCIIFold(expanded))
		if err != nil {
			return nil, config.New(config.InvalidRegex, e.Pattern, err)
		}
		patterns = append(patterns, compiledPattern{wordID: e.WordID, pattern: e.Pattern, re: re})
	}
	return &engine{patterns: patterns}, nil
}

// dotallASCIIFold wraps an expanded pattern with Go regexp flags: `s` makes
// `.` match newlines (dotall), and `i` makes matching case-insensitive.
// Go's `i` flag uses Unicode simple case folding, so the folding is not
// restricted to ASCII: cased letters of other scripts (Greek, Cyrillic,
// fullwidth Latin, ...) fold as well. Han characters have no case and are
// unaffected.
func dotallASCIIFold(pattern string) string {
	return "(?is)" + pattern
}

// expand turns a raw word-list pattern into a regular expression per its
// regex_kind.
func expand(kind Kind, pattern string) (string, error) {
	switch kind {
	case SimilarChar:
		return expandSimilarChar(pattern)
	case Acrostic:
		return expandAcrostic(pattern)
	case Regex:
		return pattern, nil
	default:
		return "", config.New(config.UnknownTransform, pattern, nil)
	}
}

// expandSimilarChar turns "hello,hallo" into "(?:hello|hallo)": a single
// pattern string is one comma-separated alternation group, compiled as its
// own regex. Groups from different word-list entries are not concatenated
// into one sequence; each entry matches (and is reported) on its own.
func expandSimilarChar(pattern string) (string, error) {
	groups := strings.Split(pattern, ",")
	for _, g := range groups {
		if g == "" {
			return "", config.New(config.InvalidPattern, pattern, nil)
		}
	}
	return "(?:" + strings.Join(escapeAll(groups), "|") + ")", nil
}

// expandAcrostic turns "h,e,l,l,o" into a regex requiring each character in
// order, each followed by any run of characters up to (but not including)
// a line terminator: "h[^\n]*?\ne[^\n]*?\n...". spec.md §4.5 restricts this
// to Han and ASCII character classes.
func expandAcrostic(pattern string) (string, error) {
	chars := strings.Split(pattern, ",")
	var b strings.Builder
	for i, c := range chars {
		rs := []rune(c)
		if len(rs) != 1 {
			return "", config.New(config.InvalidPattern, pattern, nil)
		}
		if !isAcrosticRune(rs[0]) {
			return "", config.New(config.InvalidPattern, pattern, nil)
		}
		b.WriteString(regexp.QuoteMeta(c))
		if i != len(chars)-1 {
			b.WriteString(`[^\n]*?\n`)
		}
	}
	return b.String(), nil
}

func isAcrosticRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	default:
		return false
	}
}

func escapeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}

// Match runs every compiled pattern for process_type pt against view,
// returning every word whose regex finds at least one match.
func (m *Matcher) Match(pt process.Type, view string) []Hit {
	eng, ok := m.engines[pt]
	if !ok {
		return nil
	}
	var hits []Hit
	for _, p := range eng.patterns {
		if p.re.MatchString(view) {
			hits = append(hits, Hit{WordID: p.wordID, Word: p.pattern})
		}
	}
	return hits
}

// HasProcessType reports whether any pattern was compiled for pt.
func (m *Matcher) HasProcessType(pt process.Type) bool {
	_, ok := m.engines[pt]
	return ok
}
