// Package chartable holds the precompiled character-class tables C1
// describes: FANJIAN, NORM (character folding, with numeric- and
// symbol-normalization folded in per spec.md §4.1), TEXT-DELETE and
// PINYIN. Tables are loaded once from embedded newline-delimited
// "source<TAB>replacement" text files (spec.md §6) and are immutable
// thereafter — "init once / never torn down", mirroring the teacher's
// lazily-built, process-wide read-only tables (coregx-coregex's global
// character tables were the model; see DESIGN.md).
//
// FANJIAN and NORM may have multi-codepoint sources, so they are backed by
// an ahocorasick.Trie performing leftmost-longest, non-overlapping
// replacement. PINYIN is explicitly rune-keyed per spec.md §4.2's
// ambiguity note ("a multi-codepoint Han cluster has no table entry; the
// rune-level mapping is always used"), so it is a plain map. TEXT-DELETE
// is a membership set, not a replacement table.
package chartable

import (
	"bufio"
	"bytes"
	_ "embed"
	"strings"
	"sync"
	"unicode"

	"github.com/rainycape/unidecode"

	"github.com/coregx/textguard/internal/ahocorasick"
)

//go:embed data/fanjian.tsv
var fanjianData []byte

//go:embed data/norm.tsv
var normData []byte

//go:embed data/delete.tsv
var deleteData []byte

//go:embed data/pinyin.tsv
var pinyinData []byte

// ReplaceTable is a leftmost-longest, maximal-munch substitution table
// over possibly multi-codepoint keys.
type ReplaceTable struct {
	trie         *ahocorasick.Trie
	replacements []string
}

// Replace runs the table once over s, returning the transformed string.
func (t *ReplaceTable) Replace(s string) string {
	if t == nil || t.trie == nil {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	t.trie.Walk(s, func(m ahocorasick.ReplaceMatch) {
		b.WriteString(s[last:m.StartByte])
		b.WriteString(t.replacements[m.Index])
		last = m.EndByte
	})
	b.WriteString(s[last:])
	return b.String()
}

// ReplaceTracked is Replace plus offset-map composition: offsets[i] must
// hold the original-text byte position that s[i] was derived from. The
// returned offsets slice has the same meaning for the result string,
// letting callers chain several tables while always mapping back to the
// true original bytes (spec.md §4.2's composition contract).
func (t *ReplaceTable) ReplaceTracked(s string, offsets []int) (string, []int) {
	if t == nil || t.trie == nil {
		return s, offsets
	}
	var b strings.Builder
	b.Grow(len(s))
	out := make([]int, 0, len(s))
	last := 0
	copyRun := func(from, to int) {
		b.WriteString(s[from:to])
		out = append(out, offsets[from:to]...)
	}
	t.trie.Walk(s, func(m ahocorasick.ReplaceMatch) {
		copyRun(last, m.StartByte)
		repl := t.replacements[m.Index]
		srcOffset := offsets[m.StartByte]
		b.WriteString(repl)
		for range len(repl) {
			out = append(out, srcOffset)
		}
		last = m.EndByte
	})
	copyRun(last, len(s))
	return b.String(), out
}

func buildReplaceTable(data []byte) *ReplaceTable {
	keys, repls := parseTSV(data)
	return &ReplaceTable{trie: ahocorasick.BuildTrie(keys), replacements: repls}
}

func parseTSV(data []byte) (keys, repls []string) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		key := parts[0]
		repl := ""
		if len(parts) == 2 {
			repl = parts[1]
		}
		if key == "" {
			continue
		}
		keys = append(keys, key)
		repls = append(repls, repl)
	}
	return keys, repls
}

// DeleteSet is a rune membership set for the Delete transform.
type DeleteSet struct {
	runes map[rune]bool
}

// Contains reports whether r should be dropped by the Delete transform:
// either it is in the curated punctuation/special set, or it is Unicode
// whitespace (the implicit WHITE_SPACE table, spec.md §3).
func (d *DeleteSet) Contains(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	return d.runes[r]
}

func buildDeleteSet(data []byte) *DeleteSet {
	d := &DeleteSet{runes: make(map[rune]bool)}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		for _, r := range line {
			d.runes[r] = true
			break // one rune per line; trailing content (if any) is ignored
		}
	}
	return d
}

// PinyinTable maps individual Han runes to lowercase syllables. Entries
// absent from the curated table fall back to unidecode's per-rune
// transliteration table, which is exactly the seam spec.md's ambiguity
// note describes: no multi-codepoint clusters, rune mapping always wins.
type PinyinTable struct {
	curated  map[rune]string
	fallback sync.Map // rune -> string, memoized unidecode lookups
}

// Syllable returns the lowercase pinyin syllable for r, and whether r is
// treated as a Han character at all (non-Han runes are copied as-is by the
// PinYin/PinYinChar transform).
func (p *PinyinTable) Syllable(r rune) (string, bool) {
	if s, ok := p.curated[r]; ok {
		return s, true
	}
	if !unicode.Is(unicode.Han, r) {
		return "", false
	}
	if v, ok := p.fallback.Load(r); ok {
		return v.(string), true
	}
	s := strings.ToLower(strings.TrimSpace(unidecode.Unidecode(string(r))))
	if s == "" {
		return "", false
	}
	p.fallback.Store(r, s)
	return s, true
}

func buildPinyinTable(data []byte) *PinyinTable {
	p := &PinyinTable{curated: make(map[rune]string)}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		rs := []rune(parts[0])
		if len(rs) != 1 {
			continue
		}
		p.curated[rs[0]] = strings.ToLower(parts[1])
	}
	return p
}

// Tables is the full set of character-class tables, built once and shared
// read-only across every Matcher constructed in the process.
type Tables struct {
	Fanjian *ReplaceTable
	Norm    *ReplaceTable
	Delete  *DeleteSet
	Pinyin  *PinyinTable
}

var (
	once   sync.Once
	shared *Tables
)

// Shared returns the process-wide table set, building it on first use and
// never rebuilding or mutating it afterward — the "construct on first use,
// never free" lifecycle spec.md §9 recommends for these tables.
func Shared() *Tables {
	once.Do(func() {
		shared = &Tables{
			Fanjian: buildReplaceTable(fanjianData),
			Norm:    buildReplaceTable(normData),
			Delete:  buildDeleteSet(deleteData),
			Pinyin:  buildPinyinTable(pinyinData),
		}
	})
	return shared
}
