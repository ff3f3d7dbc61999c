// Package textguard is a high-performance, multi-modal text matcher for
// large dictionaries of sensitive or watchlist words. It supports exact
// multi-pattern matching with boolean sub-word expressions, regex-based
// matching (similar-character expansion, acrostic, raw regex), and
// approximate edit-distance matching, all layered over a configurable
// Unicode text-normalization pipeline (traditional-to-simplified Han
// conversion, punctuation/whitespace deletion, character folding, and
// pinyin romanization).
package textguard

import (
	"github.com/coregx/textguard/internal/process"
	"github.com/coregx/textguard/internal/regexmatch"
	"github.com/coregx/textguard/internal/similarity"
)

// ProcessType is the process-kind bitmask from spec.md §3: an 8-bit set of
// atomic text-normalization transforms that may be combined freely, except
// that PinYin and PinYinChar are mutually exclusive.
type ProcessType = process.Type

// Atomic process kinds and their stable external bit encoding.
const (
	None       = process.None
	Fanjian    = process.Fanjian
	Delete     = process.Delete
	Normalize  = process.Normalize
	PinYin     = process.PinYin
	PinYinChar = process.PinYinChar
)

// Convenience aliases matching commonly configured combinations.
const (
	DeleteNormalize        = process.DeleteNormalize
	FanjianDeleteNormalize = process.FanjianDeleteNormalize
)

// RegexKind selects how a Regex match table's word list expands into a
// compiled regular expression (spec.md §4.5).
type RegexKind = regexmatch.Kind

const (
	SimilarChar = regexmatch.SimilarChar
	Acrostic    = regexmatch.Acrostic
	Regex       = regexmatch.Regex
)

// SimKind selects the edit-distance algorithm a Similar match table uses
// (spec.md §4.6, extended by SPEC_FULL.md with DamerauLevenshtein).
type SimKind = similarity.Kind

const (
	Levenshtein        = similarity.Levenshtein
	DamerauLevenshtein = similarity.DamerauLevenshtein
)

// MatchTableKind is the variant discriminator for a MatchTable, mirroring
// spec.md §3's `match_table_type` field. It decides which of a table's
// kind-specific fields apply: RegexKind for KindRegex, SimKind and
// Threshold for KindSimilar; KindSimple uses neither.
type MatchTableKind int

const (
	KindSimple MatchTableKind = iota
	KindRegex
	KindSimilar
)

// MatchTable is one configured table: a typed bundle of patterns sharing a
// process_type (and, for Regex/Similar, a kind/threshold), plus an optional
// exemption list that suppresses this table's hits when matched.
type MatchTable struct {
	TableID     uint32
	Kind        MatchTableKind
	ProcessType ProcessType

	// Regex-only.
	RegexKind RegexKind

	// Similar-only.
	SimKind   SimKind
	Threshold float32

	// WordList holds one pattern per configured word. WordIDs, parallel to
	// WordList, supplies each pattern's word_id; if nil, word_ids default
	// to the table-local index.
	WordList []string
	WordIDs  []uint32

	ExemptionProcessType ProcessType
	ExemptionWordList    []string
}

// MatchTableMap is the full table catalog: an ordered sequence of tables
// per match_id (spec.md §3's "Match-table map").
type MatchTableMap map[uint32][]MatchTable

// Result is one match record, per spec.md §3: `similarity` is 1.0 for
// exact (Simple, Regex) hits and the normalized edit-distance score in
// [0,1] for Similar hits.
type Result struct {
	MatchID    uint32
	TableID    uint32
	WordID     uint32
	Word       string
	Similarity float32
}
