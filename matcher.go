package textguard

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/coregx/textguard/internal/ahocorasick"
	"github.com/coregx/textguard/internal/chartable"
	"github.com/coregx/textguard/internal/config"
	"github.com/coregx/textguard/internal/process"
	"github.com/coregx/textguard/internal/regexmatch"
	"github.com/coregx/textguard/internal/similarity"
	"github.com/coregx/textguard/internal/simple"
)

// tableEntry is a MatchTable together with the match_id it was declared
// under, flattened for internal bookkeeping.
type tableEntry struct {
	matchID uint32
	table   MatchTable
}

// exemption is the compiled suppression check for one table.
type exemption struct {
	processType ProcessType
	automaton   *ahocorasick.Automaton
}

// Matcher is the composite matcher (C7): an immutable, owning aggregate
// built once from a MatchTableMap and safe to query concurrently from many
// goroutines thereafter, mirroring the "construct on first use, never
// mutate" lifecycle spec.md §5 requires.
type Matcher struct {
	simpleM *simple.Matcher
	regexM  *regexmatch.Matcher
	simM    *similarity.Matcher
	tables  []tableEntry
	exempt  map[uint32]exemption // table_id -> exemption
	masks   []process.Type
	log     *slog.Logger
	stats   Stats
}

// NewMatcher fans construction of the C4/C5/C6 sub-engines out across
// goroutines via golang.org/x/sync/errgroup, the same construction-time
// parallelism pattern storbeck-augustus uses for its scanner's probe
// fan-out (pkg/scanner/scanner.go), adapted here from per-query concurrency
// to one-shot per-engine construction concurrency.
func NewMatcher(tables MatchTableMap) (*Matcher, error) {
	var flat []tableEntry
	for matchID, ts := range tables {
		for _, t := range ts {
			flat = append(flat, tableEntry{matchID: matchID, table: t})
		}
	}

	var simpleEntries []simple.WordEntry
	var regexEntries []regexmatch.WordEntry
	var simEntries []similarity.WordEntry
	exempt := make(map[uint32]exemption)
	maskSet := make(map[process.Type]bool)

	for _, te := range flat {
		t := te.table
		if !t.ProcessType.Valid() {
			return nil, config.New(config.UnknownTransform, fmt.Sprintf("table_id=%d process_type=%#x", t.TableID, uint8(t.ProcessType)), nil)
		}
		maskSet[t.ProcessType] = true
		if len(t.ExemptionWordList) > 0 {
			if !t.ExemptionProcessType.Valid() {
				return nil, config.New(config.UnknownTransform, fmt.Sprintf("table_id=%d exemption_process_type=%#x", t.TableID, uint8(t.ExemptionProcessType)), nil)
			}
			maskSet[t.ExemptionProcessType] = true
		}
		if err := config.ValidateWordList(t.TableID, t.WordList); err != nil {
			return nil, err
		}

		switch t.Kind {
		case KindSimilar:
			if err := config.ValidateThreshold(t.TableID, t.Threshold); err != nil {
				return nil, err
			}
		}

		for i, w := range t.WordList {
			wordID := uint32(i)
			if i < len(t.WordIDs) {
				wordID = t.WordIDs[i]
			}
			switch t.Kind {
			case KindSimple:
				simpleEntries = append(simpleEntries, simple.WordEntry{
					ProcessType: t.ProcessType, WordID: wordID, Pattern: w,
				})
			case KindRegex:
				regexEntries = append(regexEntries, regexmatch.WordEntry{
					ProcessType: t.ProcessType, Kind: t.RegexKind, WordID: wordID, Pattern: w,
				})
			case KindSimilar:
				simEntries = append(simEntries, similarity.WordEntry{
					ProcessType: t.ProcessType, Kind: t.SimKind, WordID: wordID, Word: w, Threshold: t.Threshold,
				})
			}
		}

		if len(t.ExemptionWordList) > 0 {
			exempt[t.TableID] = exemption{
				processType: t.ExemptionProcessType,
				automaton:   ahocorasick.Build(t.ExemptionWordList),
			}
		}
	}

	var (
		simpleM *simple.Matcher
		regexM  *regexmatch.Matcher
		simM    *similarity.Matcher
	)
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		simpleM, err = simple.Build(simpleEntries)
		return err
	})
	g.Go(func() error {
		var err error
		regexM, err = regexmatch.Build(regexEntries)
		return err
	})
	g.Go(func() error {
		simM = similarity.Build(simEntries)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	masks := make([]process.Type, 0, len(maskSet))
	for m := range maskSet {
		masks = append(masks, m)
	}

	stats := Stats{
		TableCount:       len(flat),
		SimpleSubwords:   len(simpleEntries),
		RegexPatterns:    len(regexEntries),
		SimilarityWords:  len(simEntries),
		ProcessTypeCount: len(masks),
	}

	return &Matcher{
		simpleM: simpleM,
		regexM:  regexM,
		simM:    simM,
		tables:  flat,
		exempt:  exempt,
		masks:   masks,
		stats:   stats,
		log:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}, nil
}

// Stats reports construction-time counters: how many tables were
// compiled, how many configured word-list entries each sub-engine holds
// (SimpleSubwords counts Simple patterns such as "a&b" once each, not the
// sub-words inside them), and how many distinct process_types are
// exercised. It is a point-in-time
// snapshot taken once at construction; query traffic never updates it,
// mirroring the teacher's Engine.Stats() being a plain struct return
// rather than a live view into mutable state.
type Stats struct {
	TableCount       int
	SimpleSubwords   int
	RegexPatterns    int
	SimilarityWords  int
	ProcessTypeCount int
}

// Stats returns the matcher's construction-time counters.
func (m *Matcher) Stats() Stats {
	return m.stats
}

// SetLogger replaces the matcher's diagnostic logger (used only for
// best-effort warnings, e.g. a view request for a process_type that
// somehow has no compiled sub-engine); queries never fail because of it.
func (m *Matcher) SetLogger(l *slog.Logger) {
	if l != nil {
		m.log = l
	}
}

// IsMatch reports whether any table's hits survive exemption, short
// circuiting on the first surviving hit (spec.md §4.7).
func (m *Matcher) IsMatch(text string) bool {
	views := process.Reduce(chartable.Shared(), m.masks, text)
	for _, te := range m.tables {
		if m.tableHasSurvivingHit(te.table, views) {
			return true
		}
	}
	return false
}

// Process returns every surviving result across every table, flattened,
// ordered deterministically by (match_id, table_id, word_id).
func (m *Matcher) Process(text string) []Result {
	views := process.Reduce(chartable.Shared(), m.masks, text)
	var results []Result
	for _, te := range m.tables {
		results = append(results, m.tableResults(te, views)...)
	}
	sortResults(results)
	return results
}

// WordMatch returns surviving results grouped by match_id; a match_id is
// present iff at least one of its tables produced a surviving hit.
func (m *Matcher) WordMatch(text string) map[uint32][]Result {
	views := process.Reduce(chartable.Shared(), m.masks, text)
	out := make(map[uint32][]Result)
	for _, te := range m.tables {
		rs := m.tableResults(te, views)
		if len(rs) == 0 {
			continue
		}
		out[te.matchID] = append(out[te.matchID], rs...)
	}
	for id := range out {
		sortResults(out[id])
	}
	return out
}

func (m *Matcher) tableHasSurvivingHit(t MatchTable, views map[process.Type]process.View) bool {
	if _, ok := views[t.ProcessType]; !ok {
		m.log.Warn("no view for process_type", "table_id", t.TableID)
		return false
	}
	if len(m.rawTableResults(tableEntry{table: t}, views)) == 0 {
		return false
	}
	return !m.exempted(t, views)
}

func (m *Matcher) tableResults(te tableEntry, views map[process.Type]process.View) []Result {
	if _, ok := views[te.table.ProcessType]; !ok {
		m.log.Warn("no view for process_type", "table_id", te.table.TableID)
		return nil
	}
	results := m.rawTableResults(te, views)
	if len(results) == 0 {
		return nil
	}
	if m.exempted(te.table, views) {
		return nil
	}
	return results
}

// exempted reports whether table t's hits should be discarded: any word in
// its exemption_word_list was found in the exemption_process_type view.
func (m *Matcher) exempted(t MatchTable, views map[process.Type]process.View) bool {
	ex, ok := m.exempt[t.TableID]
	if !ok {
		return false
	}
	view, ok := views[ex.processType]
	if !ok {
		return false
	}
	return ex.automaton.Contains(view.Text)
}

// TableStage names the point a table's query reached in the state machine
// spec.md §4.7 describes: `start -> scanning -> {hit_pending, no_hit} ->
// exemption_check -> {emitted, suppressed}`.
type TableStage int

const (
	StageNoHit TableStage = iota
	StageSuppressed
	StageEmitted
)

func (s TableStage) String() string {
	switch s {
	case StageNoHit:
		return "no_hit"
	case StageSuppressed:
		return "suppressed"
	case StageEmitted:
		return "emitted"
	default:
		return "unknown"
	}
}

// TableTrace is one table's Explain outcome: which stage it reached and,
// for Emitted, the surviving results.
type TableTrace struct {
	MatchID uint32
	TableID uint32
	Stage   TableStage
	Results []Result
}

// Explain runs every table's query against text without short-circuiting,
// reporting the stage each one reached. It never mutates matcher state and
// has no effect on IsMatch/Process/WordMatch; it exists purely to let
// callers (and the language bindings built on this module) see why a
// table did or didn't contribute to a result.
func (m *Matcher) Explain(text string) []TableTrace {
	views := process.Reduce(chartable.Shared(), m.masks, text)
	traces := make([]TableTrace, 0, len(m.tables))
	for _, te := range m.tables {
		rs := m.rawTableResults(te, views)
		if len(rs) == 0 {
			traces = append(traces, TableTrace{MatchID: te.matchID, TableID: te.table.TableID, Stage: StageNoHit})
			continue
		}
		if m.exempted(te.table, views) {
			traces = append(traces, TableTrace{MatchID: te.matchID, TableID: te.table.TableID, Stage: StageSuppressed})
			continue
		}
		traces = append(traces, TableTrace{MatchID: te.matchID, TableID: te.table.TableID, Stage: StageEmitted, Results: rs})
	}
	return traces
}

// rawTableResults is tableResults without the exemption check, shared by
// Explain so it can report no_hit, suppressed and emitted separately. The
// sub-engines are keyed by process_type, so their hits are filtered down to
// the word_ids this table configured.
func (m *Matcher) rawTableResults(te tableEntry, views map[process.Type]process.View) []Result {
	t := te.table
	view, ok := views[t.ProcessType]
	if !ok {
		return nil
	}
	own := make(map[uint32]bool, len(t.WordList))
	for i := range t.WordList {
		id := uint32(i)
		if i < len(t.WordIDs) {
			id = t.WordIDs[i]
		}
		own[id] = true
	}
	var results []Result
	switch t.Kind {
	case KindSimple:
		for _, h := range m.simpleM.Match(t.ProcessType, view.Text) {
			results = append(results, Result{MatchID: te.matchID, TableID: t.TableID, WordID: h.WordID, Word: h.Word, Similarity: 1.0})
		}
	case KindRegex:
		for _, h := range m.regexM.Match(t.ProcessType, view.Text) {
			results = append(results, Result{MatchID: te.matchID, TableID: t.TableID, WordID: h.WordID, Word: h.Word, Similarity: 1.0})
		}
	case KindSimilar:
		for _, h := range m.simM.Match(t.ProcessType, view.Text) {
			results = append(results, Result{MatchID: te.matchID, TableID: t.TableID, WordID: h.WordID, Word: h.Word, Similarity: h.Similarity})
		}
	}
	kept := results[:0]
	for _, r := range results {
		if own[r.WordID] {
			kept = append(kept, r)
		}
	}
	return kept
}

func sortResults(rs []Result) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].MatchID != rs[j].MatchID {
			return rs[i].MatchID < rs[j].MatchID
		}
		if rs[i].TableID != rs[j].TableID {
			return rs[i].TableID < rs[j].TableID
		}
		return rs[i].WordID < rs[j].WordID
	})
}
