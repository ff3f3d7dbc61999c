// Package process implements the text-process pipeline: C2 (the process
// matcher, one atomic transform at a time) and C3 (the reduce-process
// driver, which produces the minimal set of distinct normalized views for
// a bitmask of required transforms, sharing prefix work across views).
package process

import (
	"strings"
	"sync"
	"unicode"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
	"golang.org/x/text/width"

	"github.com/coregx/textguard/internal/chartable"
)

// Type is the 8-bit process-kind bitmask from spec.md §3/§6. Bit values are
// stable and match the external encoding exactly: None=0x01, Fanjian=0x02,
// Delete=0x04, Normalize=0x08, PinYin=0x10, PinYinChar=0x20.
type Type uint8

const (
	None Type = 1 << iota
	Fanjian
	Delete
	Normalize
	PinYin
	PinYinChar
)

// Convenience aliases from spec.md §6.
const (
	DeleteNormalize        = Delete | Normalize
	FanjianDeleteNormalize = Fanjian | Delete | Normalize
)

// Has reports whether bit is set in t.
func (t Type) Has(bit Type) bool { return t&bit != 0 }

// Valid reports whether t only uses known bits and does not set both
// PinYin and PinYinChar, which spec.md §3 calls out as mutually exclusive
// ("one subsumes the other").
func (t Type) Valid() bool {
	const known = None | Fanjian | Delete | Normalize | PinYin | PinYinChar
	if t&^known != 0 {
		return false
	}
	if t.Has(PinYin) && t.Has(PinYinChar) {
		return false
	}
	return true
}

// Offsets maps each byte of a transformed string back to the byte offset
// in the original input it was derived from (spec.md §4.2). Offsets has
// exactly one entry per byte of the transformed string.
type Offsets []int

func identityOffsets(n int) Offsets {
	o := make(Offsets, n)
	for i := range o {
		o[i] = i
	}
	return o
}

// View is one normalized rendering of an input text under a given Type
// mask, together with its offset map back to the original bytes.
type View struct {
	Type    Type
	Text    string
	Offsets Offsets
}

// Process applies the atomic transforms named by mask, in the fixed order
// Fanjian -> Delete -> Normalize -> (PinYin | PinYinChar), to text. This is
// the C2 operation: a single combined view, not the deduplicated set C3
// produces for many tables at once (see Reduce).
func Process(tables *chartable.Tables, mask Type, text string) View {
	if mask == None || mask == 0 {
		return View{Type: mask, Text: text, Offsets: identityOffsets(len(text))}
	}
	t, off := text, identityOffsets(len(text))
	if mask.Has(Fanjian) {
		t, off = applyReplace(tables.Fanjian, t, off)
	}
	if mask.Has(Delete) {
		t, off = applyDelete(tables, t, off)
	}
	if mask.Has(Normalize) {
		t, off = applyReplace(tables.Norm, t, off)
		t, off = applyWidthFold(t, off)
	}
	if mask.Has(PinYin) {
		t, off = applyPinyin(tables, t, off, true)
	} else if mask.Has(PinYinChar) {
		t, off = applyPinyin(tables, t, off, false)
	}
	return View{Type: mask, Text: t, Offsets: off}
}

func applyReplace(table *chartable.ReplaceTable, text string, offsets Offsets) (string, Offsets) {
	return table.ReplaceTracked(text, offsets)
}

// builderPool reuses scratch strings.Builder across transform stages
// instead of allocating one per call. The initial capacity each builder
// grows to on first use is sized from total system memory once, the first
// time a builder is requested: a box with headroom keeps bigger reusable buffers
// around, a constrained one shrinks the pool and re-allocates more
// often rather than holding onto memory it doesn't have.
var builderPool = sync.Pool{New: func() any { return new(strings.Builder) }}

var (
	builderCapOnce sync.Once
	builderCap     int
)

func defaultBuilderCap() int {
	builderCapOnce.Do(func() {
		switch total := memory.TotalMemory(); {
		case total == 0, total < 512*1024*1024:
			builderCap = 256
		case total < 4*1024*1024*1024:
			builderCap = 1024
		default:
			builderCap = 4096
		}
	})
	return builderCap
}

func getBuilder(hint int) *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	if hint < defaultBuilderCap() {
		hint = defaultBuilderCap()
	}
	b.Grow(hint)
	return b
}

func putBuilder(b *strings.Builder) {
	builderPool.Put(b)
}

// applyDelete drops every rune the Delete transform's table or implicit
// whitespace set matches. Pure-ASCII input (the common case for log
// lines and chat text) takes a byte-indexed fast path when the running
// CPU advertises SSE4.2, skipping the rune-decode step entirely;
// anything else falls back to the general rune walk.
func applyDelete(tables *chartable.Tables, text string, offsets Offsets) (string, Offsets) {
	if cpuid.CPU.SSE42 && isASCII(text) {
		return applyDeleteASCII(tables, text, offsets)
	}

	b := getBuilder(len(text))
	defer putBuilder(b)
	out := make(Offsets, 0, len(text))
	for i, r := range text {
		if tables.Delete.Contains(r) {
			continue
		}
		rb := string(r)
		b.WriteString(rb)
		for range len(rb) {
			out = append(out, offsets[i])
		}
	}
	return b.String(), out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func applyDeleteASCII(tables *chartable.Tables, text string, offsets Offsets) (string, Offsets) {
	b := getBuilder(len(text))
	defer putBuilder(b)
	out := make(Offsets, 0, len(text))
	for i := 0; i < len(text); i++ {
		r := rune(text[i])
		if tables.Delete.Contains(r) {
			continue
		}
		b.WriteByte(text[i])
		out = append(out, offsets[i])
	}
	return b.String(), out
}

// applyWidthFold folds fullwidth/halfwidth forms the curated NORM table
// has no entry for (spec.md §4.1's normalization is explicitly a curated
// table plus "implicit" classes, not an exhaustive enumeration). Run
// after the table-driven replace so curated entries still take priority
// for anything they cover.
func applyWidthFold(text string, offsets Offsets) (string, Offsets) {
	b := getBuilder(len(text))
	defer putBuilder(b)
	out := make(Offsets, 0, len(text))
	for i, r := range text {
		folded := width.Fold.String(string(r))
		b.WriteString(folded)
		for range len(folded) {
			out = append(out, offsets[i])
		}
	}
	return b.String(), out
}

// applyPinyin replaces Han runes with their syllable. In spaced mode
// (PinYin) a single space separates each syllable from the rune next to it
// on either side, so runs of Han characters read as whitespace-delimited
// syllables ("ni hao") and a non-Han rune between two Han runes stands
// apart ("ni a hao"); no space is added at the start or end of the text,
// or next to a rune that is already whitespace. In unspaced mode
// (PinYinChar) syllables are concatenated directly. Non-Han runes are
// copied through unchanged.
func applyPinyin(tables *chartable.Tables, text string, offsets Offsets, spaced bool) (string, Offsets) {
	var b strings.Builder
	b.Grow(len(text) * 2)
	out := make(Offsets, 0, len(text)*2)
	prevSyllable := false
	prevSpace := true // nothing written yet, or the last rune written was whitespace

	write := func(s string, srcOffset int) {
		b.WriteString(s)
		for range len(s) {
			out = append(out, srcOffset)
		}
	}

	for i, r := range text {
		syl, isHan := "", false
		if unicode.Is(unicode.Han, r) {
			syl, isHan = tables.Pinyin.Syllable(r)
		}
		if !isHan {
			if spaced && prevSyllable && !unicode.IsSpace(r) {
				write(" ", offsets[i])
			}
			write(string(r), offsets[i])
			prevSyllable = false
			prevSpace = unicode.IsSpace(r)
			continue
		}
		if spaced && !prevSpace {
			write(" ", offsets[i])
		}
		write(syl, offsets[i])
		prevSyllable = true
		prevSpace = false
	}

	return b.String(), out
}
