package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/textguard/internal/chartable"
)

func TestType_Has(t *testing.T) {
	mask := Fanjian | Delete
	assert.True(t, mask.Has(Fanjian))
	assert.True(t, mask.Has(Delete))
	assert.False(t, mask.Has(Normalize))
}

func TestType_Valid(t *testing.T) {
	assert.True(t, (Fanjian | Delete | Normalize).Valid())
	assert.True(t, None.Valid())
	assert.False(t, (PinYin | PinYinChar).Valid())
	assert.False(t, Type(0x80).Valid())
}

func TestType_StableEncoding(t *testing.T) {
	assert.Equal(t, Type(0x01), None)
	assert.Equal(t, Type(0x02), Fanjian)
	assert.Equal(t, Type(0x04), Delete)
	assert.Equal(t, Type(0x08), Normalize)
	assert.Equal(t, Type(0x10), PinYin)
	assert.Equal(t, Type(0x20), PinYinChar)
	assert.Equal(t, Type(0x0C), DeleteNormalize)
	assert.Equal(t, Type(0x0E), FanjianDeleteNormalize)
}

func TestProcess_None(t *testing.T) {
	v := Process(nil, None, "hello")
	assert.Equal(t, "hello", v.Text)
}

func TestProcess_FanjianDeleteNormalize(t *testing.T) {
	tables := chartable.Shared()
	v := Process(tables, FanjianDeleteNormalize, "妳好，世界⒈")
	assert.Equal(t, "你好世界1", v.Text)
}

func TestProcess_Delete_RemovesWhitespaceAndPunctuation(t *testing.T) {
	tables := chartable.Shared()
	v := Process(tables, Delete, "a, b. c!")
	assert.Equal(t, "abc", v.Text)
}

func TestProcess_PinYin_SpacedSyllables(t *testing.T) {
	tables := chartable.Shared()
	v := Process(tables, PinYin, "洗按")
	assert.Equal(t, "xi an", v.Text)
}

func TestProcess_PinYinChar_NoSpaces(t *testing.T) {
	tables := chartable.Shared()
	v := Process(tables, PinYinChar, "洗按")
	assert.Equal(t, "xian", v.Text)
}

func TestProcess_PinYin_NonHanPassesThroughAndResetsSeparator(t *testing.T) {
	tables := chartable.Shared()
	v := Process(tables, PinYin, "你a好")
	assert.Equal(t, "ni a hao", v.Text)
}

func TestProcess_OffsetsMapBackToOriginalBytes(t *testing.T) {
	tables := chartable.Shared()
	text := "a妳b"
	v := Process(tables, Fanjian, text)
	require.Len(t, v.Offsets, len(v.Text))
	assert.Equal(t, 0, v.Offsets[0])
}

func TestProcess_Normalize_FoldsUncuratedFullwidth(t *testing.T) {
	tables := chartable.Shared()
	v := Process(tables, Normalize, "Ｈi")
	assert.Equal(t, "Hi", v.Text, "fullwidth H has no norm.tsv entry, so only width.Fold can catch it")
}

func TestReduce_AgreesWithProcessOnNormalize(t *testing.T) {
	tables := chartable.Shared()
	text := "Ｈi，world"
	want := Process(tables, DeleteNormalize, text).Text
	got := Reduce(tables, []Type{DeleteNormalize}, text)[DeleteNormalize].Text
	assert.Equal(t, want, got, "Reduce and Process must normalize query views and pattern dictionaries identically")
}

func TestProcess_IsIdempotentForNonPinYinKinds(t *testing.T) {
	tables := chartable.Shared()
	for _, k := range []Type{Fanjian, Normalize, Delete, PinYinChar} {
		once := Process(tables, k, "妳好，世界").Text
		twice := Process(tables, k, once).Text
		assert.Equal(t, once, twice, "kind %v should be idempotent", k)
	}
}
