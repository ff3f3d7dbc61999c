package chartable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShared_IsMemoizedSingleton(t *testing.T) {
	a := Shared()
	b := Shared()
	assert.Same(t, a, b)
}

func TestFanjian_TraditionalToSimplified(t *testing.T) {
	tables := Shared()
	assert.Equal(t, "你", tables.Fanjian.Replace("妳"))
	assert.Equal(t, "为", tables.Fanjian.Replace("爲"))
}

func TestNorm_FullwidthAndCircled(t *testing.T) {
	tables := Shared()
	assert.Equal(t, "1", tables.Norm.Replace("⒈"))
	assert.Equal(t, "012", tables.Norm.Replace("０１２"))
}

func TestDeleteSet_PunctuationAndWhitespace(t *testing.T) {
	tables := Shared()
	assert.True(t, tables.Delete.Contains('，'))
	assert.True(t, tables.Delete.Contains(' '))
	assert.False(t, tables.Delete.Contains('a'))
}

func TestPinyinTable_CuratedLookup(t *testing.T) {
	tables := Shared()
	syl, ok := tables.Pinyin.Syllable('你')
	require.True(t, ok)
	assert.Equal(t, "ni", syl)
}

func TestPinyinTable_FallsBackForUncuratedHan(t *testing.T) {
	tables := Shared()
	syl, ok := tables.Pinyin.Syllable('龘') // not in the curated table
	require.True(t, ok)
	assert.NotEmpty(t, syl)
}

func TestPinyinTable_NonHanHasNoSyllable(t *testing.T) {
	tables := Shared()
	_, ok := tables.Pinyin.Syllable('a')
	assert.False(t, ok)
}

func TestReplaceTracked_MapsOffsetsBackToOriginal(t *testing.T) {
	tables := Shared()
	text := "a妳b"
	offsets := make([]int, 0, len(text))
	for i := range text {
		offsets = append(offsets, i)
	}
	// ReplaceTracked operates on byte offsets aligned with the string, not
	// a sparse rune-index slice, so build a full per-byte identity map.
	full := make([]int, len(text))
	for i := range full {
		full[i] = i
	}
	out, outOffsets := tables.Fanjian.ReplaceTracked(text, full)
	assert.Equal(t, "a你b", out)
	require.Len(t, outOffsets, len(out))
	// the replacement byte for "你" should map back to where "妳" started.
	assert.Equal(t, 1, outOffsets[1])
}
