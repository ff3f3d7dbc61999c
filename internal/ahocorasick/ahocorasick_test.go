package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutomaton_ScanCountsOverlappingOccurrences(t *testing.T) {
	a := Build([]string{"a"})
	hits := a.Scan("aa")
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Index)
	assert.Equal(t, 0, hits[1].Index)
}

func TestAutomaton_ScanMultiplePatterns(t *testing.T) {
	a := Build([]string{"he", "she", "his", "hers"})
	hits := a.Scan("ushers")
	var indices []int
	for _, h := range hits {
		indices = append(indices, h.Index)
	}
	// "she" at 1..4, "he" at 2..4, "hers" at 2..6 all occur in "ushers".
	assert.Contains(t, indices, 1) // she
	assert.Contains(t, indices, 0) // he
	assert.Contains(t, indices, 3) // hers
}

func TestAutomaton_ScanUnicode(t *testing.T) {
	a := Build([]string{"你好", "好"})
	hits := a.Scan("你好吗")
	require.Len(t, hits, 2)
}

func TestAutomaton_ContainsShortCircuits(t *testing.T) {
	a := Build([]string{"needle"})
	assert.True(t, a.Contains("a needle in a haystack"))
	assert.False(t, a.Contains("nothing here"))
}

func TestAutomaton_EmptyDictionary(t *testing.T) {
	a := Build(nil)
	assert.Nil(t, a.Scan("anything"))
	assert.False(t, a.Contains("anything"))
}

func TestTrie_ReplaceLeftmostLongest(t *testing.T) {
	trie := BuildTrie([]string{"a", "ab", "abc"})
	var matches []ReplaceMatch
	trie.Walk("xabcy", func(m ReplaceMatch) {
		matches = append(matches, m)
	})
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].Index) // "abc" wins over "a"/"ab"
	assert.Equal(t, 1, matches[0].StartByte)
	assert.Equal(t, 4, matches[0].EndByte)
}

func TestTrie_ReplaceNonOverlappingAdvance(t *testing.T) {
	trie := BuildTrie([]string{"ab"})
	var matches []ReplaceMatch
	trie.Walk("abab", func(m ReplaceMatch) {
		matches = append(matches, m)
	})
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].StartByte)
	assert.Equal(t, 2, matches[1].StartByte)
}

func TestTrie_FirstDeclaredWinsOnTie(t *testing.T) {
	trie := BuildTrie([]string{"ab", "ab"})
	var matches []ReplaceMatch
	trie.Walk("ab", func(m ReplaceMatch) {
		matches = append(matches, m)
	})
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Index)
}
