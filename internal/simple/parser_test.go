package simple

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleConjunction(t *testing.T) {
	p, err := Parse(1, "hello&world")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, p.PositiveWords)
	assert.Equal(t, []int{1, 1}, p.PositiveRequired)
	assert.Empty(t, p.NegativeWords)
}

func TestParse_RepetitionCounts(t *testing.T) {
	p, err := Parse(1, "无&法&无&天")
	require.NoError(t, err)
	assert.Equal(t, []string{"无", "法", "天"}, p.PositiveWords)
	assert.Equal(t, []int{2, 1, 1}, p.PositiveRequired)
}

func TestParse_OccurrenceClampsAtEight(t *testing.T) {
	p, err := Parse(1, "a&a&a&a&a&a&a&a&a&a")
	require.NoError(t, err)
	assert.Equal(t, 8, p.PositiveRequired[0])
}

func TestParse_Negation(t *testing.T) {
	p, err := Parse(1, "hello~world")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, p.PositiveWords)
	assert.Equal(t, []string{"world"}, p.NegativeWords)
}

func TestParse_MultipleNegatives(t *testing.T) {
	p, err := Parse(1, "a~b~c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, p.NegativeWords)
}

func TestParse_RejectsAndAfterNot(t *testing.T) {
	_, err := Parse(1, "a~b&c")
	require.Error(t, err)
}

func TestParse_RejectsEmptyPattern(t *testing.T) {
	_, err := Parse(1, "")
	require.Error(t, err)
}

func TestParse_RejectsEmptySubword(t *testing.T) {
	_, err := Parse(1, "a&&b")
	require.Error(t, err)
}

func TestParse_RejectsTooManyPositives(t *testing.T) {
	pattern := ""
	for i := 0; i < 33; i++ {
		if i > 0 {
			pattern += "&"
		}
		pattern += string(rune(0x4E00 + i))
	}
	_, err := Parse(1, pattern)
	require.Error(t, err)
}
