package regexmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/textguard/internal/process"
)

func TestMatcher_SimilarCharExpandsAlternation(t *testing.T) {
	m, err := Build([]WordEntry{
		{ProcessType: process.None, Kind: SimilarChar, WordID: 1, Pattern: "hello,hallo"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.Match(process.None, "say hallo there"))
	assert.NotEmpty(t, m.Match(process.None, "say hello there"))
	assert.Empty(t, m.Match(process.None, "say hullo there"))
}

func TestMatcher_SimilarCharRejectsEmptyGroup(t *testing.T) {
	_, err := Build([]WordEntry{
		{ProcessType: process.None, Kind: SimilarChar, WordID: 1, Pattern: "hello,,hallo"},
	})
	require.Error(t, err)
}

func TestMatcher_AcrosticMatchesInitials(t *testing.T) {
	m, err := Build([]WordEntry{
		{ProcessType: process.None, Kind: Acrostic, WordID: 1, Pattern: "h,e,l,l,o"},
	})
	require.NoError(t, err)

	text := "hold\nevery\nlong\nlist\nopen"
	assert.NotEmpty(t, m.Match(process.None, text))
}

func TestMatcher_AcrosticRejectsMultiRuneSegment(t *testing.T) {
	_, err := Build([]WordEntry{
		{ProcessType: process.None, Kind: Acrostic, WordID: 1, Pattern: "ab,c"},
	})
	require.Error(t, err)
}

func TestMatcher_RawRegexPassthrough(t *testing.T) {
	m, err := Build([]WordEntry{
		{ProcessType: process.None, Kind: Regex, WordID: 1, Pattern: `\d{3}-\d{4}`},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.Match(process.None, "call 555-1234 now"))
	assert.Empty(t, m.Match(process.None, "no numbers here"))
}

func TestMatcher_CompileFailureSurfacesInvalidRegex(t *testing.T) {
	_, err := Build([]WordEntry{
		{ProcessType: process.None, Kind: Regex, WordID: 1, Pattern: "(unclosed"},
	})
	require.Error(t, err)
}

func TestMatcher_CaseInsensitiveASCII(t *testing.T) {
	m, err := Build([]WordEntry{
		{ProcessType: process.None, Kind: Regex, WordID: 1, Pattern: "danger"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.Match(process.None, "DANGER ahead"))
}
