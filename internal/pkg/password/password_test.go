package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndMatches(t *testing.T) {
	hash, err := Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, Matches(hash, "password123"))
	assert.False(t, Matches(hash, "password124"))
	assert.False(t, Matches("not-a-hash", "password123"))
}

func TestHash_TooLong(t *testing.T) {
	_, err := Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestGenerateTemporary(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := GenerateTemporary()
		require.NoError(t, err)
		assert.Len(t, p, TemporaryLength)
		assert.True(t, strings.ContainsAny(p, lower))
		assert.True(t, strings.ContainsAny(p, upper))
		assert.True(t, strings.ContainsAny(p, digits))
		assert.True(t, strings.ContainsAny(p, symbols))
		seen[p] = true
	}
	assert.Len(t, seen, 20)
}
