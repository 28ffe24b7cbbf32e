package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenIsURLSafe(t *testing.T) {
	tok, err := GenerateToken(32)
	require.NoError(t, err)

	// 32 bytes encode to 43 chars without padding
	assert.Len(t, tok, 43)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), tok)
}

func TestGenerateTokenIsUnique(t *testing.T) {
	seen := map[string]bool{}

	for range 100 {
		tok, err := GenerateToken(16)
		require.NoError(t, err)
		require.False(t, seen[tok], "token collision")
		seen[tok] = true
	}
}
