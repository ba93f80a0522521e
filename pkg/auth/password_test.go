package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse battery"))
	assert.Error(t, ComparePassword(hash, "wrong password"))
}

func TestHashPassword_LengthBounds(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)

	long := make([]byte, MaxPasswordLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = HashPassword(string(long))
	assert.Error(t, err)
}
