package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("user-1", "Ada", "ada@example.com", "courseattend", "test-key", time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse(pair.AccessToken, "test-key", "courseattend")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestParseRejectsBadKey(t *testing.T) {
	pair, err := Issue("user-1", "Ada", "ada@example.com", "courseattend", "test-key", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-key", "courseattend")
	assert.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("user-1", "Ada", "ada@example.com", "someone-else", "test-key", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "test-key", "courseattend")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("user-1", "Ada", "ada@example.com", "courseattend", "test-key", -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "test-key", "courseattend")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}
