package account_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-account"
)

func TestHashAndComparePassword(t *testing.T) {
	hash := testPasswordHash(t)
	assert.NotEqual(t, testPassword, hash)

	assert.NoError(t, account.ComparePasswordAndHash(testPassword, hash))
	assert.ErrorIs(t, account.ComparePasswordAndHash("wrong-pass", hash), account.ErrWrongPassword)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := account.HashPassword("")
	assert.ErrorIs(t, err, account.ErrMissingPassword)
}

func TestHashPasswordTooLong(t *testing.T) {
	// bcrypt rejects passwords beyond 72 bytes
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}

	_, err := account.HashPassword(string(long))
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, account.ErrHash.TextCode, richErr.TextCode)
}

func TestComparePasswordAndHashGarbage(t *testing.T) {
	err := account.ComparePasswordAndHash(testPassword, "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, account.ErrWrongPassword)
}
