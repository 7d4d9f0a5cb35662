package account

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenSize is the number of random bytes behind a minted token.
var DefaultTokenSize = 16

// MintToken draws size random bytes from the secure source and renders them
// as lowercase hex. A failing random source is fatal, we do not retry.
func MintToken(size int) (string, error) {
	if size <= 0 {
		size = DefaultTokenSize
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, ErrRandomSource.Category, ErrRandomSource.Message).
			WithTextCode(ErrRandomSource.TextCode)
	}

	return hex.EncodeToString(buf), nil
}

// TokensEqual compares two tokens in constant time.
func TokensEqual(a, b string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
