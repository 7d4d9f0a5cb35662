//go:build race

package account

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// race-enabled builds drop to the library default so suites stay inside their timeouts
	return bcrypt.DefaultCost
}
