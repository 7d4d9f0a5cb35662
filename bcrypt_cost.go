//go:build !race

package account

// DefaultHashCost is the bcrypt work factor used outside race-enabled builds.
var DefaultHashCost = 14

func passwordHashCost() int {
	return DefaultHashCost
}
