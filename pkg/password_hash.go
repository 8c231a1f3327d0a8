package pkg

import "golang.org/x/crypto/bcrypt"

const (
	// DefaultHashCost keeps a single hash/verify around 100ms on commodity hardware.
	DefaultHashCost = 10
	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
)

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultHashCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return BytesToString(bytes), err
}

// CheckPasswordHash relies on bcrypt's own comparison, which does not
// short-circuit on the first differing byte.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
