package auth

import "golang.org/x/crypto/bcrypt"

// BcryptHasher is the default PasswordHasher, backed by
// golang.org/x/crypto/bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a BcryptHasher using bcrypt's default cost.
func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{Cost: bcrypt.DefaultCost}
}

// Hash returns password's bcrypt hash.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether candidate matches verifier.
func (h BcryptHasher) Compare(verifier, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(candidate)) == nil
}
