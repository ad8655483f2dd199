package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when the configured cost is zero.
const DefaultBcryptCost = 10

// HashPassword hashes a password with the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// PlaceholderCredential produces fresh hashes of the fixed initial password
// every imported, created or reset account receives.
type PlaceholderCredential struct {
	password string
	cost     int
}

// NewPlaceholderCredential builds a credential source for the configured initial password.
func NewPlaceholderCredential(password string, cost int) (*PlaceholderCredential, error) {
	if password == "" {
		return nil, fmt.Errorf("initial password must not be empty")
	}
	if cost != 0 && (cost < bcrypt.MinCost || cost > bcrypt.MaxCost) {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PlaceholderCredential{password: password, cost: cost}, nil
}

// Hash returns a newly salted hash of the initial password.
func (p *PlaceholderCredential) Hash() (string, error) {
	hash, err := HashPassword(p.password, p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash initial password: %w", err)
	}
	return hash, nil
}
