package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptService hashes customer passwords for the account store. bcrypt
// rejects input past 72 bytes rather than silently truncating, which is the
// behavior we want for signup.
type BcryptService struct {
	cost int
}

// NewBcryptService clamps out-of-range costs to the library default, so a
// zero value from config still produces sane hashes.
func NewBcryptService(cost int) *BcryptService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptService{cost: cost}
}

func (s *BcryptService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *BcryptService) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
