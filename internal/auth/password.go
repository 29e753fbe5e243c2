package auth

import (
	"errors"
	"fmt"

	"github.com/farellandr/eventhub/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside %d..%d", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Hash salts every call, so hashing the same password twice yields
// different digests.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.InvalidArgument("password must be at most %d bytes", MaxPasswordBytes)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify treats a malformed hash as a mismatch.
func (h *PasswordHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
