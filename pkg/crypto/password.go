package crypto

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const BCryptCost = 12

const MinPasswordLength = 8

var (
	ErrPasswordTooWeak = errors.New("password does not meet complexity requirements")
	ErrMismatch        = errors.New("password does not match")
)

// Hasher hashes and verifies passwords with bcrypt at a fixed cost.
type Hasher struct {
	Cost int
}

func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = BCryptCost
	}
	return Hasher{Cost: cost}
}

func (h Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns ErrMismatch when password does not produce hash.
func (h Hasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

func HashPassword(password string) (string, error) {
	return NewHasher(BCryptCost).Hash(password)
}

func ComparePassword(hash string, password string) error {
	return NewHasher(BCryptCost).Compare(hash, password)
}

// ValidatePasswordComplexity requires MinPasswordLength characters with at
// least one letter and one digit. Letters from any script count.
func ValidatePasswordComplexity(password string) ([]string, error) {
	var issues []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		issues = append(issues, "must be at least 8 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter {
		issues = append(issues, "must include a letter")
	}
	if !hasDigit {
		issues = append(issues, "must include a number")
	}

	if len(issues) > 0 {
		return issues, ErrPasswordTooWeak
	}
	return nil, nil
}
