package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.NoError(t, h.Compare(hash, "admin123"))
	assert.ErrorIs(t, h.Compare(hash, "admin124"), ErrMismatch)
}

func TestNewHasher_OutOfRangeCost(t *testing.T) {
	assert.Equal(t, BCryptCost, NewHasher(0).Cost)
	assert.Equal(t, BCryptCost, NewHasher(99).Cost)
}

func TestValidatePasswordComplexity(t *testing.T) {
	issues, err := ValidatePasswordComplexity("short1")
	assert.ErrorIs(t, err, ErrPasswordTooWeak)
	assert.Contains(t, issues, "must be at least 8 characters")

	issues, err = ValidatePasswordComplexity("12345678")
	assert.ErrorIs(t, err, ErrPasswordTooWeak)
	assert.Equal(t, []string{"must include a letter"}, issues)

	_, err = ValidatePasswordComplexity("كلمةسر2024")
	assert.NoError(t, err)
}
