package security

import (
	"academic_records/internal/common"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, h.Verify("secret123", hash))
	assert.False(t, h.Verify("secret124", hash))
	assert.False(t, h.Verify("", hash))
}

func TestPasswordHasher_Salted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestPasswordHasher_RejectsOverlongPasswordAsValidation(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("é", 40))
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	require.ErrorIs(t, err, common.ErrValidation)

	hash, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("a", MaxPasswordBytes), hash))
}

func TestPasswordHasher_MalformedHashIsMismatch(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("secret", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("secret", ""))
}

func TestNewPasswordHasher_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}
