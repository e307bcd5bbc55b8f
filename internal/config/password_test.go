package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper"}

	hash, err := cfg.HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret#123", hash)

	assert.True(t, cfg.VerifyPassword("Secret#123", hash))
	assert.False(t, cfg.VerifyPassword("secret#123", hash))

	other := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "different"}
	assert.False(t, other.VerifyPassword("Secret#123", hash), "pepper must be part of the hash input")
}

func TestHashPasswordProducesDistinctSalts(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}
	a, err := cfg.HashPassword("Secret#123")
	require.NoError(t, err)
	b, err := cfg.HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
