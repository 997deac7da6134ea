package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptVerifier_HashAndCompare(t *testing.T) {
	t.Parallel()

	// Minimum cost keeps the test fast.
	verifier := NewBcryptVerifier(4)

	hashed, err := verifier.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	assert.NotEqual(t, "correct horse battery staple", hashed)

	assert.NoError(t, verifier.Compare(hashed, "correct horse battery staple"))
	assert.Error(t, verifier.Compare(hashed, "wrong password"))
}

func TestBcryptVerifier_HashesAreSalted(t *testing.T) {
	t.Parallel()

	verifier := NewBcryptVerifier(4)

	first, err := verifier.Hash("same password")
	require.NoError(t, err)
	second, err := verifier.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, verifier.Compare(first, "same password"))
	assert.NoError(t, verifier.Compare(second, "same password"))
}

func TestBcryptVerifier_ZeroCostUsesDefault(t *testing.T) {
	t.Parallel()

	verifier := NewBcryptVerifier(0)
	hashed, err := verifier.Hash("a password")
	require.NoError(t, err)
	assert.NoError(t, verifier.Compare(hashed, "a password"))
}

func TestBcryptVerifier_CompareMalformedHash(t *testing.T) {
	t.Parallel()

	verifier := NewBcryptVerifier(4)
	assert.Error(t, verifier.Compare("not a bcrypt hash", "anything"))
}
