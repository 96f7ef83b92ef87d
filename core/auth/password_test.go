package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	passwords := []string{"Secr3t!pass", "", "çãõ-ünïcødé", "a very long passphrase that keeps going and going"}
	for _, pwd := range passwords {
		t.Run(pwd, func(t *testing.T) {
			hash, salt, err := HashPassword(pwd)
			require.NoError(t, err)
			assert.Len(t, salt, SaltSize)
			assert.Len(t, hash, 64)

			assert.True(t, VerifyPassword(pwd, hash, salt))
			assert.False(t, VerifyPassword(pwd+"x", hash, salt))
			assert.False(t, VerifyPassword("other", hash, salt))
		})
	}
}

func TestHashPassword_freshSalt(t *testing.T) {
	hash1, salt1, err := HashPassword("Secr3t!pass")
	require.NoError(t, err)
	hash2, salt2, err := HashPassword("Secr3t!pass")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
	assert.False(t, VerifyPassword("Secr3t!pass", hash1, salt2))
}

func TestVerifyPassword_missingHash(t *testing.T) {
	_, salt, err := HashPassword("x")
	require.NoError(t, err)
	assert.False(t, VerifyPassword("x", nil, salt))
	assert.False(t, VerifyPassword("x", []byte{1}, nil))
}

func TestHashPassword_randError(t *testing.T) {
	orig := randRead
	defer func() { randRead = orig }()
	randRead = func([]byte) (int, error) { return 0, errors.New("no entropy") }

	_, _, err := HashPassword("x")
	assert.Error(t, err)
}
