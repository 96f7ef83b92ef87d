package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"

	"github.com/pkg/errors"
)

// SaltSize matches the HMAC-SHA512 block-sized key.
const SaltSize = 64

var randRead = rand.Read // mockable

// HashPassword returns the HMAC-SHA512 of pwd keyed by a fresh random salt.
func HashPassword(pwd string) (hash, salt []byte, err error) {
	salt = make([]byte, SaltSize)
	if _, err = randRead(salt); err != nil {
		return nil, nil, errors.Wrap(err, "generating salt")
	}
	return computeHash(pwd, salt), salt, nil
}

// VerifyPassword recomputes the keyed hash of pwd and compares it in constant time.
func VerifyPassword(pwd string, hash, salt []byte) bool {
	if len(hash) == 0 || len(salt) == 0 {
		return false
	}
	return hmac.Equal(computeHash(pwd, salt), hash)
}

func computeHash(pwd string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(pwd))
	return mac.Sum(nil)
}
