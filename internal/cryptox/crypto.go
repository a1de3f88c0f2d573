// Package cryptox derives and checks password verifiers with argon2id.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/dmitrijs2005/gymsession/internal/common"
	"golang.org/x/crypto/argon2"
)

const SaltSize = 32

func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewVerifier draws a fresh salt and returns it with the verifier of password.
func NewVerifier(password []byte) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return salt, MakeVerifier(key)
}

// CheckPassword reports whether password matches the stored salt/verifier
// pair, in constant time with respect to the verifier.
func CheckPassword(password, salt, verifier []byte) bool {
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}
