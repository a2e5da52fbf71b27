package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for the master password. 64 MiB / 3 iterations /
// 4 lanes, matching the vault's original defaults.
const (
	argonMemory  = 64 * 1024
	argonTime    = 3
	argonThreads = 4
	argonKeyLen  = 32
	authSaltLen  = 16
	// EncryptionSaltSize is the size of the independent salt used to derive
	// the data-encryption key.
	EncryptionSaltSize = 32
)

var ErrInvalidHash = errors.New("invalid password hash")

// HashPassword hashes a master password with Argon2id and a fresh random
// salt. The result is a self-describing encoded string:
//
//	argon2id$m=<M>,t=<T>,p=<P>$<b64(salt)>$<b64(key)>
func HashPassword(password []byte) (string, error) {
	salt := make([]byte, authSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("argon2id$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword re-derives the key with the parameters stored in the
// encoded hash and compares in constant time. A malformed hash returns
// ErrInvalidHash; callers present any failure as one generic auth error.
func VerifyPassword(password []byte, encoded string) (bool, error) {
	const prefix = "argon2id$"
	if !strings.HasPrefix(encoded, prefix) {
		return false, ErrInvalidHash
	}
	parts := strings.Split(encoded[len(prefix):], "$")
	if len(parts) != 3 {
		return false, ErrInvalidHash
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[0], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, ErrInvalidHash
	}
	keyRef, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey(password, salt, t, m, p, uint32(len(keyRef)))
	defer ZeroBytes(key)
	return subtle.ConstantTimeCompare(key, keyRef) == 1, nil
}

// DeriveEncryptionKey derives the 32-byte data-encryption key from the
// master password and the encryption salt. The salt must be independent of
// the authentication salt; identical inputs always yield an identical key.
func DeriveEncryptionKey(password, encryptionSalt []byte) ([KeySize]byte, error) {
	var key [KeySize]byte
	if len(encryptionSalt) == 0 {
		return key, errors.New("empty encryption salt")
	}
	raw := argon2.IDKey(password, encryptionSalt, argonTime, argonMemory, argonThreads, argonKeyLen)
	copy(key[:], raw)
	ZeroBytes(raw)
	return key, nil
}
