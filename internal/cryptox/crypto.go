// Package cryptox implements the vault's cryptographic core: AES-256-GCM
// authenticated encryption for stored records and transport payloads, and
// Argon2id-based password hashing and key derivation.
//
// The password hash and the data-encryption key are derived with independent
// salts so that a leak of one never reveals the other.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce size in bytes.
	NonceSize = 12
)

var (
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrDecryptFailed covers both a wrong key and tampered ciphertext;
	// the two are indistinguishable by design.
	ErrDecryptFailed = errors.New("wrong password or corrupted data")
)

// Encrypt seals plaintext with AES-256-GCM under key, generating a fresh
// random 12-byte nonce. The ciphertext (with appended tag) and the nonce are
// returned separately; the nonce must never be reused with the same key.
func Encrypt(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt opens an AES-256-GCM ciphertext. Authentication failures and a
// wrong nonce length are reported as ErrDecryptFailed without further
// detail, so the caller cannot distinguish a bad key from corrupted data.
func Decrypt(key, ciphertext, nonce []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	if len(nonce) != NonceSize {
		return nil, ErrDecryptFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
