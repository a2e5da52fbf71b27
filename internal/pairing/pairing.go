// Package pairing implements the device-pairing handshake: an ephemeral
// ECDH key agreement authenticated by a human-verified 6-digit code.
//
// Each side generates a key pair and a code; the code travels out of band
// (one operator reads it, the other types it). Both sides exchange
// {public key, HMAC-SHA256(code, public key)} and verify the peer's HMAC
// with the locally known code before completing the Diffie–Hellman
// exchange, which defeats a network attacker who can intercept public keys
// but does not know the code.
package pairing

import (
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/vibevault/vibevault/internal/cryptox"
)

// hkdfInfo binds derived session keys to this application and protocol
// version. Changing it invalidates all stored shared secrets.
var hkdfInfo = []byte("vibevault-sync-v1")

var (
	ErrCodeMismatch    = errors.New("pairing code mismatch")
	ErrInvalidPeerKey  = errors.New("invalid peer public key")
	ErrSessionConsumed = errors.New("pairing session already consumed")
)

// Session is the ephemeral state of one in-progress handshake. It is
// created when pairing starts and consumed by Complete; a session is never
// reused across handshakes.
type Session struct {
	priv *ecdh.PrivateKey
	pub  []byte
	// Code is the 6-digit decimal pairing code shown to the operator.
	Code string
}

// NewSession generates the ephemeral key pair and the pairing code.
func NewSession() (*Session, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	var codeBytes [4]byte
	if _, err := rand.Read(codeBytes[:]); err != nil {
		return nil, fmt.Errorf("failed to generate pairing code: %w", err)
	}
	code := binary.LittleEndian.Uint32(codeBytes[:]) % 1_000_000

	return &Session{
		priv: priv,
		pub:  priv.PublicKey().Bytes(),
		Code: fmt.Sprintf("%06d", code),
	}, nil
}

// PublicKeyBytes returns our public key encoding to send to the peer. It
// stays valid after Complete consumes the private key, because either side
// may still be serializing its handshake frame when the other completes.
func (s *Session) PublicKeyBytes() []byte {
	return s.pub
}

// MAC computes HMAC-SHA256 over our public key, keyed by the pairing code,
// for the peer to verify with its locally known code.
func (s *Session) MAC() []byte {
	mac := hmac.New(sha256.New, []byte(s.Code))
	mac.Write(s.pub)
	return mac.Sum(nil)
}

// Result carries the outcome of a successful handshake. Zero must be
// called once the caller has persisted or used the material.
type Result struct {
	// SessionKey encrypts sync traffic for this connection.
	SessionKey [cryptox.KeySize]byte
	// SharedSecret is the raw ECDH output, persisted per device so the
	// session key can be re-derived without repeating the code exchange.
	SharedSecret []byte
	// PeerPublicKey identifies the remote device.
	PeerPublicKey []byte
}

// Zero wipes the sensitive fields.
func (r *Result) Zero() {
	cryptox.ZeroBytes(r.SessionKey[:])
	cryptox.ZeroBytes(r.SharedSecret)
}

// Complete verifies the peer's MAC against our code, performs ECDH with the
// verified peer public key, and expands the shared secret into the session
// key. The session's private key is consumed; a session completes at most
// once. A MAC mismatch means the operators did not confirm the same code.
func (s *Session) Complete(peerPublicKey, peerMAC []byte) (*Result, error) {
	if s.priv == nil {
		return nil, ErrSessionConsumed
	}

	mac := hmac.New(sha256.New, []byte(s.Code))
	mac.Write(peerPublicKey)
	if !hmac.Equal(mac.Sum(nil), peerMAC) {
		return nil, ErrCodeMismatch
	}

	peer, err := ecdh.P256().NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, ErrInvalidPeerKey
	}

	shared, err := s.priv.ECDH(peer)
	if err != nil {
		return nil, fmt.Errorf("key agreement failed: %w", err)
	}
	s.priv = nil

	sessionKey, err := DeriveSessionKey(shared)
	if err != nil {
		cryptox.ZeroBytes(shared)
		return nil, err
	}

	return &Result{
		SessionKey:    sessionKey,
		SharedSecret:  shared,
		PeerPublicKey: append([]byte(nil), peerPublicKey...),
	}, nil
}

// DeriveSessionKey expands a raw ECDH shared secret into a 32-byte session
// key with HKDF-SHA256. It is the re-pairing path: a stored shared secret
// regenerates the transport key without a new code exchange.
func DeriveSessionKey(sharedSecret []byte) ([cryptox.KeySize]byte, error) {
	var key [cryptox.KeySize]byte
	if len(sharedSecret) == 0 {
		return key, errors.New("empty shared secret")
	}
	r := hkdf.New(sha256.New, sharedSecret, nil, hkdfInfo)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, fmt.Errorf("hkdf expand failed: %w", err)
	}
	return key, nil
}

// EncryptTransport seals a sync payload under the pairing session key.
func EncryptTransport(key *[cryptox.KeySize]byte, plaintext []byte) (ciphertext, nonce []byte, err error) {
	return cryptox.Encrypt(key[:], plaintext)
}

// DecryptTransport opens a sync payload sealed by the peer.
func DecryptTransport(key *[cryptox.KeySize]byte, ciphertext, nonce []byte) ([]byte, error) {
	return cryptox.Decrypt(key[:], ciphertext, nonce)
}
