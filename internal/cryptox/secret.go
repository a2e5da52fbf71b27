package cryptox

import "crypto/subtle"

// ZeroBytes overwrites a byte slice with zeros. Safe to call on nil.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeEquals compares two byte slices in constant time.
func ConstantTimeEquals(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Secret is a scoped wrapper around sensitive key material. Owners must call
// Zero on every exit path once the material is no longer needed, typically
// via defer. After Zero the secret reads as empty.
type Secret struct {
	data []byte
}

// NewSecret takes ownership of b. Callers must not retain or reuse b.
func NewSecret(b []byte) *Secret {
	return &Secret{data: b}
}

// Bytes exposes the underlying material. The slice is only valid until Zero.
func (s *Secret) Bytes() []byte {
	return s.data
}

// Zero overwrites the material and detaches it. Idempotent.
func (s *Secret) Zero() {
	ZeroBytes(s.data)
	s.data = nil
}
