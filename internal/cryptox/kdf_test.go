package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	encoded, err := HashPassword([]byte("correct horse"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "argon2id$"))

	ok, err := VerifyPassword([]byte("correct horse"), encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword([]byte("battery staple"), encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltIsFresh(t *testing.T) {
	a, err := HashPassword([]byte("same password"))
	require.NoError(t, err)
	b, err := HashPassword([]byte("same password"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "fresh random salt per hash")
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"wrong prefix", "bcrypt$whatever"},
		{"missing parts", "argon2id$m=65536,t=3,p=4$onlysalt"},
		{"bad params", "argon2id$nonsense$c2FsdA$aGFzaA"},
		{"bad base64", "argon2id$m=65536,t=3,p=4$!!!$aGFzaA"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := VerifyPassword([]byte("pw"), tc.encoded)
			require.ErrorIs(t, err, ErrInvalidHash)
		})
	}
}

func TestDeriveEncryptionKey_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef0123456789abcdef")

	k1, err := DeriveEncryptionKey([]byte("pw"), salt)
	require.NoError(t, err)
	k2, err := DeriveEncryptionKey([]byte("pw"), salt)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	k3, err := DeriveEncryptionKey([]byte("pw"), []byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3, "different salts must yield different keys")
}

func TestDeriveEncryptionKey_EmptySalt(t *testing.T) {
	_, err := DeriveEncryptionKey([]byte("pw"), nil)
	require.Error(t, err)
}

func TestSecret_ZeroWipes(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	s := NewSecret(buf)
	require.Equal(t, buf, s.Bytes())

	s.Zero()
	assert.Empty(t, s.Bytes())
	assert.Equal(t, []byte{0, 0, 0, 0}, buf, "backing array must be wiped")

	s.Zero() // idempotent
}
