package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandHex(t *testing.T) {
	s, err := RandHex(32)
	require.NoError(t, err)
	assert.Len(t, s, 64)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err)

	other, err := RandHex(32)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}

func TestRandHex_ZeroSize(t *testing.T) {
	s, err := RandHex(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestRandBytes(t *testing.T) {
	a := RandBytes(16)
	b := RandBytes(16)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
