package common

import (
	"crypto/rand"
	"encoding/hex"
)

// RandBytes returns n cryptographically random bytes. A failing random
// source leaves nothing sensible to do, so it panics.
func RandBytes(n int) []byte {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// RandHex returns a hex string backed by n random bytes, so the result is
// 2*n characters long. Session tokens and salts come from here.
func RandHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
