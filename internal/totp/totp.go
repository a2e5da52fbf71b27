// Package totp generates RFC 4226/6238 time-based one-time codes for vault
// entries that store an authenticator secret.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// Step is the TOTP counter window.
	Step = 30 * time.Second
	// Digits is the code length.
	Digits = 6
)

var ErrInvalidSecret = errors.New("invalid base32 secret")

// Code returns the current 6-digit code for a Base32 secret and the seconds
// remaining in the current window. The secret is normalized first: spaces
// and padding stripped, uppercased.
func Code(secret string, now time.Time) (string, int64, error) {
	normalized := strings.ToUpper(strings.NewReplacer(" ", "", "=", "").Replace(secret))
	secretBytes, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalized)
	if err != nil {
		return "", 0, ErrInvalidSecret
	}

	step := int64(Step / time.Second)
	unix := now.Unix()
	counter := uint64(unix / step)
	ttl := step - (unix % step)

	return hotp(secretBytes, counter), ttl, nil
}

// hotp computes the RFC 4226 HMAC-SHA1 code with dynamic truncation.
func hotp(secret []byte, counter uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	trunc := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF
	return fmt.Sprintf("%0*d", Digits, trunc%1_000_000)
}
