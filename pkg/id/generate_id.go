// Package id generates the public identifiers exposed by the API.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns 16 random bytes as 32 lowercase hex characters.
func NewID32() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("id: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// Valid reports whether s has the shape NewID32 produces.
func Valid(s string) bool { return reHex32.MatchString(s) }
