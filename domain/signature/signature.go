// Package signature provides pure functions for verifying WeChat callback
// signatures. The server signs every webhook call with SHA1 over the
// sorted callback token, timestamp, and nonce; requests that fail the
// check must never reach the message codec.
package signature

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
)

// ErrInvalidSignature rejects a callback whose signature does not match.
var ErrInvalidSignature = errors.New("signature: invalid callback signature")

// Signer accumulates data parts and produces their joined, sorted SHA1
// hex digest.
type Signer struct {
	parts     []string
	delimiter string
}

// NewSigner creates a signer joining parts with delimiter ("" for the
// callback scheme).
func NewSigner(delimiter string) *Signer {
	return &Signer{delimiter: delimiter}
}

// AddData appends data parts to be signed.
func (s *Signer) AddData(parts ...string) {
	s.parts = append(s.parts, parts...)
}

// Signature returns the hex SHA1 of the sorted parts.
func (s *Signer) Signature() string {
	sorted := append([]string(nil), s.parts...)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(strings.Join(sorted, s.delimiter)))
	return hex.EncodeToString(sum[:])
}

// Check verifies a callback signature against the configured token.
// Returns ErrInvalidSignature on mismatch.
func Check(token, sig, timestamp, nonce string) error {
	s := NewSigner("")
	s.AddData(token, timestamp, nonce)
	if subtle.ConstantTimeCompare([]byte(s.Signature()), []byte(sig)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
