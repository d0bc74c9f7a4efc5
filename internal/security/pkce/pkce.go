// Package pkce implementa los helpers de RFC 7636 (método S256).
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Method es el único code_challenge_method soportado.
const Method = "S256"

// NewVerifier genera 32 bytes aleatorios en hex: 64 caracteres del
// alfabeto unreserved de RFC 7636.
func NewVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("pkce: verifier random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Challenge = base64url(sha256(verifier)) sin padding.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Verify compara en tiempo constante.
func Verify(verifier, challenge string) bool {
	return subtle.ConstantTimeCompare([]byte(Challenge(verifier)), []byte(challenge)) == 1
}

// NewPair genera verifier y challenge.
func NewPair() (verifier, challenge string, err error) {
	verifier, err = NewVerifier()
	if err != nil {
		return "", "", err
	}
	return verifier, Challenge(verifier), nil
}
