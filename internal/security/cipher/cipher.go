// Package cipher cifra los refresh tokens que viajan en cookies.
//
// Formato: base64(iv[12] | tag[16] | ciphertext), AES-256-GCM.
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	ivSize  = 12 // nonce GCM recomendado (96 bits)
	tagSize = 16
	keySize = 32 // AES-256
)

var (
	ErrInvalidKey       = errors.New("cipher: key must be base64 of exactly 32 bytes")
	ErrDecryptionFailed = errors.New("cipher: decryption failed")
)

// Cipher mantiene la clave ya validada y el AEAD construido.
type Cipher struct {
	aead stdcipher.AEAD
}

// ParseKey decodifica una clave base64 (con o sin padding) de 32 bytes.
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrInvalidKey
	}
	b, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(key)
	}
	if err != nil || len(b) != keySize {
		return nil, ErrInvalidKey
	}
	return b, nil
}

// New construye un Cipher a partir de la clave base64.
func New(key string) (*Cipher, error) {
	raw, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := stdcipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt genera un IV nuevo por llamada.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("iv random: %w", err)
	}

	// Seal devuelve ciphertext|tag; el blob lleva el tag antes del ciphertext.
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, ivSize+tagSize+len(ct))
	blob = append(blob, iv...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt falla con ErrDecryptionFailed ante blob corto, base64 inválido,
// o tag que no verifica (manipulación o clave distinta).
func (c *Cipher) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(raw) < ivSize+tagSize {
		return "", fmt.Errorf("%w: blob too short (%d bytes)", ErrDecryptionFailed, len(raw))
	}

	iv := raw[:ivSize]
	tag := raw[ivSize : ivSize+tagSize]
	ct := raw[ivSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	pt, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(pt), nil
}

// Encrypt cifra con una clave base64 explícita.
func Encrypt(plaintext, key string) (string, error) {
	c, err := New(key)
	if err != nil {
		return "", err
	}
	return c.Encrypt(plaintext)
}

// Decrypt descifra con una clave base64 explícita. Una clave malformada
// también se reporta como ErrDecryptionFailed.
func Decrypt(blob, key string) (string, error) {
	c, err := New(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return c.Decrypt(blob)
}

// GenerateKey devuelve una clave nueva en base64 (usada por `lockerbridge keygen`).
func GenerateKey() (string, error) {
	k := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(k), nil
}

// KeyLength es el tamaño de la clave en bytes.
func (c *Cipher) KeyLength() int { return keySize }
