package cipher

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T, seed byte) string {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	key := testKey(t, 1)

	for _, msg := range []string{"", "x", "refresh-token-value", "hola mundo ✓ secreto", strings.Repeat("a", 4096)} {
		blob, err := Encrypt(msg, key)
		require.NoError(t, err)

		pt, err := Decrypt(blob, key)
		require.NoError(t, err)
		assert.Equal(t, msg, pt)
	}
}

func TestEncrypt_BlobLayout(t *testing.T) {
	t.Parallel()
	c, err := New(testKey(t, 7))
	require.NoError(t, err)

	blob, err := c.Encrypt("abc")
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	assert.Len(t, raw, ivSize+tagSize+3)

	other, err := c.Encrypt("abc")
	require.NoError(t, err)
	assert.NotEqual(t, blob, other, "iv must be fresh per call")
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	t.Parallel()
	key := testKey(t, 9)
	blob, err := Encrypt("top secret", key)
	require.NoError(t, err)
	raw, _ := base64.StdEncoding.DecodeString(blob)

	for i := range raw {
		mutated := append([]byte(nil), raw...)
		mutated[i] ^= 0x01
		_, err := Decrypt(base64.StdEncoding.EncodeToString(mutated), key)
		require.Error(t, err, "byte %d", i)
		assert.True(t, errors.Is(err, ErrDecryptionFailed))
	}
}

func TestDecrypt_Failures(t *testing.T) {
	t.Parallel()
	key := testKey(t, 3)
	blob, err := Encrypt("value", key)
	require.NoError(t, err)

	tests := []struct {
		name string
		blob string
		key  string
	}{
		{"wrong key", blob, testKey(t, 100)},
		{"short blob", base64.StdEncoding.EncodeToString(make([]byte, 27)), key},
		{"not base64", "%%%", key},
		{"malformed key", blob, "c2hvcnQ="},
		{"empty key", blob, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decrypt(tc.blob, tc.key)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestNew_InvalidKey(t *testing.T) {
	t.Parallel()
	for _, k := range []string{"", "not-base64!!", base64.StdEncoding.EncodeToString(make([]byte, 16))} {
		_, err := New(k)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", k)
	}
	_, err := Encrypt("x", "c2hvcnQ=")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()
	k, err := GenerateKey()
	require.NoError(t, err)
	_, err = New(k)
	require.NoError(t, err)
}
