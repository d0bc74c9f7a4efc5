package auth

import (
	"context"
	"crypto/subtle"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
)

const encryptionSample = "lockerbridge-encryption-sample"

// DebugService expone un self-test del cipher configurado. Solo se monta
// fuera de producción.
type DebugService interface {
	CheckEncryption(ctx context.Context) dto.EncryptionCheckResponse
}

type debugService struct {
	c *cipher.Cipher
}

func NewDebugService(c *cipher.Cipher) DebugService {
	return &debugService{c: c}
}

func (s *debugService) CheckEncryption(ctx context.Context) dto.EncryptionCheckResponse {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.debug"))

	if s.c == nil {
		return dto.EncryptionCheckResponse{Error: "encryption key not configured"}
	}
	out := dto.EncryptionCheckResponse{KeyLength: s.c.KeyLength()}

	enc, err := s.c.Encrypt(encryptionSample)
	if err != nil {
		log.Error("sample encryption failed", logger.Err(err))
		out.Error = "encryption failed"
		return out
	}
	out.EncryptedLength = len(enc)

	dec, err := s.c.Decrypt(enc)
	if err != nil {
		log.Error("sample decryption failed", logger.Err(err))
		out.Error = "decryption failed"
		return out
	}
	out.EncryptionMatch = subtle.ConstantTimeCompare([]byte(dec), []byte(encryptionSample)) == 1
	out.Success = out.EncryptionMatch
	return out
}
