package auth

// EncryptionCheckResponse: GET /auth/debug/encryption
type EncryptionCheckResponse struct {
	Success         bool   `json:"success"`
	KeyLength       int    `json:"keyLength"`
	EncryptedLength int    `json:"encryptedLength,omitempty"`
	EncryptionMatch bool   `json:"encryptionMatch"`
	Error           string `json:"error,omitempty"`
}
