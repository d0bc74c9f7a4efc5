package auth

import "github.com/dropDatabas3/lockerbridge/internal/session"

// Estados reportados por GET /auth/qr-status además de los de la sesión.
const (
	QRStatusNotFound = "NOT_FOUND"
	QRStatusError    = "ERROR"
)

// QRSessionResponse: GET /auth/qr-session
type QRSessionResponse struct {
	SessionID  string `json:"sessionId"`
	QRCodeData string `json:"qrCodeData"`
	PollingURL string `json:"pollingUrl"`
	ExpiresIn  int    `json:"expiresIn"`
}

// QRCallbackRequest: GET /auth/qr-callback?code=&state=
type QRCallbackRequest struct {
	Code  string
	State string
}

// QRCallbackResponse: ack al dispositivo móvil (200 si Success, 400 si no).
type QRCallbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// QRStatusResponse: GET /auth/qr-status/{sessionId}
type QRStatusResponse struct {
	SessionID   string `json:"sessionId"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// QRStatusResult agrega al body lo que el controller necesita para responder.
type QRStatusResult struct {
	Response    QRStatusResponse
	HTTPStatus  int
	Credentials session.Credentials
}
