package state

import (
	"context"
	"errors"
	"time"
)

// QRStatus es el estado de una sesión QR.
type QRStatus string

const (
	QRPending QRStatus = "PENDING"
	QRSuccess QRStatus = "SUCCESS"
	QRFailed  QRStatus = "FAILED"
	QRExpired QRStatus = "EXPIRED"
)

// Terminal reporta si no admite más transiciones.
func (s QRStatus) Terminal() bool {
	return s == QRSuccess || s == QRFailed || s == QRExpired
}

// ErrTransition: la actualización violaría el orden PENDING -> SUCCESS|FAILED.
var ErrTransition = errors.New("state: invalid qr session transition")

// QRSession es un intento de autenticación cross-device.
type QRSession struct {
	Status    QRStatus `json:"status"`
	Verifier  string   `json:"verifier"`
	DeepLink  string   `json:"deepLink"`
	CreatedAt int64    `json:"createdAt"` // epoch s

	AccessToken          string `json:"accessToken,omitempty"`
	RefreshToken         string `json:"refreshToken,omitempty"`
	IDToken              string `json:"idToken,omitempty"`
	AccessTokenExpiresAt int64  `json:"accessTokenExpiresAt,omitempty"` // epoch s
	ExpiresIn            int64  `json:"expiresIn,omitempty"`
}

// HasTokens indica si la sesión trae lo necesario para emitir cookies.
func (q *QRSession) HasTokens() bool {
	return q.AccessToken != "" && q.AccessTokenExpiresAt > 0
}

// QRPatch es una actualización parcial; los campos nil no se tocan.
// Un patch vacío solo refresca el TTL.
type QRPatch struct {
	Status               *QRStatus
	AccessToken          *string
	RefreshToken         *string
	IDToken              *string
	AccessTokenExpiresAt *int64
	ExpiresIn            *int64
}

func (p QRPatch) empty() bool {
	return p.Status == nil && p.AccessToken == nil && p.RefreshToken == nil &&
		p.IDToken == nil && p.AccessTokenExpiresAt == nil && p.ExpiresIn == nil
}

func (p QRPatch) apply(q *QRSession) error {
	if p.empty() {
		return nil
	}
	if q.Status.Terminal() {
		// Única excepción: SUCCESS sin tokens se repara a FAILED.
		repair := q.Status == QRSuccess && !q.HasTokens() &&
			p.Status != nil && *p.Status == QRFailed
		if !repair {
			return ErrTransition
		}
	} else if p.Status != nil && *p.Status != QRPending && *p.Status != QRSuccess && *p.Status != QRFailed {
		return ErrTransition
	}

	if p.Status != nil {
		q.Status = *p.Status
	}
	if p.AccessToken != nil {
		q.AccessToken = *p.AccessToken
	}
	if p.RefreshToken != nil {
		q.RefreshToken = *p.RefreshToken
	}
	if p.IDToken != nil {
		q.IDToken = *p.IDToken
	}
	if p.AccessTokenExpiresAt != nil {
		q.AccessTokenExpiresAt = *p.AccessTokenExpiresAt
	}
	if p.ExpiresIn != nil {
		q.ExpiresIn = *p.ExpiresIn
	}
	return nil
}

// StoreQRSession guarda la sesión; ttl <= 0 usa 300s.
func (s *Store) StoreQRSession(ctx context.Context, id string, data QRSession, ttl time.Duration) error {
	return s.qr.Put(ctx, id, data, ttl)
}

// GetQRSession retorna ErrNotFound si no existe o expiró.
func (s *Store) GetQRSession(ctx context.Context, id string) (*QRSession, error) {
	return s.qr.Get(ctx, id)
}

// UpdateQRSession aplica el patch y refresca el TTL a 300s. Retorna false si
// la sesión no existe (no la crea). Un patch vacío solo renueva el TTL y no
// reescribe el registro.
func (s *Store) UpdateQRSession(ctx context.Context, id string, patch QRPatch) (bool, error) {
	if patch.empty() {
		return s.qr.Touch(ctx, id)
	}
	return s.qr.Update(ctx, id, patch.apply)
}

// TakeQRSession lee y borra la sesión en un paso: la entrega de credenciales
// ocurre una sola vez aunque haya polls concurrentes.
func (s *Store) TakeQRSession(ctx context.Context, id string) (*QRSession, error) {
	return s.qr.Take(ctx, id)
}

func (s *Store) DeleteQRSession(ctx context.Context, id string) error {
	return s.qr.Delete(ctx, id)
}
