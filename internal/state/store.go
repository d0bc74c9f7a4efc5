// Package state implementa el store efímero de la sesión: state OAuth de un
// solo uso y sesiones QR, ambos como namespaces de un mismo backend con TTL.
package state

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
)

const (
	StateTTL     = 600 * time.Second
	QRSessionTTL = 300 * time.Second

	nsState     = "state"
	nsQRSession = "qr_session"
)

// AuthorizationState es un intento de login en curso.
type AuthorizationState struct {
	Verifier    string `json:"verifier,omitempty"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// Store agrupa los namespaces del flujo de autenticación.
type Store struct {
	states *Bucket[AuthorizationState]
	qr     *Bucket[QRSession]
}

// New crea el store sobre un backend compartido.
func New(kv cache.Client) *Store {
	return &Store{
		states: NewBucket[AuthorizationState](kv, nsState, StateTTL),
		qr:     NewBucket[QRSession](kv, nsQRSession, QRSessionTTL),
	}
}

// NewID genera un identificador de 16 bytes aleatorios en hex.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("state: random id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CreateState persiste verifier y callback (ambos opcionales) por 10 minutos.
func (s *Store) CreateState(ctx context.Context, verifier, callbackURL string) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}
	rec := AuthorizationState{Verifier: verifier, CallbackURL: callbackURL}
	if err := s.states.Put(ctx, id, rec, StateTTL); err != nil {
		return "", fmt.Errorf("state: create: %w", err)
	}
	return id, nil
}

// ValidateState consume el state: lo borra antes de devolverlo. Ausente,
// expirado o un fallo del backend se reportan como (nil, false).
func (s *Store) ValidateState(ctx context.Context, id string) (*AuthorizationState, bool) {
	if id == "" {
		return nil, false
	}
	rec, err := s.states.Take(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.From(ctx).Error("state store unavailable, treating state as not found",
				logger.Component("state"), logger.Namespace(nsState), logger.Err(err))
		}
		return nil, false
	}
	return rec, true
}
