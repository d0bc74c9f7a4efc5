package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
)

// ErrNoCipher: hay refresh token para escribir pero no hay clave configurada.
var ErrNoCipher = errors.New("session: encryption key not configured")

// DefaultRefreshMaxAge es la vida de la cookie del refresh token.
const DefaultRefreshMaxAge = 7 * 24 * time.Hour

// WriterConfig configura el adapter de cookies.
type WriterConfig struct {
	Names         Names
	Cipher        *cipher.Cipher
	Domain        string
	Secure        bool
	RefreshMaxAge time.Duration
	Now           func() time.Time
}

// Writer traduce Credentials a los tres Set-Cookie.
type Writer struct {
	cfg WriterConfig
}

func NewWriter(cfg WriterConfig) *Writer {
	cfg.Names = cfg.Names.withDefaults()
	if cfg.RefreshMaxAge <= 0 {
		cfg.RefreshMaxAge = DefaultRefreshMaxAge
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Writer{cfg: cfg}
}

// Names expone los nombres de cookie configurados.
func (w *Writer) Names() Names { return w.cfg.Names }

// Write emite las cookies del grupo. Si el refresh token no se puede cifrar
// el grupo entero se borra y se devuelve el error.
func (w *Writer) Write(rw http.ResponseWriter, c Credentials) error {
	if c.IsZero() {
		return nil
	}
	if c.Clear {
		w.clear(rw)
		return nil
	}

	var encRefresh string
	if c.RefreshToken != "" {
		if w.cfg.Cipher == nil {
			w.clear(rw)
			return ErrNoCipher
		}
		enc, err := w.cfg.Cipher.Encrypt(c.RefreshToken)
		if err != nil {
			w.clear(rw)
			return fmt.Errorf("session: encrypt refresh token: %w", err)
		}
		encRefresh = enc
	}

	now := w.cfg.Now()
	ttl := time.Duration(c.ExpiresIn(now)) * time.Second
	n := w.cfg.Names

	http.SetCookie(rw, buildCookie(n.AccessToken, c.AccessToken, w.cfg.Domain, w.cfg.Secure, ttl, now))
	http.SetCookie(rw, buildCookie(n.ExpiresAt, strconv.FormatInt(c.ExpiresAt.UnixMilli(), 10), w.cfg.Domain, w.cfg.Secure, ttl, now))
	if encRefresh != "" {
		http.SetCookie(rw, buildCookie(n.RefreshToken, encRefresh, w.cfg.Domain, w.cfg.Secure, w.cfg.RefreshMaxAge, now))
	} else {
		http.SetCookie(rw, buildDeletionCookie(n.RefreshToken, w.cfg.Domain, w.cfg.Secure))
	}
	return nil
}

// Clear borra las tres cookies.
func (w *Writer) Clear(rw http.ResponseWriter) { w.clear(rw) }

func (w *Writer) clear(rw http.ResponseWriter) {
	n := w.cfg.Names
	for _, name := range []string{n.AccessToken, n.RefreshToken, n.ExpiresAt} {
		http.SetCookie(rw, buildDeletionCookie(name, w.cfg.Domain, w.cfg.Secure))
	}
}
