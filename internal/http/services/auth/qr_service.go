package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/metrics"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/security/pkce"
	"github.com/dropDatabas3/lockerbridge/internal/session"
	"github.com/dropDatabas3/lockerbridge/internal/state"
)

const (
	DefaultQRAuthEndpoint = "digilocker://auth"
	QRCallbackPath        = "/auth/qr-callback"
	QRStatusPath          = "/auth/qr-status/"

	defaultQRExpiresIn = 3600 // s, si el proveedor no informa expires_in
	qrImageSize        = 256
)

// QRService implementa el login cross-device: el escritorio muestra un QR,
// el móvil autoriza y el escritorio recoge la sesión por polling.
type QRService interface {
	InitiateQR(ctx context.Context) (*dto.QRSessionResponse, error)
	QRCallback(ctx context.Context, in dto.QRCallbackRequest) dto.QRCallbackResponse
	QRStatus(ctx context.Context, id string) dto.QRStatusResult
}

type qrService struct {
	deps Deps
}

func NewQRService(deps Deps) QRService {
	return &qrService{deps: deps}
}

func (s *qrService) redirectURI() string {
	return strings.TrimRight(s.deps.PublicURL, "/") + QRCallbackPath
}

func (s *qrService) deepLink(id, verifier string) string {
	base := strings.TrimSpace(s.deps.QRAuthEndpoint)
	if base == "" {
		base = DefaultQRAuthEndpoint
	}
	q := url.Values{}
	q.Set("client_id", s.deps.Env.ClientID())
	q.Set("redirect_uri", s.redirectURI())
	q.Set("response_type", "code")
	q.Set("state", id)
	q.Set("code_challenge", pkce.Challenge(verifier))
	q.Set("code_challenge_method", "S256")

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

func (s *qrService) InitiateQR(ctx context.Context) (*dto.QRSessionResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.qr"),
		logger.Op("InitiateQR"),
	)

	id, err := state.NewID()
	if err != nil {
		return nil, err
	}
	verifier, err := pkce.NewVerifier()
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}
	link := s.deepLink(id, verifier)

	png, err := qrcode.Encode(link, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}

	sess := state.QRSession{
		Status:    state.QRPending,
		Verifier:  verifier,
		DeepLink:  link,
		CreatedAt: s.deps.now().Unix(),
	}
	if err := s.deps.Store.StoreQRSession(ctx, id, sess, state.QRSessionTTL); err != nil {
		log.Error("could not persist qr session", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}

	metrics.QRSession(string(state.QRPending))
	log.Debug("qr session created", logger.SessionID(id))
	return &dto.QRSessionResponse{
		SessionID:  id,
		QRCodeData: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		PollingURL: QRStatusPath + id,
		ExpiresIn:  int(state.QRSessionTTL / time.Second),
	}, nil
}

func (s *qrService) QRCallback(ctx context.Context, in dto.QRCallbackRequest) dto.QRCallbackResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.qr"),
		logger.Op("QRCallback"),
		logger.SessionID(in.State),
	)
	fail := func(msg string) dto.QRCallbackResponse {
		return dto.QRCallbackResponse{Success: false, Message: msg}
	}

	if strings.TrimSpace(in.State) == "" || strings.TrimSpace(in.Code) == "" {
		return fail("Missing code or state")
	}

	sess, err := s.deps.Store.GetQRSession(ctx, in.State)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			log.Error("qr store unavailable", logger.Err(err))
		}
		return fail("Invalid or expired session")
	}
	if sess.Status != state.QRPending {
		log.Warn("qr callback on non-pending session", logger.QRStatus(string(sess.Status)))
		return fail("Session is no longer pending")
	}

	tok, err := s.deps.Env.ExchangeCode(ctx, in.Code, sess.Verifier, s.redirectURI())
	if err != nil || tok.AccessToken == "" {
		log.Error("qr code exchange failed", logger.Upstream("provider"), logger.Err(err))
		failed := state.QRFailed
		if _, uerr := s.deps.Store.UpdateQRSession(ctx, in.State, state.QRPatch{Status: &failed}); uerr != nil {
			log.Error("could not mark qr session failed", logger.Err(uerr))
		}
		metrics.QRSession(string(state.QRFailed))
		return fail("Authentication failed")
	}

	expiresIn := tok.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultQRExpiresIn
	}
	expiresAt := s.deps.now().Unix() + expiresIn
	success := state.QRSuccess
	patch := state.QRPatch{
		Status:               &success,
		AccessToken:          &tok.AccessToken,
		RefreshToken:         &tok.RefreshToken,
		IDToken:              &tok.IDToken,
		AccessTokenExpiresAt: &expiresAt,
		ExpiresIn:            &expiresIn,
	}
	ok, err := s.deps.Store.UpdateQRSession(ctx, in.State, patch)
	if err != nil || !ok {
		log.Error("could not store qr session tokens", logger.Err(err), logger.Bool("found", ok))
		return fail("Invalid or expired session")
	}

	metrics.QRSession(string(state.QRSuccess))
	log.Info("qr session authenticated", logger.TokenPrefix(tok.AccessToken))
	return dto.QRCallbackResponse{Success: true, Message: "Authentication successful. You can return to your desktop."}
}

func (s *qrService) QRStatus(ctx context.Context, id string) dto.QRStatusResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.qr"),
		logger.Op("QRStatus"),
		logger.SessionID(id),
	)
	result := func(status string, code int, msg string) dto.QRStatusResult {
		return dto.QRStatusResult{
			Response:   dto.QRStatusResponse{SessionID: id, Status: status, Message: msg},
			HTTPStatus: code,
		}
	}

	sess, err := s.deps.Store.GetQRSession(ctx, id)
	switch {
	case errors.Is(err, state.ErrNotFound):
		return result(dto.QRStatusNotFound, http.StatusNotFound, "QR session not found or expired")
	case err != nil:
		log.Error("qr store unavailable", logger.Err(err))
		return result(dto.QRStatusError, http.StatusInternalServerError, "Could not read QR session")
	}

	switch sess.Status {
	case state.QRPending:
		// Patch vacío: solo refresca el TTL, nunca muta el estado.
		if _, err := s.deps.Store.UpdateQRSession(ctx, id, state.QRPatch{}); err != nil {
			log.Warn("could not refresh qr session ttl", logger.Err(err))
		}
		return result(string(state.QRPending), http.StatusOK, "Waiting for authentication")

	case state.QRSuccess:
		if !sess.HasTokens() {
			failed := state.QRFailed
			if _, err := s.deps.Store.UpdateQRSession(ctx, id, state.QRPatch{Status: &failed}); err != nil {
				log.Error("could not mark incomplete qr session failed", logger.Err(err))
			}
			metrics.QRSession(string(state.QRFailed))
			return result(string(state.QRFailed), http.StatusBadRequest, "Authentication session data incomplete")
		}

		// La sesión se entrega una sola vez: de dos polls simultáneos solo
		// uno obtiene el registro.
		taken, err := s.deps.Store.TakeQRSession(ctx, id)
		switch {
		case errors.Is(err, state.ErrNotFound):
			return result(dto.QRStatusNotFound, http.StatusNotFound, "QR session not found or expired")
		case err != nil:
			log.Error("could not consume qr session", logger.Err(err))
			return result(dto.QRStatusError, http.StatusInternalServerError, "Could not read QR session")
		}
		creds := session.Credentials{
			AccessToken:  taken.AccessToken,
			ExpiresAt:    time.Unix(taken.AccessTokenExpiresAt, 0),
			RefreshToken: taken.RefreshToken,
		}
		out := result(string(state.QRSuccess), http.StatusOK, "Authentication successful")
		out.Response.RedirectURL = DashboardPath
		out.Credentials = creds
		log.Info("qr session handed over", logger.Int64("expires_in", creds.ExpiresIn(s.deps.now())))
		return out

	case state.QRFailed:
		return result(string(state.QRFailed), http.StatusBadRequest, "Authentication failed")

	default:
		return result(string(sess.Status), http.StatusBadRequest, "QR session expired")
	}
}
