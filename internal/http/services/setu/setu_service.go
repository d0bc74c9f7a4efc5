// Package setu implementa el tracker de consent requests de API Setu: crea el
// request upstream, lo recuerda hasta su vencimiento y consulta o revoca su
// estado.
package setu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/setu"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/state"
)

const (
	namespace       = "setu_request"
	fallbackTTL     = time.Hour
	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 4 << 10
	requestsPath    = "/api/digilocker/"
	documentsPath   = "/api/digilocker/documents"
	requestDocument = "AADHAAR"
)

var (
	ErrInvalidRequest = errors.New("invalid consent request")
	ErrNotConfigured  = errors.New("api setu is not configured")
	ErrUpstream       = errors.New("api setu request failed")
)

// Config son las credenciales del producto en API Setu.
type Config struct {
	BaseURL           string
	ClientID          string
	ClientSecret      string
	ProductInstanceID string
}

// Service define las operaciones del tracker.
type Service interface {
	Create(ctx context.Context, in dto.CreateRequest) (*dto.RequestResponse, error)
	Status(ctx context.Context, id string) (*dto.StatusResponse, error)
	Revoke(ctx context.Context, id string) (*dto.RevokeResponse, error)
	Documents(ctx context.Context) (*dto.DocumentsResponse, error)
	FetchDocument(ctx context.Context, id string, in dto.FetchDocumentRequest) (*dto.DocumentResponse, error)
	Aadhaar(ctx context.Context, id string) (*dto.AadhaarResponse, error)
	// Lookup devuelve el registro local; state.ErrNotFound si venció.
	Lookup(ctx context.Context, id string) (*dto.StoredRequest, error)
}

// Deps contiene las dependencias del tracker.
type Deps struct {
	Config     Config
	KV         cache.Client
	HTTPClient *http.Client
	Now        func() time.Time
}

type service struct {
	cfg      Config
	requests *state.Bucket[dto.StoredRequest]
	hc       *http.Client
	validate *validator.Validate
	now      func() time.Time
}

// NewService crea el tracker.
func NewService(d Deps) Service {
	hc := d.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	d.Config.BaseURL = strings.TrimRight(d.Config.BaseURL, "/")
	return &service{
		cfg:      d.Config,
		requests: state.NewBucket[dto.StoredRequest](d.KV, namespace, fallbackTTL),
		hc:       hc,
		validate: validator.New(),
		now:      now,
	}
}

type createInput struct {
	RedirectURL string `validate:"required,url"`
}

// upstreamRequest es la respuesta de Setu para create y status.
type upstreamRequest struct {
	ID                    string           `json:"id"`
	URL                   string           `json:"url"`
	Status                string           `json:"status"`
	ValidUpto             string           `json:"validUpto"`
	TraceID               string           `json:"traceId"`
	DigilockerUserDetails *dto.UserDetails `json:"digilockerUserDetails"`
}

func (s *service) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("setu"),
		logger.Op(op),
		logger.Upstream("setu"),
	)
}

func (s *service) Create(ctx context.Context, in dto.CreateRequest) (*dto.RequestResponse, error) {
	traceID := uuid.NewString()
	log := s.log(ctx, "Create").With(logger.TraceID(traceID))

	in.RedirectURL = strings.TrimSpace(in.RedirectURL)
	if err := s.validate.Struct(createInput{RedirectURL: in.RedirectURL}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	body := map[string]any{
		"redirectUrl": in.RedirectURL,
		"documents":   []string{requestDocument},
	}
	var out upstreamRequest
	start := s.now()
	if err := s.call(ctx, http.MethodPost, requestsPath, body, &out); err != nil {
		log.Error("create consent request failed", logger.Err(err))
		return nil, err
	}
	log.Info("consent request created", logger.String("request_id", out.ID), logger.Duration(s.now().Sub(start)))

	rec := dto.StoredRequest{
		ID:          out.ID,
		Status:      out.Status,
		ValidUpto:   out.ValidUpto,
		URL:         out.URL,
		RedirectURL: in.RedirectURL,
		CreatedAt:   s.now().UTC(),
		TraceID:     traceID,
	}
	if err := s.requests.Put(ctx, out.ID, rec, s.ttlFor(out.ValidUpto)); err != nil {
		// El request ya existe upstream; solo se pierde el seguimiento local.
		log.Warn("could not store consent request", logger.Err(err))
	}

	return &dto.RequestResponse{ID: out.ID, URL: out.URL, Status: out.Status, ValidUpto: out.ValidUpto}, nil
}

func (s *service) Status(ctx context.Context, id string) (*dto.StatusResponse, error) {
	log := s.log(ctx, "Status").With(logger.String("request_id", id))
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidRequest
	}

	var out upstreamRequest
	if err := s.call(ctx, http.MethodGet, requestPath(id, "status"), nil, &out); err != nil {
		log.Error("consent request status failed", logger.Err(err))
		return nil, err
	}

	_, err := s.requests.Update(ctx, id, func(rec *dto.StoredRequest) error {
		rec.Status = out.Status
		if out.DigilockerUserDetails != nil {
			rec.UserDetails = out.DigilockerUserDetails
		}
		return nil
	})
	if err != nil {
		log.Warn("could not update stored consent request", logger.Err(err))
	}

	res := &dto.StatusResponse{
		ID:          out.ID,
		Status:      out.Status,
		ValidUpto:   out.ValidUpto,
		TraceID:     out.TraceID,
		UserDetails: out.DigilockerUserDetails,
	}
	// El registro local aporta el redirect y los datos del usuario de un
	// status anterior.
	if rec, err := s.Lookup(ctx, id); err == nil {
		res.RedirectURL = rec.RedirectURL
		if res.UserDetails == nil {
			res.UserDetails = rec.UserDetails
		}
	}
	return res, nil
}

func (s *service) Revoke(ctx context.Context, id string) (*dto.RevokeResponse, error) {
	log := s.log(ctx, "Revoke").With(logger.String("request_id", id))
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidRequest
	}

	if err := s.call(ctx, http.MethodGet, requestPath(id, "revoke"), nil, nil); err != nil {
		log.Error("consent request revoke failed", logger.Err(err))
		return nil, err
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		log.Warn("could not delete stored consent request", logger.Err(err))
	}
	log.Info("consent request revoked")
	return &dto.RevokeResponse{Success: true}, nil
}

func (s *service) Documents(ctx context.Context) (*dto.DocumentsResponse, error) {
	log := s.log(ctx, "Documents")

	var out dto.DocumentsResponse
	start := s.now()
	if err := s.call(ctx, http.MethodGet, documentsPath, nil, &out); err != nil {
		log.Error("documents list failed", logger.Err(err))
		return nil, err
	}
	log.Debug("documents list fetched", logger.Int("count", len(out.Documents)), logger.Duration(s.now().Sub(start)))
	return &out, nil
}

func (s *service) FetchDocument(ctx context.Context, id string, in dto.FetchDocumentRequest) (*dto.DocumentResponse, error) {
	log := s.log(ctx, "FetchDocument").With(logger.String("request_id", id))
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidRequest
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var out dto.DocumentResponse
	start := s.now()
	if err := s.call(ctx, http.MethodPost, requestPath(id, "document"), in, &out); err != nil {
		log.Error("document fetch failed", logger.String("doc_type", in.DocType), logger.Err(err))
		return nil, err
	}
	log.Info("document fetched", logger.String("doc_type", in.DocType), logger.Duration(s.now().Sub(start)))
	return &out, nil
}

func (s *service) Aadhaar(ctx context.Context, id string) (*dto.AadhaarResponse, error) {
	log := s.log(ctx, "Aadhaar").With(logger.String("request_id", id))
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidRequest
	}

	var out dto.AadhaarResponse
	if err := s.call(ctx, http.MethodGet, requestPath(id, "aadhaar"), nil, &out); err != nil {
		log.Error("aadhaar fetch failed", logger.Err(err))
		return nil, err
	}
	log.Info("aadhaar data fetched")
	return &out, nil
}

func (s *service) Lookup(ctx context.Context, id string) (*dto.StoredRequest, error) {
	return s.requests.Get(ctx, id)
}

// requestPath arma /api/digilocker/{id}/{action} con el id escapado.
func requestPath(id, action string) string {
	return requestsPath + url.PathEscape(id) + "/" + action
}

// ttlFor vive hasta validUpto; sin fecha parseable (o ya vencida) usa 1h.
func (s *service) ttlFor(validUpto string) time.Duration {
	t, err := time.Parse(time.RFC3339, validUpto)
	if err != nil {
		return fallbackTTL
	}
	if ttl := t.Sub(s.now()); ttl > 0 {
		return ttl
	}
	return fallbackTTL
}

func (s *service) call(ctx context.Context, method, path string, body, out any) error {
	if s.cfg.BaseURL == "" {
		return ErrNotConfigured
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("setu: encode: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("setu: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", s.cfg.ClientID)
	req.Header.Set("x-client-secret", s.cfg.ClientSecret)
	req.Header.Set("x-product-instance-id", s.cfg.ProductInstanceID)

	resp, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}
