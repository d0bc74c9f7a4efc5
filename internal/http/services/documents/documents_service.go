// Package documents contiene el proxy autenticado hacia la API de recursos
// del proveedor (perfil, documentos emitidos, contenido de archivos).
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/lockerbridge/internal/environment"
	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/documents"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
)

var (
	ErrNoAccessToken = errors.New("access token is required")
	ErrMissingURI    = errors.New("document uri is required")
	ErrNotFound      = digilocker.ErrNotFound
)

// UpstreamError es una respuesta no-2xx (distinta de 404) del proveedor.
type UpstreamError = digilocker.UpstreamError

// Service define las operaciones del proxy de documentos.
type Service interface {
	Profile(ctx context.Context, accessToken string) (dto.Profile, error)
	IssuedFiles(ctx context.Context, accessToken string) (*dto.IssuedFilesResponse, error)
	FileContent(ctx context.Context, accessToken, uri string) (*dto.FileStream, error)
}

// Deps contiene las dependencias del proxy.
type Deps struct {
	Docs environment.Documents
}

type service struct {
	docs environment.Documents
}

// NewService crea el proxy de documentos.
func NewService(d Deps) Service {
	return &service{docs: d.Docs}
}

const component = "documents"

func (s *service) Profile(ctx context.Context, accessToken string) (dto.Profile, error) {
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}
	p, err := s.docs.UserInfo(ctx, accessToken)
	if err != nil {
		return nil, s.fail(ctx, "Profile", err)
	}
	return p, nil
}

func (s *service) IssuedFiles(ctx context.Context, accessToken string) (*dto.IssuedFilesResponse, error) {
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}
	files, err := s.docs.IssuedFiles(ctx, accessToken)
	if err != nil {
		return nil, s.fail(ctx, "IssuedFiles", err)
	}
	return files, nil
}

func (s *service) FileContent(ctx context.Context, accessToken, uri string) (*dto.FileStream, error) {
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}
	if strings.TrimSpace(uri) == "" {
		return nil, ErrMissingURI
	}
	f, err := s.docs.FileContent(ctx, accessToken, uri)
	if err != nil {
		return nil, s.fail(ctx, "FileContent", err)
	}
	return f, nil
}

// fail loguea y normaliza el error; NotFound y UpstreamError pasan tal cual
// para que el controller elija el status.
func (s *service) fail(ctx context.Context, op string, err error) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(component),
		logger.Op(op),
		logger.Upstream("provider"),
	)
	var up *UpstreamError
	switch {
	case errors.Is(err, ErrNotFound):
		log.Info("resource not found upstream")
		return err
	case errors.As(err, &up):
		log.Warn("upstream returned error", logger.Status(up.Status))
		return err
	default:
		log.Error("upstream request failed", logger.Err(err))
		return fmt.Errorf("documents: %s: %w", strings.ToLower(op), err)
	}
}
