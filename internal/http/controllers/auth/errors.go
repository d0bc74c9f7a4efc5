package auth

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/lockerbridge/internal/http/errors"
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/auth"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
)

// writeServiceError mapea los sentinels del service al catálogo de errores.
// Nunca expone el texto interno del error.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op(op))

	var appErr *httperrors.AppError
	switch {
	case errors.Is(err, svc.ErrInvalidState):
		appErr = httperrors.ErrInvalidState
	case errors.Is(err, svc.ErrMissingVerifier):
		appErr = httperrors.ErrMissingVerifier
	case errors.Is(err, svc.ErrMissingCode):
		appErr = httperrors.ErrMissingFields.WithDetail("code is required")
	case errors.Is(err, svc.ErrInvalidCallbackURL):
		appErr = httperrors.ErrInvalidParameter.WithDetail("frontend_callback must be an absolute http(s) URL")
	case errors.Is(err, svc.ErrProviderExchangeFailed):
		appErr = httperrors.ErrProviderExchangeFailed
	case errors.Is(err, svc.ErrUserInfoFailed):
		appErr = httperrors.ErrUpstreamRequestFailed
	case errors.Is(err, svc.ErrStateUnavailable):
		appErr = httperrors.ErrServiceUnavailable
	default:
		appErr = httperrors.ErrInternalServerError
	}

	if appErr.HTTPStatus >= 500 {
		log.Error("request failed", logger.Err(err))
	} else {
		log.Debug("request rejected", logger.Err(err))
	}
	w.Header().Set("Cache-Control", "no-store")
	httperrors.WriteError(w, appErr)
}
