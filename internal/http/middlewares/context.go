package middlewares

import "context"

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxIdentityKey guarda la identidad resuelta por el guard
	ctxIdentityKey ctxKey = "identity"
	// ctxAccessTokenKey guarda el access token vigente (rotado si hubo refresh)
	ctxAccessTokenKey ctxKey = "access_token"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// =================================================================================
// CONTEXT SETTERS
// =================================================================================

// WithIdentity inyecta la identidad en el contexto
func WithIdentity(ctx context.Context, identity map[string]any) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, identity)
}

// WithAccessToken inyecta el access token en el contexto
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxAccessTokenKey, token)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// =================================================================================
// CONTEXT GETTERS
// =================================================================================

// GetIdentity obtiene la identidad del contexto: claims del JWT propio en
// Mode A, perfil del proveedor en Mode B. Nil si el guard no la resolvió.
func GetIdentity(ctx context.Context) map[string]any {
	if m, ok := ctx.Value(ctxIdentityKey).(map[string]any); ok {
		return m
	}
	return nil
}

// GetAccessToken obtiene el access token validado por el guard.
func GetAccessToken(ctx context.Context) string {
	s, _ := ctx.Value(ctxAccessTokenKey).(string)
	return s
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}

// ClaimString extrae un string de la identidad.
func ClaimString(claims map[string]any, key string) string {
	if claims == nil {
		return ""
	}
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

// Subject devuelve el identificador del usuario: user_id en tokens propios,
// sub o digilockerid en perfiles del proveedor.
func Subject(identity map[string]any) string {
	for _, k := range []string{"user_id", "sub", "digilockerid"} {
		if s := ClaimString(identity, k); s != "" {
			return s
		}
	}
	return ""
}
