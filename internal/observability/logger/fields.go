package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SESIÓN
// =================================================================================

// SessionID identifica una sesión QR.
func SessionID(v string) zap.Field {
	return zap.String("session_id", v)
}

// Namespace identifica el namespace del state store (state, qr_session, ...).
func Namespace(v string) zap.Field {
	return zap.String("namespace", v)
}

// GuardMode indica el modo del guard (self_issued | federated).
func GuardMode(v string) zap.Field {
	return zap.String("guard_mode", v)
}

// Reason describe el motivo de una denegación o fallo.
func Reason(v string) zap.Field {
	return zap.String("reason", v)
}

// Upstream identifica el servicio externo (provider, resource_api, setu).
func Upstream(v string) zap.Field {
	return zap.String("upstream", v)
}

// QRStatus es el estado de una sesión QR.
func QRStatus(v string) zap.Field {
	return zap.String("qr_status", v)
}

// TokenPrefix loguea solo los primeros 8 caracteres de un token.
func TokenPrefix(tok string) zap.Field {
	if len(tok) > 8 {
		tok = tok[:8] + "..."
	}
	return zap.String("token_prefix", tok)
}

// TraceID correlaciona llamadas a APIs externas.
func TraceID(v string) zap.Field {
	return zap.String("trace_id", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// =================================================================================
// CAMPOS GENÉRICOS
// =================================================================================

func Key(v string) zap.Field              { return zap.String("key", v) }
func Count(v int) zap.Field               { return zap.Int("count", v) }
func Any(key string, v any) zap.Field     { return zap.Any(key, v) }
func String(key, v string) zap.Field      { return zap.String(key, v) }
func Int(key string, v int) zap.Field     { return zap.Int(key, v) }
func Int64(key string, v int64) zap.Field { return zap.Int64(key, v) }
func Bool(key string, v bool) zap.Field   { return zap.Bool(key, v) }
