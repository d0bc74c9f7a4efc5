// Package metrics define las métricas Prometheus del servicio. Viven en un
// paquete propio para que state, services y middlewares puedan instrumentar
// sin ciclos de import.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo por método y ruta",
	}, []string{"method", "path"})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Callbacks de login por resultado",
	}, []string{"result"})

	RefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_refresh_total",
		Help: "Intentos de refresh por resultado (success|rejected|transient|decrypt_failed|empty)",
	}, []string{"result"})

	GuardDenialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_guard_denials_total",
		Help: "Denegaciones del guard por motivo",
	}, []string{"reason"})

	QRSessionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_qr_sessions_total",
		Help: "Transiciones de sesiones QR por estado",
	}, []string{"status"})

	StoreOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "state_store_ops_total",
		Help: "Operaciones del state store por namespace, operación y resultado",
	}, []string{"namespace", "op", "result"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal, HTTPRequestDuration, HTTPInflight,
		LoginsTotal, RefreshTotal, GuardDenialsTotal, QRSessionsTotal, StoreOpsTotal,
	}
}

// Register registra todas las métricas (default registry si reg es nil),
// ignorando duplicados, y devuelve el handler para /metrics.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

func Login(result string)       { LoginsTotal.WithLabelValues(result).Inc() }
func Refresh(result string)     { RefreshTotal.WithLabelValues(result).Inc() }
func GuardDenied(reason string) { GuardDenialsTotal.WithLabelValues(reason).Inc() }
func QRSession(status string)   { QRSessionsTotal.WithLabelValues(status).Inc() }

// StoreOp registra una operación del state store.
func StoreOp(namespace, op, result string) {
	StoreOpsTotal.WithLabelValues(namespace, op, result).Inc()
}
