package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "/"},
		{"/auth/login", "/auth/login"},
		{"/auth/qr-status/0123456789abcdef0123456789abcdef", "/auth/qr-status/:param"},
		{"/apisetu/digilocker/123/status", "/apisetu/digilocker/:param/status"},
		{"/apisetu/digilocker/3f1c2a9e-1b2c-4d5e-8f90-123456789abc/revoke", "/apisetu/digilocker/:param/revoke"},
		{"/auth/user?x=1", "/auth/user"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, normalizePath(tc.in), tc.in)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := Register(reg)
	require.NoError(t, err)
	require.NotNil(t, h)

	_, err = Register(reg)
	require.NoError(t, err)
}

func TestWithMetrics_CountsStatus(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/auth/qr-status/:param", "404"))

	h := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/qr-status/0123456789abcdef0123456789abcdef", nil))

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/auth/qr-status/:param", "404"))
	assert.Equal(t, before+1, after)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(RefreshTotal.WithLabelValues("rejected"))
	Refresh("rejected")
	assert.Equal(t, before+1, testutil.ToFloat64(RefreshTotal.WithLabelValues("rejected")))
}
