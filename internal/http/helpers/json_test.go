package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadJSON(t *testing.T) {
	var v struct {
		Code string `json:"code"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"c","extra":1}`))
	r.Header.Set("Content-Type", "application/json")
	assert.True(t, ReadJSON(httptest.NewRecorder(), r, &v))
	assert.Equal(t, "c", v.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":`))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	assert.False(t, ReadJSON(rec, r, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`code=c`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	assert.False(t, ReadJSON(rec, r, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"`+strings.Repeat("x", MaxBodyBytes)+`"}`))
	r.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	assert.False(t, ReadJSON(rec, r, &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAllowMethods(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.False(t, AllowMethods(rec, httptest.NewRequest(http.MethodPut, "/", nil), http.MethodGet, http.MethodHead))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}
