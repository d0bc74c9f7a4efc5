package auth

import (
	"net/http"

	"github.com/dropDatabas3/lockerbridge/internal/http/helpers"
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/auth"
)

// DebugController expone diagnósticos; el router solo lo monta fuera de
// producción.
type DebugController struct {
	debug svc.DebugService
}

func NewDebugController(s svc.Services) *DebugController {
	return &DebugController{debug: s.Debug}
}

// Encryption maneja GET /auth/debug/encryption
func (c *DebugController) Encryption(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	res := c.debug.CheckEncryption(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, status, res)
}
