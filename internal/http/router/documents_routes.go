package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/lockerbridge/internal/http/controllers/documents"
	mw "github.com/dropDatabas3/lockerbridge/internal/http/middlewares"
)

// DocumentsRouterDeps contiene las dependencias para el proxy de documentos.
type DocumentsRouterDeps struct {
	Controllers *ctrl.Controllers
	Guard       *mw.Guard
}

// RegisterDocumentsRoutes registra /digilocker/*. Todas requieren un access
// token válido; la identidad es opcional.
func RegisterDocumentsRoutes(r chi.Router, deps DocumentsRouterDeps) {
	c := deps.Controllers.Documents

	r.Route("/digilocker", func(r chi.Router) {
		r.Use(mw.WithNoStore(), mw.WithLogging(), deps.Guard.RequireCredential())

		r.Get("/files", c.Files)
		r.Get("/file", c.File)
		r.Get("/profile", c.Profile)
	})
}
