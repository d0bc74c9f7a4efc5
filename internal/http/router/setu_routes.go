package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/lockerbridge/internal/http/controllers/setu"
	mw "github.com/dropDatabas3/lockerbridge/internal/http/middlewares"
)

// SetuRouterDeps contiene las dependencias del tracker API Setu.
type SetuRouterDeps struct {
	Controllers *ctrl.Controllers
}

// RegisterSetuRoutes registra /apisetu/digilocker.
func RegisterSetuRoutes(r chi.Router, deps SetuRouterDeps) {
	c := deps.Controllers.Setu

	r.Route("/apisetu/digilocker", func(r chi.Router) {
		r.Use(mw.WithNoStore(), mw.WithLogging())

		r.Post("/", c.Create)
		r.Get("/documents", c.Documents)
		r.Get("/{id}/status", c.Status)
		r.Get("/{id}/revoke", c.Revoke)
		r.Post("/{id}/document", c.FetchDocument)
		r.Get("/{id}/aadhaar", c.Aadhaar)
	})
}
