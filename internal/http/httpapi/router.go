package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Shaheer-Khan1/AdGenerator/internal/http/handlers"
	"github.com/Shaheer-Khan1/AdGenerator/internal/middleware"
)

func NewRouter(app *handlers.App, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(logger),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/videos", func(r chi.Router) {
		r.Post("/", app.SubmitVideo)
	})
	r.Route("/v1/tasks", func(r chi.Router) {
		r.Get("/{id}", app.GetTask)
		r.Get("/{id}/download", app.DownloadTask)
	})
	r.Route("/v1/catalog", func(r chi.Router) {
		r.Get("/stats", app.CatalogStats)
		r.Post("/reload", app.CatalogReload)
	})

	return r
}
