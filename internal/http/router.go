package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/JacobItopa/plan-elevation/internal/http/handlers"
	"github.com/JacobItopa/plan-elevation/internal/middleware"
)

// NewRouter wires the HTTP surface: the generation endpoints, health,
// metrics, and static serving of the uploads directory (the locally derived
// asset URLs must resolve when the service runs behind a public hostname).
func NewRouter(app *handlers.App, logger zerolog.Logger, uploadDir string) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", app.Generate)
		r.Get("/download", app.Download)
	})

	r.Handle("/uploads/*", stdhttp.StripPrefix("/uploads/", stdhttp.FileServer(stdhttp.Dir(uploadDir))))

	return r
}
