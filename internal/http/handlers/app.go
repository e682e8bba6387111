package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/JacobItopa/plan-elevation/internal/elevation"
	"github.com/JacobItopa/plan-elevation/internal/middleware"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Service *elevation.Service
	Logger  zerolog.Logger
	// PublicBaseURL, when non-empty, overrides the origin derived from the
	// inbound request when composing uploaded-asset URLs.
	PublicBaseURL string
}

// NewApp constructs the handler container.
func NewApp(svc *elevation.Service, logger zerolog.Logger, publicBaseURL string) *App {
	return &App{Service: svc, Logger: logger, PublicBaseURL: publicBaseURL}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, detail string) {
	a.json(w, status, map[string]string{"error": code, "detail": detail})
}

func requestID(r *http.Request) string {
	return middleware.RequestIDFromContext(r.Context())
}

// requestOrigin reconstructs the externally visible base URL of this service
// as perceived by the inbound request.
func (a *App) requestOrigin(r *http.Request) string {
	if a.PublicBaseURL != "" {
		return a.PublicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
