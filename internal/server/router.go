package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mock-api-gateway/internal/handler"
	"github.com/mock-api-gateway/internal/handler/admin"
	"github.com/mock-api-gateway/internal/middleware"
)

// NewRouter mounts the admin surface, health and metrics endpoints and the
// catch-all gateway route.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(corsOptions(app)))

	defs := app.Definitions
	keys := app.Keys

	r.Method(http.MethodGet, "/healthz", handler.NewHealthHandler(app.Store))
	r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)

		r.Route("/apis", func(r chi.Router) {
			r.Method(http.MethodGet, "/", admin.NewListAPIsHandler(defs))
			r.With(middleware.RequireJSON).Method(http.MethodPost, "/", admin.NewCreateAPIHandler(defs))
			r.With(middleware.RequireContentType(middleware.OpenAPIMediaTypes...)).Method(http.MethodPost, "/import-openapi", admin.NewImportOpenAPIHandler(defs))
			r.Method(http.MethodGet, "/{id}", admin.NewGetAPIHandler(defs))
			r.With(middleware.RequireJSON).Method(http.MethodPut, "/{id}", admin.NewUpdateAPIHandler(defs))
			r.Method(http.MethodDelete, "/{id}", admin.NewDeleteAPIHandler(defs))
			r.With(middleware.RequireJSON).Method(http.MethodPost, "/{id}/status", admin.NewSetAPIStatusHandler(defs))
			r.Method(http.MethodGet, "/{id}/logs", handler.NewChangeLogHandler(defs))
		})

		r.Route("/keys", func(r chi.Router) {
			r.Method(http.MethodGet, "/", admin.NewListAPIKeysHandler(keys))
			r.With(middleware.RequireJSON).Method(http.MethodPost, "/", admin.NewCreateAPIKeyHandler(keys))
			r.Method(http.MethodGet, "/{id}", admin.NewGetAPIKeyHandler(keys))
			r.With(middleware.RequireJSON).Method(http.MethodPut, "/{id}", admin.NewUpdateAPIKeyHandler(keys))
			r.Method(http.MethodPost, "/{id}/rotate", admin.NewRegenerateAPIKeyHandler(keys))
		})

		r.Method(http.MethodGet, "/stats", handler.NewStatsHandler(app.Dispatcher))
		r.Method(http.MethodGet, "/logs", handler.NewCallLogHandler(app.Dispatcher))
		r.Method(http.MethodGet, "/settings/status-def", handler.NewStatusDefsHandler(defs))
	})

	gateway := handler.NewGatewayHandler(app.Dispatcher, app.Config.MaxBodyBytes)
	r.Handle(handler.GatewayPrefix, gateway)
	r.Handle(handler.GatewayPrefix+"/*", gateway)

	return r
}

func corsOptions(app *App) cors.Options {
	origins := app.Config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", app.Config.KeyHeader},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}
}
