// Package server assembles the gateway from configuration and serves it.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mock-api-gateway/internal/auditlog"
	"github.com/mock-api-gateway/internal/auth"
	"github.com/mock-api-gateway/internal/config"
	"github.com/mock-api-gateway/internal/metrics"
	"github.com/mock-api-gateway/internal/policy"
	"github.com/mock-api-gateway/internal/ratelimit"
	"github.com/mock-api-gateway/internal/service"
	"github.com/mock-api-gateway/internal/stats"
	"github.com/mock-api-gateway/internal/store"
)

// App holds the wired components of one gateway process.
type App struct {
	Config      *config.Config
	Store       store.Store
	Metrics     *metrics.Metrics
	Definitions *service.DefinitionService
	Keys        *service.APIKeyService
	Dispatcher  *service.Dispatcher
	Handler     http.Handler
}

// Option customizes New.
type Option func(*options)

type options struct {
	limiterOpts []ratelimit.Option
}

// WithLimiterOptions passes options to the rate limiter, e.g. a test clock.
func WithLimiterOptions(opts ...ratelimit.Option) Option {
	return func(o *options) { o.limiterOpts = append(o.limiterOpts, opts...) }
}

// New wires every component and applies seed to the empty registry.
func New(ctx context.Context, cfg *config.Config, seed *config.Seed, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := store.NewMemory()
	m := metrics.New()

	definitions := service.NewDefinitionService(s, auditlog.NewChangeLog(cfg.ChangeLogCapacity), m, service.DefinitionServiceConfig{
		Statuses:      seed.Statuses,
		DefaultStatus: cfg.DefaultStatus,
		Actor:         cfg.AdminActor,
	})
	keys := service.NewAPIKeyService(s, m, cfg.DefaultRateLimitPerMin)

	authn := auth.NewAuthenticator(s, cfg.KeyHeader)
	statusPolicy := policy.NewStatusPolicy(cfg.BlockedStatusMarkers...)

	dispatcher := service.NewDispatcher(service.DispatcherDeps{
		Auth:    authn,
		Limiter: ratelimit.NewLimiter(o.limiterOpts...),
		Defs:    s,
		Policy:  statusPolicy,
		Calls:   auditlog.NewCallLog(cfg.CallLogCapacity),
		Stats:   stats.NewAggregator(),
		Metrics: m,
		Echo: service.EchoOptions{
			StripPrefix:      cfg.EchoStripPrefix,
			CredentialHeader: authn.Header(),
		},
	})

	if err := service.ApplySeed(ctx, seed, definitions, keys); err != nil {
		return nil, fmt.Errorf("applying seed: %w", err)
	}

	log.Info().
		Str("keyHeader", authn.Header()).
		Strs("blockedMarkers", statusPolicy.Markers()).
		Int("statuses", len(seed.Statuses)).
		Int("seedAPIs", len(seed.APIs)).
		Int("seedKeys", len(seed.Keys)).
		Msg("gateway assembled")

	app := &App{
		Config:      cfg,
		Store:       s,
		Metrics:     m,
		Definitions: definitions,
		Keys:        keys,
		Dispatcher:  dispatcher,
	}
	app.Handler = NewRouter(app)
	return app, nil
}

// HTTPServer returns an http.Server with the configured timeouts.
func (a *App) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      a.Handler,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
		IdleTimeout:  a.Config.IdleTimeout,
	}
}
