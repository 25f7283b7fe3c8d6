package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mock-api-gateway/internal/auditlog"
	"github.com/mock-api-gateway/internal/auth"
	"github.com/mock-api-gateway/internal/metrics"
	"github.com/mock-api-gateway/internal/model"
	"github.com/mock-api-gateway/internal/policy"
	"github.com/mock-api-gateway/internal/ratelimit"
	"github.com/mock-api-gateway/internal/routing"
	"github.com/mock-api-gateway/internal/stats"
	"github.com/mock-api-gateway/internal/store"
)

// Dispatch stages, also used as metric labels.
const (
	StageAuthenticate = "authenticate"
	StageRateCheck    = "rate_check"
	StageResolve      = "resolve"
	StagePolicy       = "policy"
	StageSuccess      = "success"
)

// DispatchRequest is one inbound gateway call. Path is the logical sub-path
// after the gateway prefix, still URL-escaped.
type DispatchRequest struct {
	Method   string
	Path     string
	Query    url.Values
	Header   http.Header
	Body     []byte
	ClientIP string
}

// DispatchResult is the terminal state of one dispatch. Exactly one of Err
// and Payload is set.
type DispatchResult struct {
	Stage     string
	Err       *Error
	Payload   map[string]any
	RateLimit *ratelimit.Decision
	Entry     model.CallLogEntry
}

// StatusCode returns the HTTP status of the result.
func (r *DispatchResult) StatusCode() int {
	if r.Err != nil {
		return r.Err.Kind.HTTPStatus()
	}
	return http.StatusOK
}

// Dispatcher runs the gateway pipeline: authenticate, rate check, resolve,
// policy check and success. The first failing stage ends the dispatch.
type Dispatcher struct {
	auth    *auth.Authenticator
	limiter *ratelimit.Limiter
	defs    store.DefinitionStore
	policy  *policy.StatusPolicy
	calls   *auditlog.CallLog
	stats   *stats.Aggregator
	metrics *metrics.Metrics
	echo    EchoOptions
	now     func() time.Time
}

// DispatcherDeps holds the collaborators of a Dispatcher.
type DispatcherDeps struct {
	Auth    *auth.Authenticator
	Limiter *ratelimit.Limiter
	Defs    store.DefinitionStore
	Policy  *policy.StatusPolicy
	Calls   *auditlog.CallLog
	Stats   *stats.Aggregator
	Metrics *metrics.Metrics
	Echo    EchoOptions
	Now     func() time.Time
}

func NewDispatcher(d DispatcherDeps) *Dispatcher {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		auth:    d.Auth,
		limiter: d.Limiter,
		defs:    d.Defs,
		policy:  d.Policy,
		calls:   d.Calls,
		stats:   d.Stats,
		metrics: d.Metrics,
		echo:    d.Echo,
		now:     now,
	}
}

// Dispatch runs req to a terminal state. Every terminal state records exactly
// one call log entry and one stats increment.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) *DispatchResult {
	start := d.now()
	req.Method = strings.ToUpper(req.Method)
	if req.Path == "" {
		req.Path = "/"
	}
	entry := model.CallLogEntry{Method: req.Method, IP: req.ClientIP}

	key, err := d.auth.Authenticate(ctx, d.auth.Extract(req.Header))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthorized) {
			log.Error().Err(err).Msg("failed to authenticate gateway call")
		}
		log.Debug().Str("method", req.Method).Str("path", req.Path).Str("ip", req.ClientIP).Msg("gateway call unauthorized")
		return d.finish(start, StageAuthenticate, entry,
			NewUnauthorized(CodeUnauthorized, auth.ErrUnauthorized.Error()), nil, nil)
	}
	entry.KeyID = &key.ID

	decision := d.limiter.Allow(key)
	if !decision.Allowed {
		log.Warn().Str("key_id", key.ID).Int("limit", decision.Limit).Msg("gateway call rate limited")
		return d.finish(start, StageRateCheck, entry,
			NewTooManyRequests(CodeRateLimited, fmt.Sprintf("Rate limit of %d requests per minute exceeded", decision.Limit)),
			nil, &decision)
	}

	defs, err := d.defs.ListDefinitions(ctx, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to load definitions for dispatch")
		return d.finish(start, StageResolve, entry, NewInternal(CodeInternal, "Failed to resolve API"), nil, &decision)
	}
	def, params, ok := routing.Resolve(defs, req.Method, req.Path)
	if !ok {
		path := req.Path
		entry.Path = &path
		log.Debug().Str("key_id", key.ID).Str("method", req.Method).Str("path", req.Path).Msg("no API matches gateway call")
		return d.finish(start, StageResolve, entry,
			NewNotFound(CodeNoMatch, fmt.Sprintf("No API matches %s %s", entry.Method, req.Path)),
			nil, &decision)
	}
	entry.APIID, entry.APIName, entry.Path = &def.ID, &def.Name, &def.Path

	if !d.policy.IsCallable(def) {
		log.Warn().Str("key_id", key.ID).Str("api_id", def.ID).Str("status", def.Status).Msg("gateway call blocked by status")
		return d.finish(start, StagePolicy, entry,
			NewUnavailable(CodeAPIUnavailable, fmt.Sprintf("API %s is unavailable (status %q)", def.ID, def.Status)),
			nil, &decision)
	}

	if err := d.defs.TouchDefinition(ctx, def.ID, start.UTC()); err != nil {
		// Deleted between resolve and touch; the call still succeeds.
		log.Warn().Err(err).Str("api_id", def.ID).Msg("failed to record lastCalledAt")
	}

	payload := d.echo.payload(def, params, req)
	return d.finish(start, StageSuccess, entry, nil, payload, &decision)
}

func (d *Dispatcher) finish(start time.Time, stage string, entry model.CallLogEntry, svcErr *Error, payload map[string]any, decision *ratelimit.Decision) *DispatchResult {
	res := &DispatchResult{Stage: stage, Err: svcErr, Payload: payload, RateLimit: decision}

	entry.StatusCode = res.StatusCode()
	entry.Success = svcErr == nil
	if svcErr != nil {
		entry.Message = svcErr.Message
	}
	entry.Timestamp = start.UTC()

	res.Entry = d.calls.Record(entry)
	d.stats.Record(entry.Success)
	d.metrics.ObserveDispatch(stage, entry.StatusCode, d.now().Sub(start))
	return res
}

// Stats returns the current dispatch counters.
func (d *Dispatcher) Stats() model.Stats {
	return d.stats.Snapshot()
}

// Calls returns call log entries matching f, newest first.
func (d *Dispatcher) Calls(f auditlog.CallFilter) []model.CallLogEntry {
	return d.calls.List(f)
}
