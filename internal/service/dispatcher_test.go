package service

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mock-api-gateway/internal/auditlog"
	"github.com/mock-api-gateway/internal/auth"
	"github.com/mock-api-gateway/internal/metrics"
	"github.com/mock-api-gateway/internal/policy"
	"github.com/mock-api-gateway/internal/ratelimit"
	"github.com/mock-api-gateway/internal/stats"
	"github.com/mock-api-gateway/internal/store"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type dispatchFixture struct {
	ctx        context.Context
	clock      *testClock
	store      *store.Memory
	defs       *DefinitionService
	keys       *APIKeyService
	dispatcher *Dispatcher
	calls      *auditlog.CallLog
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()
	clock := &testClock{now: time.Unix(1_700_000_040, 0)}
	s := store.NewMemory()
	calls := auditlog.NewCallLog(100)
	m := metrics.New()

	f := &dispatchFixture{
		ctx:   context.Background(),
		clock: clock,
		store: s,
		calls: calls,
		defs: NewDefinitionService(s, auditlog.NewChangeLog(100), m, DefinitionServiceConfig{
			Statuses: testStatuses, DefaultStatus: "normal", Actor: "system",
		}),
		keys: NewAPIKeyService(s, m, 60),
	}
	f.dispatcher = NewDispatcher(DispatcherDeps{
		Auth:    auth.NewAuthenticator(s, ""),
		Limiter: ratelimit.NewLimiter(ratelimit.WithClock(clock.Now)),
		Defs:    s,
		Policy:  policy.NewStatusPolicy(),
		Calls:   calls,
		Stats:   stats.NewAggregator(),
		Metrics: m,
		Echo:    EchoOptions{StripPrefix: "x-api-", CredentialHeader: auth.DefaultHeader},
		Now:     clock.Now,
	})
	return f
}

func (f *dispatchFixture) issueKey(t *testing.T, limit int) *CreateAPIKeyResult {
	t.Helper()
	res, err := f.keys.Create(f.ctx, CreateAPIKeyInput{Name: "test", RateLimitPerMin: &limit})
	require.NoError(t, err)
	return res
}

func gatewayCall(method, path, secret string) DispatchRequest {
	h := http.Header{}
	if secret != "" {
		h.Set(auth.DefaultHeader, secret)
	}
	return DispatchRequest{Method: method, Path: path, Header: h, Query: url.Values{}, ClientIP: "10.0.0.1"}
}

func TestDispatchSuccessAndRateLimit(t *testing.T) {
	f := newDispatchFixture(t)
	key := f.issueKey(t, 2)
	def, err := f.defs.Create(f.ctx, CreateDefinitionInput{Name: "Widget", Method: "GET", Path: "/widgets/:id"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res := f.dispatcher.Dispatch(f.ctx, gatewayCall("GET", "/widgets/7", key.RawKey))
		require.Nil(t, res.Err)
		assert.Equal(t, StageSuccess, res.Stage)
		assert.Equal(t, http.StatusOK, res.StatusCode())
		require.NotNil(t, res.RateLimit)
		assert.Equal(t, 1-i, res.RateLimit.Remaining)
	}

	got, err := f.defs.Get(f.ctx, def.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastCalledAt)
	assert.True(t, got.LastCalledAt.Equal(f.clock.Now()))

	snap := f.dispatcher.Stats()
	assert.Equal(t, int64(2), snap.Success)

	res := f.dispatcher.Dispatch(f.ctx, gatewayCall("GET", "/widgets/7", key.RawKey))
	require.NotNil(t, res.Err)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode())
	assert.Equal(t, CodeRateLimited, res.Err.Code)
	require.NotNil(t, res.Entry.KeyID)
	assert.Equal(t, key.APIKey.ID, *res.Entry.KeyID)
	assert.Nil(t, res.Entry.APIID)
	assert.Nil(t, res.Entry.Path)

	snap = f.dispatcher.Stats()
	assert.Equal(t, int64(3), snap.TotalCalls)
	assert.Equal(t, int64(1), snap.Fail)
	assert.Equal(t, 67, snap.SuccessRate)

	// The next aligned window admits again.
	f.clock.Advance(time.Minute)
	res = f.dispatcher.Dispatch(f.ctx, gatewayCall("GET", "/widgets/7", key.RawKey))
	assert.Nil(t, res.Err)
}

func TestDispatchUnauthorized(t *testing.T) {
	f := newDispatchFixture(t)
	key := f.issueKey(t, 5)
	disabled := false
	_, err := f.keys.Update(f.ctx, key.APIKey.ID, store.APIKeyUpdates{Enabled: &disabled})
	require.NoError(t, err)

	var messages []string
	for _, secret := range []string{"", "unknown", key.RawKey} {
		res := f.dispatcher.Dispatch(f.ctx, gatewayCall("GET", "/anything", secret))
		require.NotNil(t, res.Err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode())
		assert.Equal(t, StageAuthenticate, res.Stage)
		assert.Nil(t, res.Entry.KeyID)
		assert.Nil(t, res.Entry.APIID)
		assert.Nil(t, res.Entry.APIName)
		assert.Nil(t, res.Entry.Path)
		assert.Nil(t, res.RateLimit)
		messages = append(messages, res.Err.Message)
	}
	assert.Equal(t, messages[0], messages[1])
	assert.Equal(t, messages[1], messages[2])
	assert.Equal(t, int64(3), f.dispatcher.Stats().TotalCalls)
	assert.Len(t, f.dispatcher.Calls(auditlog.CallFilter{}), 3)
}

func TestDispatchNoMatch(t *testing.T) {
	f := newDispatchFixture(t)
	key := f.issueKey(t, 5)
	_, err := f.defs.Create(f.ctx, CreateDefinitionInput{Name: "Widget", Method: "GET", Path: "/widgets/:id"})
	require.NoError(t, err)

	for _, call := range []DispatchRequest{
		gatewayCall("POST", "/widgets/7", key.RawKey),
		gatewayCall("GET", "/widgets/7/parts", key.RawKey),
		gatewayCall("GET", "/widgets/", key.RawKey),
	} {
		res := f.dispatcher.Dispatch(f.ctx, call)
		require.NotNil(t, res.Err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode())
		assert.Equal(t, CodeNoMatch, res.Err.Code)
		require.NotNil(t, res.Entry.Path)
		assert.Equal(t, call.Path, *res.Entry.Path)
		assert.Nil(t, res.Entry.APIID)
		assert.NotNil(t, res.Entry.KeyID)
	}
}

func TestDispatchPolicyBlocked(t *testing.T) {
	f := newDispatchFixture(t)
	key := f.issueKey(t, 5)
	def, err := f.defs.Create(f.ctx, CreateDefinitionInput{Name: "Flaky", Method: "GET", Path: "/flaky", Status: "abnormal"})
	require.NoError(t, err)

	res := f.dispatcher.Dispatch(f.ctx, gatewayCall("get", "/flaky", key.RawKey))
	require.NotNil(t, res.Err)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode())
	assert.Equal(t, CodeAPIUnavailable, res.Err.Code)
	require.NotNil(t, res.Entry.APIID)
	assert.Equal(t, def.ID, *res.Entry.APIID)
	assert.Equal(t, "Flaky", *res.Entry.APIName)
	assert.Equal(t, "/flaky", *res.Entry.Path)
	assert.Equal(t, int64(1), f.dispatcher.Stats().Fail)

	got, err := f.defs.Get(f.ctx, def.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastCalledAt)

	// Paid definitions stay callable.
	_, err = f.defs.SetStatus(f.ctx, def.ID, "paid", "")
	require.NoError(t, err)
	res = f.dispatcher.Dispatch(f.ctx, gatewayCall("GET", "/flaky", key.RawKey))
	assert.Nil(t, res.Err)
}

func TestDispatchNewestDefinitionShadowsOlder(t *testing.T) {
	f := newDispatchFixture(t)
	key := f.issueKey(t, 5)
	_, err := f.defs.Create(f.ctx, CreateDefinitionInput{Name: "Old", Method: "GET", Path: "/items/:id"})
	require.NoError(t, err)
	newer, err := f.defs.Create(f.ctx, CreateDefinitionInput{Name: "New", Method: "GET", Path: "/items/:itemId"})
	require.NoError(t, err)

	res := f.dispatcher.Dispatch(f.ctx, gatewayCall("GET", "/items/1", key.RawKey))
	require.Nil(t, res.Err)
	assert.Equal(t, newer.ID, *res.Entry.APIID)
}

func TestDispatchEchoPayload(t *testing.T) {
	f := newDispatchFixture(t)
	key := f.issueKey(t, 5)
	def, err := f.defs.Create(f.ctx, CreateDefinitionInput{Name: "Order", Method: "POST", Path: "/orders/:id"})
	require.NoError(t, err)

	req := gatewayCall("POST", "/orders/a%20b", key.RawKey)
	req.Header.Set("X-Api-Trace", "internal")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Add("Accept", "a")
	req.Header.Add("Accept", "b")
	req.Query = url.Values{"page": {"2"}, "tag": {"x", "y"}}
	req.Body = []byte(`{"qty": 3}`)

	res := f.dispatcher.Dispatch(f.ctx, req)
	require.Nil(t, res.Err)

	api := res.Payload["api"].(map[string]any)
	assert.Equal(t, def.ID, api["id"])
	assert.Equal(t, "/orders/:id", api["path"])
	assert.Equal(t, true, res.Payload["ok"])

	received := res.Payload["received"].(map[string]any)
	assert.Equal(t, "POST", received["method"])
	assert.Equal(t, "/orders/a%20b", received["path"])
	assert.Equal(t, map[string]any{"page": "2", "tag": []string{"x", "y"}}, received["query"])
	assert.Equal(t, map[string]any{"qty": float64(3)}, received["body"])

	headers := received["headers"].(map[string]string)
	assert.Equal(t, "application/json", headers["content-type"])
	assert.Equal(t, "a, b", headers["accept"])
	assert.NotContains(t, headers, "x-api-key")
	assert.NotContains(t, headers, "x-api-trace")

	params := received["params"]
	assert.Equal(t, "a b", params.(map[string]string)["id"])
}

func TestEchoBody(t *testing.T) {
	assert.Nil(t, echoBody(nil))
	assert.Nil(t, echoBody([]byte("  ")))
	assert.Equal(t, "plain text", echoBody([]byte("plain text")))
	assert.Equal(t, []any{float64(1), "two"}, echoBody([]byte(`[1, "two"]`)))
}

func TestDispatchConcurrentCallsCountExactly(t *testing.T) {
	f := newDispatchFixture(t)
	key := f.issueKey(t, 10)
	_, err := f.defs.Create(f.ctx, CreateDefinitionInput{Name: "Hot", Method: "GET", Path: "/hot"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.dispatcher.Dispatch(f.ctx, gatewayCall("GET", "/hot", key.RawKey))
		}()
	}
	wg.Wait()

	snap := f.dispatcher.Stats()
	assert.Equal(t, int64(50), snap.TotalCalls)
	assert.Equal(t, int64(10), snap.Success)
	assert.Equal(t, int64(40), snap.Fail)
	assert.Len(t, f.calls.List(auditlog.CallFilter{Limit: 1000}), 50)
}

func TestDispatchSeesWholeDefinitionsDuringMutation(t *testing.T) {
	f := newDispatchFixture(t)
	key := f.issueKey(t, 10000)
	def, err := f.defs.Create(f.ctx, CreateDefinitionInput{Name: "Alpha", Method: "GET", Path: "/things/:id"})
	require.NoError(t, err)

	// Both shapes match /things/1; each name only ever travels with its own
	// template and param name.
	shapes := []struct{ name, path string }{
		{"Alpha", "/things/:id"},
		{"Beta", "/things/:tid"},
	}
	pathFor := map[string]string{"Alpha": "/things/:id", "Beta": "/things/:tid"}
	paramFor := map[string]string{"Alpha": "id", "Beta": "tid"}

	const rounds = 200
	results := make(chan *DispatchResult, 8*rounds)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			s := shapes[i%2]
			_, err := f.defs.Update(f.ctx, def.ID, store.DefinitionUpdates{Name: &s.name, Path: &s.path})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			status := []string{"abnormal", "normal"}[i%2]
			_, err := f.defs.SetStatus(f.ctx, def.ID, status, "")
			assert.NoError(t, err)
		}
	}()
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				results <- f.dispatcher.Dispatch(f.ctx, gatewayCall("GET", "/things/1", key.RawKey))
			}
		}()
	}
	wg.Wait()
	close(results)

	for res := range results {
		require.Contains(t, []string{StageSuccess, StagePolicy}, res.Stage)
		require.NotNil(t, res.Entry.APIName)
		require.NotNil(t, res.Entry.Path)
		assert.Equal(t, pathFor[*res.Entry.APIName], *res.Entry.Path)

		if res.Stage != StageSuccess {
			assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode())
			continue
		}
		api := res.Payload["api"].(map[string]any)
		assert.Equal(t, *res.Entry.APIName, api["name"])
		assert.Equal(t, *res.Entry.Path, api["path"])
		params := res.Payload["received"].(map[string]any)["params"].(map[string]string)
		assert.Equal(t, map[string]string{paramFor[*res.Entry.APIName]: "1"}, params)
	}

	assert.Equal(t, int64(8*rounds), f.dispatcher.Stats().TotalCalls)
	logged := f.calls.List(auditlog.CallFilter{})
	require.NotEmpty(t, logged)
	for _, e := range logged {
		require.NotNil(t, e.APIName)
		require.NotNil(t, e.Path)
		assert.Equal(t, pathFor[*e.APIName], *e.Path)
		assert.Contains(t, []int{http.StatusOK, http.StatusServiceUnavailable}, e.StatusCode)
	}
}
