package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mock-api-gateway/internal/httputil"
	"github.com/mock-api-gateway/internal/service"
)

// GatewayPrefix is stripped from the request path before matching.
const GatewayPrefix = "/gateway"

// GatewayHandler is the catch-all entry point of the dispatcher.
type GatewayHandler struct {
	dispatcher   *service.Dispatcher
	maxBodyBytes int64
}

func NewGatewayHandler(d *service.Dispatcher, maxBodyBytes int64) *GatewayHandler {
	return &GatewayHandler{dispatcher: d, maxBodyBytes: maxBodyBytes}
}

func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, ok := ReadBody(w, r, h.maxBodyBytes, "Request body")
	if !ok {
		return
	}

	res := h.dispatcher.Dispatch(r.Context(), service.DispatchRequest{
		Method:   r.Method,
		Path:     strings.TrimPrefix(r.URL.EscapedPath(), GatewayPrefix),
		Query:    r.URL.Query(),
		Header:   r.Header,
		Body:     body,
		ClientIP: httputil.ClientIP(r),
	})

	if d := res.RateLimit; d != nil {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}

	if res.Err != nil {
		service.RespondError(w, res.Err)
		return
	}
	RespondJSON(w, res.StatusCode(), res.Payload)
}
