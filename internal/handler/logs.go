package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mock-api-gateway/internal/auditlog"
	"github.com/mock-api-gateway/internal/httputil"
	"github.com/mock-api-gateway/internal/service"
)

// --- Call Log ---

type CallLogHandler struct {
	dispatcher *service.Dispatcher
}

func NewCallLogHandler(d *service.Dispatcher) *CallLogHandler {
	return &CallLogHandler{dispatcher: d}
}

func (h *CallLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := auditlog.CallFilter{
		APIID: q.Get("apiId"),
		Limit: httputil.ParseLimit(q.Get("limit")),
	}

	if s := q.Get("success"); s != "" {
		success, err := strconv.ParseBool(s)
		if err != nil {
			RespondError(w, http.StatusBadRequest, service.CodeInvalidRequest, "success must be true or false")
			return
		}
		filter.Success = &success
	}

	if c := q.Get("code"); c != "" {
		code, err := strconv.Atoi(c)
		if err != nil {
			RespondError(w, http.StatusBadRequest, service.CodeInvalidRequest, "code must be an integer")
			return
		}
		filter.StatusCode = code
	}

	RespondJSON(w, http.StatusOK, h.dispatcher.Calls(filter))
}

// --- Change Log ---

type ChangeLogHandler struct {
	svc *service.DefinitionService
}

func NewChangeLogHandler(svc *service.DefinitionService) *ChangeLogHandler {
	return &ChangeLogHandler{svc: svc}
}

// ServeHTTP lists the change history of one definition. The history of a
// deleted definition stays readable, so unknown ids are not a 404.
func (h *ChangeLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := httputil.ParseLimit(r.URL.Query().Get("limit"))
	RespondJSON(w, http.StatusOK, h.svc.ChangeLog(chi.URLParam(r, "id"), limit))
}
