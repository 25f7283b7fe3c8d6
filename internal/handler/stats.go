package handler

import (
	"net/http"

	"github.com/mock-api-gateway/internal/service"
)

type StatsHandler struct {
	dispatcher *service.Dispatcher
}

func NewStatsHandler(d *service.Dispatcher) *StatsHandler {
	return &StatsHandler{dispatcher: d}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.dispatcher.Stats())
}
