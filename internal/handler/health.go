package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mock-api-gateway/internal/store"
)

type HealthHandler struct {
	store     store.Store
	startTime time.Time
}

func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{
		store:     s,
		startTime: time.Now(),
	}
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Definitions   int    `json:"definitions"`
	Keys          int    `json:"keys"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	definitions, err := h.store.CountDefinitions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count definitions")
	}

	keys, err := h.store.CountAPIKeys(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count API keys")
	}

	RespondJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Definitions:   definitions,
		Keys:          keys,
	})
}
