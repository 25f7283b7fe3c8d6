package handler

import (
	"net/http"

	"github.com/mock-api-gateway/internal/service"
)

// StatusDefsHandler serves the configured status definitions.
type StatusDefsHandler struct {
	svc *service.DefinitionService
}

func NewStatusDefsHandler(svc *service.DefinitionService) *StatusDefsHandler {
	return &StatusDefsHandler{svc: svc}
}

func (h *StatusDefsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.svc.Statuses())
}
