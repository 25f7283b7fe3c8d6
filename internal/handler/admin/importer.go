package admin

import (
	"net/http"

	"github.com/mock-api-gateway/internal/handler"
	"github.com/mock-api-gateway/internal/service"
)

const maxImportBytes = 5 << 20

// ImportOpenAPIHandler bulk-creates definitions from an OpenAPI document
// sent as the raw request body, JSON or YAML.
type ImportOpenAPIHandler struct {
	svc *service.DefinitionService
}

func NewImportOpenAPIHandler(svc *service.DefinitionService) *ImportOpenAPIHandler {
	return &ImportOpenAPIHandler{svc: svc}
}

func (h *ImportOpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, ok := handler.ReadBody(w, r, maxImportBytes, "OpenAPI document")
	if !ok {
		return
	}

	result, err := h.svc.Import(r.Context(), data)
	if err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result)
}
