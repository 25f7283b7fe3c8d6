package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mock-api-gateway/internal/handler"
	"github.com/mock-api-gateway/internal/service"
	"github.com/mock-api-gateway/internal/store"
)

const maxBodyBytes = 1 << 20

// --- List APIs ---

type ListAPIsHandler struct {
	svc *service.DefinitionService
}

func NewListAPIsHandler(svc *service.DefinitionService) *ListAPIsHandler {
	return &ListAPIsHandler{svc: svc}
}

func (h *ListAPIsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		query = r.URL.Query().Get("q")
	}

	defs, err := h.svc.List(r.Context(), query)
	if err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, defs)
}

// --- Get API ---

type GetAPIHandler struct {
	svc *service.DefinitionService
}

func NewGetAPIHandler(svc *service.DefinitionService) *GetAPIHandler {
	return &GetAPIHandler{svc: svc}
}

func (h *GetAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	def, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, def)
}

// --- Create API ---

type CreateAPIHandler struct {
	svc *service.DefinitionService
}

func NewCreateAPIHandler(svc *service.DefinitionService) *CreateAPIHandler {
	return &CreateAPIHandler{svc: svc}
}

type createAPIRequest struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Status string `json:"status"`
}

func (h *CreateAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createAPIRequest
	if !handler.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	def, err := h.svc.Create(r.Context(), service.CreateDefinitionInput{
		Name:   req.Name,
		Method: req.Method,
		Path:   req.Path,
		Status: req.Status,
	})
	if err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, def)
}

// --- Update API ---

type UpdateAPIHandler struct {
	svc *service.DefinitionService
}

func NewUpdateAPIHandler(svc *service.DefinitionService) *UpdateAPIHandler {
	return &UpdateAPIHandler{svc: svc}
}

func (h *UpdateAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var updates store.DefinitionUpdates
	if !handler.DecodeJSON(w, r, maxBodyBytes, &updates) {
		return
	}

	def, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), updates)
	if err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, def)
}

// --- Set API Status ---

type SetAPIStatusHandler struct {
	svc *service.DefinitionService
}

func NewSetAPIStatusHandler(svc *service.DefinitionService) *SetAPIStatusHandler {
	return &SetAPIStatusHandler{svc: svc}
}

type setStatusRequest struct {
	Status string `json:"status"`
	Remark string `json:"remark"`
}

func (h *SetAPIStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if !handler.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	def, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Remark)
	if err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, def)
}

// --- Delete API ---

type DeleteAPIHandler struct {
	svc *service.DefinitionService
}

func NewDeleteAPIHandler(svc *service.DefinitionService) *DeleteAPIHandler {
	return &DeleteAPIHandler{svc: svc}
}

func (h *DeleteAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"deleted": true,
	})
}
