package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mock-api-gateway/internal/handler"
	"github.com/mock-api-gateway/internal/model"
	"github.com/mock-api-gateway/internal/service"
	"github.com/mock-api-gateway/internal/store"
)

// --- List API Keys ---

type ListAPIKeysHandler struct {
	svc *service.APIKeyService
}

func NewListAPIKeysHandler(svc *service.APIKeyService) *ListAPIKeysHandler {
	return &ListAPIKeysHandler{svc: svc}
}

func (h *ListAPIKeysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context())
	if err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, keys)
}

// --- Get API Key ---

type GetAPIKeyHandler struct {
	svc *service.APIKeyService
}

func NewGetAPIKeyHandler(svc *service.APIKeyService) *GetAPIKeyHandler {
	return &GetAPIKeyHandler{svc: svc}
}

func (h *GetAPIKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		service.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, key)
}

// --- Create API Key ---

type CreateAPIKeyHandler struct {
	svc *service.APIKeyService
}

func NewCreateAPIKeyHandler(svc *service.APIKeyService) *CreateAPIKeyHandler {
	return &CreateAPIKeyHandler{svc: svc}
}

type createAPIKeyRequest struct {
	Name            string `json:"name"`
	RateLimitPerMin *int   `json:"rateLimitPerMin,omitempty"`
	Enabled         *bool  `json:"enabled,omitempty"`
}

// issuedKeyResponse is the only representation that carries the secret.
type issuedKeyResponse struct {
	model.AccessKey
	Secret string `json:"secret"`
}

func (h *CreateAPIKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if !handler.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	result, err := h.svc.Create(r.Context(), service.CreateAPIKeyInput{
		Name:            req.Name,
		RateLimitPerMin: req.RateLimitPerMin,
		Enabled:         req.Enabled,
	})
	if err != nil {
		service.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusCreated, issuedKeyResponse{AccessKey: *result.APIKey, Secret: result.RawKey})
}

// --- Update API Key ---

type UpdateAPIKeyHandler struct {
	svc *service.APIKeyService
}

func NewUpdateAPIKeyHandler(svc *service.APIKeyService) *UpdateAPIKeyHandler {
	return &UpdateAPIKeyHandler{svc: svc}
}

func (h *UpdateAPIKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var updates store.APIKeyUpdates
	if !handler.DecodeJSON(w, r, maxBodyBytes, &updates) {
		return
	}

	apiKey, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), updates)
	if err != nil {
		service.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, apiKey)
}

// --- Regenerate API Key ---

type RegenerateAPIKeyHandler struct {
	svc *service.APIKeyService
}

func NewRegenerateAPIKeyHandler(svc *service.APIKeyService) *RegenerateAPIKeyHandler {
	return &RegenerateAPIKeyHandler{svc: svc}
}

func (h *RegenerateAPIKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Regenerate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		service.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, issuedKeyResponse{AccessKey: *result.APIKey, Secret: result.RawKey})
}
