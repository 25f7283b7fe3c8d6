package handler

import (
	"errors"
	"net/http"

	"github.com/mock-api-gateway/internal/httputil"
	"github.com/mock-api-gateway/internal/service"
)

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	httputil.RespondJSON(w, status, data)
}

// RespondError writes a JSON error response.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	httputil.RespondError(w, status, code, message)
}

// ReadBody reads a size-limited body. On failure it has already written a
// 413 or 400 response and returns false.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64, what string) ([]byte, bool) {
	data, err := httputil.ReadBody(w, r, limit)
	if err != nil {
		respondBodyError(w, err, what)
		return nil, false
	}
	return data, true
}

// DecodeJSON decodes a size-limited JSON body into dst. On failure it has
// already written a 413 or 400 response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	if err := httputil.DecodeJSON(w, r, limit, dst); err != nil {
		respondBodyError(w, err, "Request body")
		return false
	}
	return true
}

func respondBodyError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		RespondError(w, http.StatusRequestEntityTooLarge, service.CodePayloadTooLarge, what+" too large")
		return
	}
	RespondError(w, http.StatusBadRequest, service.CodeInvalidRequest, "Invalid request body")
}
