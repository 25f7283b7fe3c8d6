package service

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mock-api-gateway/internal/httputil"
)

var kindStatus = map[ErrorKind]int{
	ErrBadRequest:      http.StatusBadRequest,
	ErrUnauthorized:    http.StatusUnauthorized,
	ErrNotFound:        http.StatusNotFound,
	ErrTooManyRequests: http.StatusTooManyRequests,
	ErrInternal:        http.StatusInternalServerError,
	ErrUnavailable:     http.StatusServiceUnavailable,
}

// HTTPStatus is the response status for k; unknown kinds map to 500.
func (k ErrorKind) HTTPStatus() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondError writes the ErrorBody for err. Anything that is not a *Error is
// logged and reported as a generic 500 so internals never reach the caller.
func RespondError(w http.ResponseWriter, err error) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		httputil.RespondError(w, svcErr.Kind.HTTPStatus(), svcErr.Code, svcErr.Message)
		return
	}
	log.Error().Err(err).Msg("unhandled service error")
	httputil.RespondError(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
}
