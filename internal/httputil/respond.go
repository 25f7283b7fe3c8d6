package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorBody is the JSON shape of every non-2xx response from the gateway and
// the admin surface.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrBodyTooLarge is returned by ReadBody and DecodeJSON when the request
// body exceeds the caller's limit.
var ErrBodyTooLarge = errors.New("request body too large")

// RespondJSON writes data as JSON with the given status code. Encoding
// failures happen after the header is sent, so they are only logged.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// RespondError writes an ErrorBody.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorBody{Error: code, Message: message})
}

// ReadBody reads at most limit bytes of the request body.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	return data, nil
}

// DecodeJSON decodes a size-limited JSON request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	data, err := ReadBody(w, r, limit)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
