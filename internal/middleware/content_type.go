package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/mock-api-gateway/internal/httputil"
)

// OpenAPIMediaTypes are accepted by the document import route.
var OpenAPIMediaTypes = []string{"application/json", "application/yaml", "application/x-yaml", "text/yaml", "text/plain"}

// RequireJSON rejects POST/PUT/PATCH requests whose Content-Type is set and is
// not JSON.
func RequireJSON(next http.Handler) http.Handler {
	return RequireContentType("application/json")(next)
}

// RequireContentType rejects body-carrying requests whose Content-Type is set
// and not one of allowed. A missing Content-Type passes through.
func RequireContentType(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r.Method) || mediaTypeAllowed(r.Header.Get("Content-Type"), allowed) {
				next.ServeHTTP(w, r)
				return
			}
			httputil.RespondError(w, http.StatusUnsupportedMediaType, "unsupported_media_type",
				"Content-Type must be one of "+strings.Join(allowed, ", "))
		})
	}
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func mediaTypeAllowed(ct string, allowed []string) bool {
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(mt, a) {
			return true
		}
	}
	return false
}
