package service

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/mock-api-gateway/internal/model"
	"github.com/mock-api-gateway/internal/routing"
)

// EchoOptions controls which inbound headers are reflected in the success
// payload. Headers starting with StripPrefix (case-insensitive) and the
// credential header are never echoed.
type EchoOptions struct {
	StripPrefix      string
	CredentialHeader string
}

func (o EchoOptions) payload(def *model.APIDefinition, params routing.Params, req DispatchRequest) map[string]any {
	if params == nil {
		params = routing.Params{}
	}
	return map[string]any{
		"ok": true,
		"api": map[string]any{
			"id":     def.ID,
			"name":   def.Name,
			"method": def.Method,
			"path":   def.Path,
		},
		"received": map[string]any{
			"method":  req.Method,
			"path":    req.Path,
			"query":   echoQuery(req.Query),
			"headers": o.echoHeaders(req.Header),
			"body":    echoBody(req.Body),
			"params":  map[string]string(params),
		},
	}
}

// echoHeaders lower-cases names and joins repeated values with ", ".
func (o EchoOptions) echoHeaders(h http.Header) map[string]string {
	prefix := strings.ToLower(o.StripPrefix)
	cred := strings.ToLower(o.CredentialHeader)

	out := make(map[string]string, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		if (prefix != "" && strings.HasPrefix(lower, prefix)) || (cred != "" && lower == cred) {
			continue
		}
		out[lower] = strings.Join(values, ", ")
	}
	return out
}

// echoQuery keeps single values as strings and repeated ones as lists.
func echoQuery(q url.Values) map[string]any {
	out := make(map[string]any, len(q))
	for k, v := range q {
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

// echoBody decodes a JSON body, falls back to the raw text, and is nil when
// the body is empty.
func echoBody(body []byte) any {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}
