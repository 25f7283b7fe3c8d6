// Package routing resolves gateway calls to registered API definitions.
//
// Templates are data, not code-time routes: a template segment starting with
// ':' binds exactly one non-empty path segment, every other segment must
// match literally, and the segment counts must be equal. There are no
// wildcard or catch-all segments.
package routing

import (
	"net/url"
	"strings"

	"github.com/mock-api-gateway/internal/model"
)

// Params holds the values bound to :name template segments.
type Params map[string]string

// Resolve returns the first definition in defs whose method and template
// match. Order is significant: earlier definitions shadow later ones with an
// equivalent template.
func Resolve(defs []model.APIDefinition, method, path string) (*model.APIDefinition, Params, bool) {
	method = strings.ToUpper(method)
	segments := splitPath(path)

	for i := range defs {
		if defs[i].Method != method {
			continue
		}
		if params, ok := matchSegments(splitPath(defs[i].Path), segments); ok {
			def := defs[i]
			return &def, params, true
		}
	}
	return nil, nil, false
}

// match reports whether path matches template and returns the bound params.
func match(template, path string) (Params, bool) {
	return matchSegments(splitPath(template), splitPath(path))
}

func matchSegments(template, path []string) (Params, bool) {
	if len(template) != len(path) {
		return nil, false
	}

	params := Params{}
	for i, part := range template {
		value := unescape(path[i])
		if name, ok := strings.CutPrefix(part, ":"); ok && name != "" {
			if value == "" {
				return nil, false
			}
			params[name] = value
			continue
		}
		if unescape(part) != value {
			return nil, false
		}
	}
	return params, true
}

// splitPath splits on '/' ignoring one leading and one trailing slash, so
// "/a/b/" and "a/b" both yield [a b] and "/" yields no segments.
func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func unescape(segment string) string {
	if v, err := url.PathUnescape(segment); err == nil {
		return v
	}
	return segment
}
