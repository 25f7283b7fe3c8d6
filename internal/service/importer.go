package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog/log"

	"github.com/mock-api-gateway/internal/model"
)

// ImportSkip names a (method, path) pair that already existed.
type ImportSkip struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// ImportResult is the outcome of an OpenAPI import.
type ImportResult struct {
	Created []model.APIDefinition `json:"created"`
	Skipped []ImportSkip          `json:"skipped"`
}

// Import registers one definition per (verb, path) operation in an OpenAPI
// document (JSON or YAML). Only get, post, put and delete are imported.
// Pairs already present in the registry are reported as skipped.
func (s *DefinitionService) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, NewBadRequest(CodeInvalidRequest, "OpenAPI document is required")
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, NewBadRequest(CodeInvalidRequest, fmt.Sprintf("invalid OpenAPI document: %v", err))
	}
	if doc.Paths == nil {
		return nil, NewBadRequest(CodeInvalidRequest, "OpenAPI document has no paths")
	}

	pathItems := doc.Paths.Map()
	paths := make([]string, 0, len(pathItems))
	for p := range pathItems {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	result := &ImportResult{Created: []model.APIDefinition{}, Skipped: []ImportSkip{}}
	for _, p := range paths {
		item := pathItems[p]
		if item == nil {
			continue
		}
		for _, op := range importableOperations(item) {
			def := &model.APIDefinition{
				Name:   operationName(op.op, op.method, p),
				Method: op.method,
				Path:   convertOpenAPIPath(p),
			}
			created, err := s.createIfAbsent(ctx, def)
			if err != nil {
				return nil, err
			}
			if !created {
				result.Skipped = append(result.Skipped, ImportSkip{Method: def.Method, Path: def.Path})
				continue
			}
			result.Created = append(result.Created, *def)
		}
	}

	log.Info().Int("created", len(result.Created)).Int("skipped", len(result.Skipped)).Msg("OpenAPI document imported")
	return result, nil
}

type methodOperation struct {
	method string
	op     *openapi3.Operation
}

func importableOperations(item *openapi3.PathItem) []methodOperation {
	var ops []methodOperation
	for _, mo := range []methodOperation{
		{model.MethodGet, item.Get},
		{model.MethodPost, item.Post},
		{model.MethodPut, item.Put},
		{model.MethodDelete, item.Delete},
	} {
		if mo.op != nil {
			ops = append(ops, mo)
		}
	}
	return ops
}

// operationName prefers summary, then operationId, then "METHOD path".
func operationName(op *openapi3.Operation, method, path string) string {
	if s := strings.TrimSpace(op.Summary); s != "" {
		return s
	}
	if id := strings.TrimSpace(op.OperationID); id != "" {
		return id
	}
	return method + " " + path
}

// convertOpenAPIPath converts OpenAPI path params {param} to :param.
// An unterminated brace and everything after it is kept verbatim.
func convertOpenAPIPath(path string) string {
	var b strings.Builder
	rest := path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			break
		}
		end += start
		b.WriteString(rest[:start])
		b.WriteByte(':')
		b.WriteString(rest[start+1 : end])
		rest = rest[end+1:]
	}
	b.WriteString(rest)
	return b.String()
}
