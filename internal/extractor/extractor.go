// Package extractor walks an OpenAPI description and produces the normalized,
// ordered operation table that drives code generation.
package extractor

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/moamenhredeen/oasgen"
	"github.com/moamenhredeen/oasgen/internal/models"
)

// ParseError indicates a malformed description: invalid JSON/YAML or a
// document the v3 model could not be built from. It is fatal to the
// generation attempt that encountered it and never touches the change cache.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse API description: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extractor extracts operation records from raw description bytes.
type Extractor struct {
	logger *slog.Logger
}

// New creates an extractor. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract parses the description and returns one record per operation, in
// description order: paths in insertion order, methods in the fixed order
// get, post, put, delete, patch. Operations without an operationId are
// skipped and logged, never emitted.
func (e *Extractor) Extract(specBytes []byte) ([]models.Record, error) {
	document, err := libopenapi.NewDocument(specBytes)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	model, errs := document.BuildV3Model()
	if errs != nil {
		return nil, &ParseError{Err: fmt.Errorf("failed to build v3 model: %v", errs)}
	}

	var records []models.Record
	paths := model.Model.Paths
	if paths == nil || paths.PathItems == nil {
		return records, nil
	}

	for pair := paths.PathItems.First(); pair != nil; pair = pair.Next() {
		pathTemplate := pair.Key()
		pathItem := pair.Value()
		if pathItem == nil {
			continue
		}

		for _, method := range oasgen.Methods {
			op := operationFor(pathItem, method)
			if op == nil {
				continue
			}

			if op.OperationId == "" {
				e.logger.Debug("skipping operation without operationId",
					"method", method, "path", pathTemplate)
				continue
			}

			record := models.Record{
				Op: oasgen.Operation{
					OperationID:    op.OperationId,
					Method:         method,
					PathTemplate:   pathTemplate,
					PathParams:     oasgen.ExtractParams(pathTemplate),
					HasRequestBody: op.RequestBody != nil,
					Summary:        op.Summary,
					Description:    op.Description,
				},
				ParamTypes: paramTypes(pathTemplate, pathItem, op),
				Responses:  responseMeta(op),
			}

			records = append(records, record)
		}
	}

	return records, nil
}

// operationFor returns the operation object attached to a path item for one
// of the supported methods.
func operationFor(item *v3.PathItem, method string) *v3.Operation {
	switch method {
	case oasgen.MethodGet:
		return item.Get
	case oasgen.MethodPost:
		return item.Post
	case oasgen.MethodPut:
		return item.Put
	case oasgen.MethodDelete:
		return item.Delete
	case oasgen.MethodPatch:
		return item.Patch
	}
	return nil
}

// paramTypes derives a Go type per path parameter from the parameter schemas.
// Operation-level parameters take precedence over path-item parameters; a
// parameter without a usable schema maps to string.
func paramTypes(pathTemplate string, item *v3.PathItem, op *v3.Operation) map[string]string {
	names := oasgen.ExtractParams(pathTemplate)
	if len(names) == 0 {
		return nil
	}

	types := make(map[string]string, len(names))
	for _, name := range names {
		types[name] = "string"

		param := findPathParam(op.Parameters, name)
		if param == nil {
			param = findPathParam(item.Parameters, name)
		}
		if param == nil || param.Schema == nil {
			continue
		}

		types[name] = goType(param.Schema.Schema())
	}

	return types
}

func findPathParam(params []*v3.Parameter, name string) *v3.Parameter {
	for _, param := range params {
		if param != nil && param.In == "path" && param.Name == name {
			return param
		}
	}
	return nil
}

func goType(schema *base.Schema) string {
	if schema == nil || len(schema.Type) == 0 {
		return "string"
	}

	switch schema.Type[0] {
	case "integer":
		return "int64"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	default:
		return "string"
	}
}

// responseMeta collects one entry per numeric status code, preferring a JSON
// content type when the response declares several.
func responseMeta(op *v3.Operation) []models.ResponseMeta {
	if op.Responses == nil || op.Responses.Codes == nil {
		return nil
	}

	var metas []models.ResponseMeta
	for pair := op.Responses.Codes.First(); pair != nil; pair = pair.Next() {
		status, err := strconv.Atoi(pair.Key())
		if err != nil {
			// "default" and range keys carry no single status code.
			continue
		}

		response := pair.Value()
		if response == nil {
			continue
		}

		metas = append(metas, models.ResponseMeta{
			Status:      status,
			ContentType: contentTypeFor(response),
		})
	}

	return metas
}

func contentTypeFor(response *v3.Response) string {
	if response.Content == nil || response.Content.Len() == 0 {
		return ""
	}

	first := ""
	for pair := response.Content.First(); pair != nil; pair = pair.Next() {
		if first == "" {
			first = pair.Key()
		}
		if strings.Contains(pair.Key(), "json") {
			return pair.Key()
		}
	}

	return first
}
