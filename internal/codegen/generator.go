// Package codegen emits the generated client surface: one fixed-arity
// binding per extracted operation, an operation lookup table and response
// type metadata, all bound to the same operation records the runtime
// dispatcher executes against.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"time"

	"github.com/moamenhredeen/oasgen/internal/models"
)

// DuplicateOperationIDError indicates two operations sharing an operationId.
// Silently letting the later one shadow the earlier would swap call targets,
// so generation fails instead.
type DuplicateOperationIDError struct {
	OperationID string
}

func (e *DuplicateOperationIDError) Error() string {
	return fmt.Sprintf("duplicate operationId %q in description", e.OperationID)
}

// Generator renders the client surface for an ordered operation table.
type Generator struct {
	pkg string
	now func() time.Time
}

// New creates a generator emitting into the named Go package.
func New(pkg string) *Generator {
	return &Generator{pkg: pkg, now: time.Now}
}

// Generate renders the artifact. Output is deterministic for identical
// input except for the generation timestamp in the header comment.
func (g *Generator) Generate(records []models.Record) ([]byte, error) {
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if seen[record.Op.OperationID] {
			return nil, &DuplicateOperationIDError{OperationID: record.Op.OperationID}
		}
		seen[record.Op.OperationID] = true
	}

	var buf bytes.Buffer
	g.writeHeader(&buf, len(records) > 0)
	g.writeOperationTable(&buf, records)
	g.writeLookup(&buf)
	g.writeResponseTypes(&buf, records)
	g.writeClient(&buf)
	for i, record := range records {
		g.writeBinding(&buf, i, record)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated source: %w", err)
	}

	return formatted, nil
}

func (g *Generator) writeHeader(buf *bytes.Buffer, hasBindings bool) {
	fmt.Fprintf(buf, "// Code generated by oasgen. DO NOT EDIT.\n")
	fmt.Fprintf(buf, "// Generated at %s\n\n", g.now().UTC().Format(time.RFC3339))
	fmt.Fprintf(buf, "package %s\n\n", g.pkg)
	fmt.Fprintf(buf, "import (\n")
	if hasBindings {
		// context is only referenced by per-operation bindings.
		fmt.Fprintf(buf, "\t\"context\"\n\n")
	}
	fmt.Fprintf(buf, "\t\"github.com/moamenhredeen/oasgen\"\n")
	fmt.Fprintf(buf, ")\n\n")
}

func (g *Generator) writeOperationTable(buf *bytes.Buffer, records []models.Record) {
	fmt.Fprintf(buf, "// Operations holds every operation from the source description, in\n")
	fmt.Fprintf(buf, "// description order.\n")
	if len(records) == 0 {
		fmt.Fprintf(buf, "var Operations = []oasgen.Operation{}\n\n")
		return
	}
	fmt.Fprintf(buf, "var Operations = []oasgen.Operation{\n")
	for _, record := range records {
		op := record.Op
		fmt.Fprintf(buf, "\t{\n")
		fmt.Fprintf(buf, "\t\tOperationID: %q,\n", op.OperationID)
		fmt.Fprintf(buf, "\t\tMethod: %q,\n", op.Method)
		fmt.Fprintf(buf, "\t\tPathTemplate: %q,\n", op.PathTemplate)
		if len(op.PathParams) > 0 {
			fmt.Fprintf(buf, "\t\tPathParams: []string{")
			for i, name := range op.PathParams {
				if i > 0 {
					fmt.Fprintf(buf, ", ")
				}
				fmt.Fprintf(buf, "%q", name)
			}
			fmt.Fprintf(buf, "},\n")
		}
		if op.HasRequestBody {
			fmt.Fprintf(buf, "\t\tHasRequestBody: true,\n")
		}
		if op.Summary != "" {
			fmt.Fprintf(buf, "\t\tSummary: %q,\n", op.Summary)
		}
		if op.Description != "" {
			fmt.Fprintf(buf, "\t\tDescription: %q,\n", op.Description)
		}
		fmt.Fprintf(buf, "\t},\n")
	}
	fmt.Fprintf(buf, "}\n\n")
}

func (g *Generator) writeLookup(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "// LookupOperation returns the operation registered for a method and path\n")
	fmt.Fprintf(buf, "// template pair.\n")
	fmt.Fprintf(buf, "func LookupOperation(method, path string) (oasgen.Operation, bool) {\n")
	fmt.Fprintf(buf, "\tfor _, op := range Operations {\n")
	fmt.Fprintf(buf, "\t\tif op.Method == method && op.PathTemplate == path {\n")
	fmt.Fprintf(buf, "\t\t\treturn op, true\n")
	fmt.Fprintf(buf, "\t\t}\n")
	fmt.Fprintf(buf, "\t}\n")
	fmt.Fprintf(buf, "\treturn oasgen.Operation{}, false\n")
	fmt.Fprintf(buf, "}\n\n")
}

func (g *Generator) writeResponseTypes(buf *bytes.Buffer, records []models.Record) {
	total := 0
	for _, record := range records {
		total += len(record.Responses)
	}

	fmt.Fprintf(buf, "// ResponseTypes maps method, path template and status code to the declared\n")
	fmt.Fprintf(buf, "// response content type.\n")
	if total == 0 {
		fmt.Fprintf(buf, "var ResponseTypes = map[oasgen.ResponseKey]string{}\n\n")
		return
	}
	fmt.Fprintf(buf, "var ResponseTypes = map[oasgen.ResponseKey]string{\n")
	for _, record := range records {
		for _, meta := range record.Responses {
			fmt.Fprintf(buf, "\t{Method: %q, Path: %q, Status: %d}: %q,\n",
				record.Op.Method, record.Op.PathTemplate, meta.Status, meta.ContentType)
		}
	}
	fmt.Fprintf(buf, "}\n\n")
}

func (g *Generator) writeClient(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "// Client exposes one binding per operation.\n")
	fmt.Fprintf(buf, "type Client struct {\n")
	fmt.Fprintf(buf, "\trt *oasgen.Client\n")
	fmt.Fprintf(buf, "}\n\n")
	fmt.Fprintf(buf, "// NewClient wraps a runtime dispatcher.\n")
	fmt.Fprintf(buf, "func NewClient(rt *oasgen.Client) *Client {\n")
	fmt.Fprintf(buf, "\treturn &Client{rt: rt}\n")
	fmt.Fprintf(buf, "}\n\n")
}

func (g *Generator) writeBinding(buf *bytes.Buffer, index int, record models.Record) {
	op := record.Op
	name := exportedName(op.OperationID)

	if len(op.PathParams) > 0 {
		fmt.Fprintf(buf, "// %sParams holds the path parameters of %s.\n", name, name)
		fmt.Fprintf(buf, "type %sParams struct {\n", name)
		for _, param := range op.PathParams {
			goType := record.ParamTypes[param]
			if goType == "" {
				goType = "string"
			}
			fmt.Fprintf(buf, "\t%s %s\n", exportedName(param), goType)
		}
		fmt.Fprintf(buf, "}\n\n")
	}

	fmt.Fprintf(buf, "// %s calls %s %s.\n", name, op.Method, op.PathTemplate)
	if op.Summary != "" {
		fmt.Fprintf(buf, "//\n// %s\n", op.Summary)
	}

	fmt.Fprintf(buf, "func (c *Client) %s(ctx context.Context", name)
	if len(op.PathParams) > 0 {
		fmt.Fprintf(buf, ", params %sParams", name)
	}
	if op.HasRequestBody {
		fmt.Fprintf(buf, ", body any")
	}
	fmt.Fprintf(buf, ", opts ...oasgen.CallOption) (*oasgen.Response, error) {\n")

	pathArg := "nil"
	if len(op.PathParams) > 0 {
		fmt.Fprintf(buf, "\tpathParams := map[string]any{\n")
		for _, param := range op.PathParams {
			fmt.Fprintf(buf, "\t\t%q: params.%s,\n", param, exportedName(param))
		}
		fmt.Fprintf(buf, "\t}\n")
		pathArg = "pathParams"
	}

	bodyArg := "nil"
	if op.HasRequestBody {
		bodyArg = "body"
	}

	fmt.Fprintf(buf, "\treturn c.rt.Do(ctx, Operations[%d], %s, %s, opts...)\n", index, pathArg, bodyArg)
	fmt.Fprintf(buf, "}\n\n")
}
