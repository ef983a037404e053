package models

import "github.com/moamenhredeen/oasgen"

// ResponseMeta describes one declared response of an operation.
type ResponseMeta struct {
	Status      int
	ContentType string
}

// Record is one extracted operation plus the schema-derived metadata the
// code generator needs beyond the runtime operation record.
type Record struct {
	Op oasgen.Operation

	// ParamTypes maps a path parameter name to its Go type (string, int64,
	// float64 or bool), derived from the parameter schema.
	ParamTypes map[string]string

	// Responses lists the declared responses in description order.
	Responses []ResponseMeta
}
