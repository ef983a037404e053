package oasgen

// Supported HTTP methods, in the order operations are extracted from a
// description. Method names are kept lowercase to match the source format.
const (
	MethodGet    = "get"
	MethodPost   = "post"
	MethodPut    = "put"
	MethodDelete = "delete"
	MethodPatch  = "patch"
)

// Methods lists the supported HTTP methods in extraction order.
var Methods = []string{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// BodyMethod reports whether a method may carry a request body.
func BodyMethod(method string) bool {
	switch method {
	case MethodPost, MethodPut, MethodPatch:
		return true
	}
	return false
}

// Operation is one method/path pair from an API description, keyed by its
// operation id. Generated artifacts embed a table of these records; the
// runtime Client dispatches calls against them.
type Operation struct {
	// OperationID is the intended-unique key across the whole description.
	OperationID string

	// Method is one of get, post, put, delete, patch.
	Method string

	// PathTemplate is the URL path, possibly containing {name} placeholders.
	PathTemplate string

	// PathParams holds the distinct placeholder names of PathTemplate in
	// first-occurrence order.
	PathParams []string

	// HasRequestBody is true when the source operation declares a request
	// body.
	HasRequestBody bool

	// Summary and Description carry the source documentation strings and
	// may be empty.
	Summary     string
	Description string
}

// ResponseKey identifies one declared response of an operation: the method
// and path template of the operation plus a status code. Generated artifacts
// use it to expose response metadata per method/path/status triple.
type ResponseKey struct {
	Method string
	Path   string
	Status int
}
