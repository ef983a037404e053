package oasgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// Response is the transport's answer to a dispatched call, returned
// unchanged: status, headers and body exactly as the transport produced
// them.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client dispatches operation calls through an injected HTTP transport.
// Individual calls are independent and safe for concurrent use; the client
// holds no mutable state beyond the transport and its options.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	limiter    *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient injects the HTTP transport used for every call. Retries,
// proxies and interceptors are the transport's concern.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithDefaultHeader sets a header applied to every dispatched request.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithRateLimit caps dispatched calls at the given requests per second.
// Zero or negative disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
		}
	}
}

// NewClient creates a dispatching client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// callOptions collects the transport-level overrides of a single call.
type callOptions struct {
	headers     http.Header
	query       url.Values
	contentType string
}

// CallOption is the trailing, always-optional argument of every generated
// binding, carrying transport-level overrides for one call.
type CallOption func(*callOptions)

// WithHeader adds a header to a single call.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		o.headers.Add(key, value)
	}
}

// WithQuery adds a query parameter to a single call.
func WithQuery(key, value string) CallOption {
	return func(o *callOptions) {
		o.query.Add(key, value)
	}
}

// WithContentType overrides the request body content type for a single call.
func WithContentType(ct string) CallOption {
	return func(o *callOptions) {
		o.contentType = ct
	}
}

// Do executes one operation call with an explicit argument shape: path
// parameter values keyed by the template's literal placeholder names, an
// optional body (nil when the operation declares none) and trailing call
// options. Generated bindings call Do directly, so the argument shape is
// fixed at generation time.
func (c *Client) Do(ctx context.Context, op Operation, pathParams map[string]any, body any, opts ...CallOption) (*Response, error) {
	options := &callOptions{
		headers: make(http.Header),
		query:   make(url.Values),
	}
	for _, opt := range opts {
		opt(options)
	}

	path, err := InterpolatePath(op.PathTemplate, pathParams)
	if err != nil {
		return nil, err
	}

	fullURL := c.baseURL + path
	if len(options.query) > 0 {
		fullURL += "?" + options.query.Encode()
	}

	var reqBody io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		reqBody = bytes.NewReader(encoded)
		contentType = "application/json"
		if options.contentType != "" {
			contentType = options.contentType
		}
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(op.Method), fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
	for key, values := range options.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// Call executes one operation call from positional arguments. It is the
// single shared dynamic dispatch routine: the argument shape is decided from
// the flags stored on the operation record, never re-derived per HTTP verb.
// When the record declares path parameters the first argument is the
// path-parameters map; when it declares a request body the next argument is
// the body; an optional trailing argument carries call options (a CallOption
// or a []CallOption).
func (c *Client) Call(ctx context.Context, op Operation, args ...any) (*Response, error) {
	var pathParams map[string]any
	var body any

	if len(op.PathParams) > 0 {
		if len(args) == 0 {
			return nil, &MissingPathParamsError{Template: op.PathTemplate, Names: op.PathParams}
		}

		params, ok := args[0].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("operation %s: first argument must be a map[string]any of path parameters, got %T",
				op.OperationID, args[0])
		}

		pathParams = params
		args = args[1:]
	}

	if op.HasRequestBody && len(args) > 0 {
		// The body argument comes immediately before any trailing options.
		if _, isOpt := args[0].(CallOption); !isOpt {
			if _, isOpts := args[0].([]CallOption); !isOpts {
				body = args[0]
				args = args[1:]
			}
		}
	}

	var opts []CallOption
	for _, arg := range args {
		switch v := arg.(type) {
		case CallOption:
			opts = append(opts, v)
		case []CallOption:
			opts = append(opts, v...)
		default:
			return nil, fmt.Errorf("operation %s: unexpected trailing argument of type %T", op.OperationID, arg)
		}
	}

	return c.Do(ctx, op, pathParams, body, opts...)
}
