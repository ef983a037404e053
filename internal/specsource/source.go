// Package specsource retrieves API description bytes and their content
// digest, from an HTTP endpoint or from local disk.
package specsource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Result is one retrieved description: the raw bytes and their hex-encoded
// sha-256 digest.
type Result struct {
	Bytes []byte
	Hash  string
}

// Source retrieves the current description.
type Source interface {
	Fetch(ctx context.Context) (*Result, error)
}

// FetchError indicates the description could not be retrieved: a network or
// HTTP failure, or the configured fetch timeout was exceeded. During a watch
// it is recovered fail-open; during one-shot generation it is fatal.
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch spec from %s: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HashBytes returns the hex-encoded sha-256 digest of content.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HTTPSource fetches the description from a URL. Every fetch is bounded by
// the configured timeout so a hung remote cannot stall a polling loop.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for url. A non-positive timeout falls back
// to 30 seconds.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the description body and hashes it.
func (s *HTTPSource) Fetch(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &FetchError{Location: s.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Location: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Location: s.url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Location: s.url, Err: err}
	}

	return &Result{Bytes: body, Hash: HashBytes(body)}, nil
}

// FileSource reads the description from local disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source for a local description file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads the file and hashes it.
func (s *FileSource) Fetch(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &FetchError{Location: s.path, Err: err}
	}

	return &Result{Bytes: content, Hash: HashBytes(content)}, nil
}
