package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodySize caps how much of an asset is cached.
const maxBodySize = 10 << 20

// Fetcher retrieves a fresh copy of an asset. An error means the network
// could not be reached; an HTTP error status is a successful fetch.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*Entry, error)
}

// HandlerFetcher fetches by running an in-process handler, usually a file
// server over the static asset directory.
type HandlerFetcher struct {
	Handler http.Handler
}

func (f HandlerFetcher) Fetch(ctx context.Context, path string) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	rec := newRecorder()
	f.Handler.ServeHTTP(rec, req)
	return rec.entry(), nil
}

// OriginFetcher fetches from a remote origin over HTTP.
type OriginFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewOriginFetcher creates a fetcher for baseURL with a traced client.
func NewOriginFetcher(baseURL string) *OriginFetcher {
	return &OriginFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (f *OriginFetcher) Fetch(ctx context.Context, path string) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &Entry{
		Status: resp.StatusCode,
		Header: keptHeaders(resp.Header),
		Body:   body,
	}, nil
}

// recorder captures a handler's response.
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	if r.body.Len()+len(p) > maxBodySize {
		return 0, fmt.Errorf("asset larger than %d bytes", maxBodySize)
	}
	return r.body.Write(p)
}

func (r *recorder) entry() *Entry {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return &Entry{
		Status: status,
		Header: keptHeaders(r.header),
		Body:   r.body.Bytes(),
	}
}

// cachedHeaders are the response headers stored with an entry.
var cachedHeaders = []string{"Content-Type", "Cache-Control", "ETag", "Last-Modified"}

func keptHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(cachedHeaders))
	for _, name := range cachedHeaders {
		if v := h.Get(name); v != "" {
			out[name] = v
		}
	}
	return out
}
