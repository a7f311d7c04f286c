// HTTP access for the network fallback.
//
// The fetcher only issues GETs. Each call gets its own timeout derived from
// the caller's context, so an outer cancellation and the fixed per-request
// budget stay independent. Compressed responses are decoded here because
// the request advertises encodings the standard transport does not handle.
package hashlink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultTimeout bounds each network fallback request.
const DefaultTimeout = 10 * time.Second

// Response is the part of an HTTP response the fallback needs.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher issues a GET for url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetchConfig configures HTTPFetcher.
type FetchConfig struct {
	Timeout   time.Duration // Per-request timeout (default 10s)
	MaxBytes  int64         // Max decoded body size (default 10MB)
	UserAgent string
	Client    *http.Client // Default: a client with no overall timeout
}

func (c *FetchConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "hashlink/1.0"
	}
	if c.Client == nil {
		c.Client = &http.Client{}
	}
}

// HTTPFetcher is the net/http implementation of Fetcher.
type HTTPFetcher struct {
	config FetchConfig
}

// NewFetcher creates an HTTPFetcher.
func NewFetcher(cfg FetchConfig) *HTTPFetcher {
	cfg.defaults()
	return &HTTPFetcher{config: cfg}
}

// Fetch retrieves url. Transport failures, including the timeout, are
// returned as errors; any status code is returned as a Response.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, zstd")

	resp, err := f.config.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, f.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.config.MaxBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", f.config.MaxBytes)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// decodeBody wraps the response body according to its Content-Encoding.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		return zr, nil
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd body: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
}
