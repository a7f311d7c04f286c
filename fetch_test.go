package hashlink

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const servedPage = "<html><body><p>served</p></body></html>"

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	w.Write([]byte(s))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zstded(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestFetchEncodings(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		body     func(*testing.T) []byte
	}{
		{"identity", "", func(*testing.T) []byte { return []byte(servedPage) }},
		{"gzip", "gzip", func(t *testing.T) []byte { return gzipped(t, servedPage) }},
		{"zstd", "zstd", func(t *testing.T) []byte { return zstded(t, servedPage) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body(t)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.Contains(r.Header.Get("Accept-Encoding"), "zstd") {
					t.Errorf("Accept-Encoding = %q", r.Header.Get("Accept-Encoding"))
				}
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				w.Write(body)
			}))
			defer srv.Close()

			resp, err := NewFetcher(FetchConfig{}).Fetch(context.Background(), srv.URL)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if resp.StatusCode != 200 || string(resp.Body) != servedPage {
				t.Errorf("got %d %q", resp.StatusCode, resp.Body)
			}
		})
	}
}

func TestFetchReturnsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	resp, err := NewFetcher(FetchConfig{}).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.StatusCode != http.StatusGone {
		t.Errorf("StatusCode = %d, want 410", resp.StatusCode)
	}
}

func TestFetchUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.UserAgent()
	}))
	defer srv.Close()

	NewFetcher(FetchConfig{UserAgent: "probe/2"}).Fetch(context.Background(), srv.URL)
	if got != "probe/2" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestFetchMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer srv.Close()

	if _, err := NewFetcher(FetchConfig{MaxBytes: 1024}).Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for an oversized body")
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewFetcher(FetchConfig{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !isTransportError(err) {
		t.Errorf("timeout not classified as a transport error: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %v", time.Since(start))
	}
}

func TestFetchUnsupportedEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	if _, err := NewFetcher(FetchConfig{}).Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for an unsupported encoding")
	}
}
