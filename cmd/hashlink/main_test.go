package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpl-au/hashlink"
)

// run executes the command tree with args and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEncodeDecode(t *testing.T) {
	link, _, err := run(t, "<h1>Notes</h1><p>body</p>", "encode", "--title", "My Notes")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	link = strings.TrimSpace(link)
	if !strings.HasPrefix(link, "https://itty.bitty.site/#My%20Notes/?") {
		t.Fatalf("link = %q", link)
	}

	out, errOut, err := run(t, "", "decode", "--offline", link)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.TrimSpace(out) != "<h1>Notes</h1><p>body</p>" {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(errOut, "version: standard") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestEncodeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.html")
	if err := os.WriteFile(path, []byte("<p>from file</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	link, _, err := run(t, "", "encode", "--file", path, "--host", "example.org", "--reroute")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "https://example.org/#Title%20Goes%20Here/?" + hashlink.RerouteMarker +
		hashlink.EncodeTransport([]byte("<p>from file</p>"))
	if strings.TrimSpace(link) != want {
		t.Errorf("link = %q, want %q", link, want)
	}
}

func TestEncodeInvalidPreset(t *testing.T) {
	if _, _, err := run(t, "x", "encode", "--preset", "12"); err == nil {
		t.Error("expected an error for preset 12")
	}
}

func TestDecodeFormats(t *testing.T) {
	link := hashlink.NewComposer(hashlink.ComposeConfig{}).
		ComposeReroute("t", "<h1>Title</h1><p>Some <b>bold</b> text.</p><script>alert(1)</script>")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"markdown", []string{"--format", "markdown", "--sanitize"}, "# Title\n\nSome **bold** text."},
		{"text", []string{"--format", "text"}, "Title\nSome bold text."},
		{"sanitized html", []string{"--sanitize"}, "<h1>Title</h1><p>Some <b>bold</b> text.</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"decode", "--offline"}, tt.args...)
			out, _, err := run(t, "", append(args, link)...)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, _, err := run(t, "", "decode", "--format", "pdf", "https://itty.bitty.site/#t/?x"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestDecodeFailure(t *testing.T) {
	_, _, err := run(t, "", "decode", "--offline", "https://itty.bitty.site/#t/?@@@")
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if !strings.Contains(err.Error(), "no network connectivity") {
		t.Errorf("err = %v", err)
	}
}

func TestDecodeNetworkTimeoutFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>hosted</p></body></html>"))
	}))
	defer srv.Close()

	out, errOut, err := run(t, "", "decode", "--timeout", "2s", srv.URL+"/#t/?@@@")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.TrimSpace(out) != "<p>hosted</p>" || !strings.Contains(errOut, "version: fallback") {
		t.Errorf("stdout = %q, stderr = %q", out, errOut)
	}
}

func TestDecodeLogAndListing(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "decode.log")
	link := hashlink.NewComposer(hashlink.ComposeConfig{}).ComposeReroute("t", "hello")

	for range 2 {
		if _, _, err := run(t, "", "decode", "--offline", "--log", logPath, link); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	out, _, err := run(t, "", "log", logPath)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if n := strings.Count(out, "strategy: reroute"); n != 2 {
		t.Errorf("listing has %d reroute entries, want 2:\n%s", n, out)
	}

	if _, _, err := run(t, "", "decode", "--offline", "--fresh-log", "--log", logPath, link); err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, _, _ = run(t, "", "log", logPath)
	if n := strings.Count(out, "strategy: reroute"); n != 1 {
		t.Errorf("after --fresh-log listing has %d entries, want 1", n)
	}

	out, _, _ = run(t, "", "log", "--failed", logPath)
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("--failed listing = %q, want empty", out)
	}
}

func TestEnvironmentAndConfig(t *testing.T) {
	link := hashlink.NewComposer(hashlink.ComposeConfig{}).ComposeReroute("t", "<p>env</p>")

	t.Setenv("HASHLINK_FORMAT", "text")
	out, _, err := run(t, "", "decode", "--offline", link)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "env" {
		t.Errorf("HASHLINK_FORMAT ignored: %q", out)
	}

	cfg := filepath.Join(t.TempDir(), "hashlink.yaml")
	if err := os.WriteFile(cfg, []byte("host: docs.example\ntitle: configured\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out, _, err = run(t, "x", "encode", "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "https://docs.example/#configured/?") {
		t.Errorf("config file ignored: %q", out)
	}
}

func TestRenderText(t *testing.T) {
	got, err := toText("<ul><li>one</li><li>two  \n three</li></ul><style>p{}</style>")
	if err != nil {
		t.Fatal(err)
	}
	if got != "one\ntwo three" {
		t.Errorf("toText = %q", got)
	}
}
