package hashlink

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHeaderSize(t *testing.T) {
	if HeaderSize != 128 {
		t.Errorf("HeaderSize = %d, want 128", HeaderSize)
	}
}

func TestHeaderEncodeDecode(t *testing.T) {
	h := &Header{Version: LogVersion, Algorithm: AlgBlake2b, Timestamp: 1706000000000}
	buf, err := h.encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buf) != HeaderSize {
		t.Errorf("encoded length = %d, want %d", len(buf), HeaderSize)
	}
	if buf[HeaderSize-1] != '\n' {
		t.Errorf("last byte = %q, want newline", buf[HeaderSize-1])
	}

	path := filepath.Join(t.TempDir(), "h.log")
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := header(f)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if *got != *h {
		t.Errorf("header = %+v, want %+v", *got, *h)
	}
}

func TestHeaderCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short file", []byte(`{"_v":1}`)},
		{"not json", append([]byte("garbage"), make([]byte, HeaderSize)...)},
		{"wrong version", padHeader(`{"_v":7,"_alg":1,"_ts":1}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "h.log")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			if _, err := header(f); !errors.Is(err, ErrCorruptHeader) {
				t.Errorf("err = %v, want ErrCorruptHeader", err)
			}
		})
	}
}

func padHeader(s string) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf, s)
	for i := len(s); i < HeaderSize-1; i++ {
		buf[i] = ' '
	}
	buf[HeaderSize-1] = '\n'
	return buf
}
