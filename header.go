// Header line for the diagnostic log file.
//
// The header is exactly 128 bytes of JSON padded with spaces and terminated
// with a newline. It records the log format version, the fingerprint
// algorithm, and the start-up stamp of the process that created the file.
package hashlink

import (
	"bytes"
	"os"

	json "github.com/goccy/go-json"
)

// HeaderSize is the fixed size of the header in bytes.
const HeaderSize = 128

// LogVersion is the current log format version.
const LogVersion = 1

// Header contains log metadata stored at the start of the file.
type Header struct {
	Version   int   `json:"_v"`   // Log format version
	Algorithm int   `json:"_alg"` // Fingerprint algorithm (1=xxHash3, 2=FNV1a, 3=Blake2b)
	Timestamp int64 `json:"_ts"`  // Unix milliseconds at start-up
}

// header reads and parses the header from a file.
func header(f *os.File) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, ErrCorruptHeader
	}

	var hdr Header
	if err := json.Unmarshal(bytes.TrimSpace(buf), &hdr); err != nil {
		return nil, ErrCorruptHeader
	}
	if hdr.Version != LogVersion {
		return nil, ErrCorruptHeader
	}
	return &hdr, nil
}

// encode serialises the header to exactly HeaderSize bytes with padding.
func (h *Header) encode() ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	if len(data) > HeaderSize-1 {
		return nil, ErrCorruptHeader
	}

	buf := bytes.Repeat([]byte{' '}, HeaderSize)
	copy(buf, data)
	buf[HeaderSize-1] = '\n'
	return buf, nil
}
