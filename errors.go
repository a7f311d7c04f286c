// Package hashlink recovers documents that were embedded entirely inside a
// URL fragment. A hashlink carries an LZMA-compressed, base64-encoded HTML
// document after its "#title/?" separator, so nothing is stored server-side.
//
// Decoding runs a fixed cascade of strategies: the reroute shape (plain
// base64 HTML), the standard compressed shape with padding and framing
// repair, a tolerant legacy decompressor, and finally a fetch of the link
// from its canonical host. The first strategy to succeed wins; every attempt
// is appended to a diagnostic Sink.
package hashlink

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling. Callers can use errors.Is on
// any error returned by Decoder.Decode to learn which kind of failure ended
// the cascade.
var (
	ErrPaddingExhausted     = errors.New("no valid transport padding")
	ErrCorruptStream        = errors.New("corrupt compressed stream")
	ErrLegacyCodecFailed    = errors.New("legacy decompression failed")
	ErrNoConnectivity       = errors.New("no network connectivity")
	ErrBadHTTPStatus        = errors.New("unexpected http status")
	ErrBodyExtractionFailed = errors.New("no body content in response")
	ErrUnknownFormat        = errors.New("unknown hashlink format")
	ErrInvalidDocument      = errors.New("document is not valid utf-8")
	ErrDocumentTooLarge     = errors.New("document exceeds maximum size")
	ErrInvalidPreset        = errors.New("compression preset out of range")
	ErrClosed               = errors.New("sink is closed")
	ErrCorruptHeader        = errors.New("corrupt header")
	ErrCorruptRecord        = errors.New("corrupt record")
)

// DecodeError is the terminal failure of a decode cascade. Strategy names
// the step whose failure ended it; Err carries one of the sentinel kinds
// above wrapped around the underlying cause.
type DecodeError struct {
	Strategy string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode hashlink (%s): %v", e.Strategy, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
