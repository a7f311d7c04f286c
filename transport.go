// Transport encoding for hashlink payloads.
//
// Payloads travel as standard base64 with full padding. Several producers
// stripped the trailing '=' characters (or a copy/paste lost them), so the
// decoder re-adds up to three before giving up. A string whose length is
// 1 mod 4 can never be repaired; it still walks every candidate and fails.
package hashlink

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Padding repairs, tried in this order. Base64 needs at most three '='
// characters to reach a multiple of four, so four candidates cover every
// possible under-padded input.
const (
	padNone  = 0
	padOne   = 1
	padTwo   = 2
	padThree = 3
)

var paddingRepairs = [...]int{padNone, padOne, padTwo, padThree}

// EncodeTransport encodes bytes as padded standard base64.
func EncodeTransport(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeTransport decodes a payload, repairing missing trailing padding.
// Returns ErrPaddingExhausted if none of the candidates decode.
func DecodeTransport(text string) ([]byte, error) {
	var last error
	for _, pad := range paddingRepairs {
		data, err := decodePadded(text, pad)
		if err == nil {
			return data, nil
		}
		last = err
	}
	return nil, fmt.Errorf("%w: %w", ErrPaddingExhausted, last)
}

// decodePadded appends pad '=' characters and decodes the result.
func decodePadded(text string, pad int) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text + strings.Repeat("=", pad))
}

// decodeLenient is the legacy transport decoder. It drops whitespace,
// accepts the URL-safe alphabet, and computes the padding directly instead
// of trying candidates.
func decodeLenient(text string) ([]byte, error) {
	text = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		case '-':
			return '+'
		case '_':
			return '/'
		}
		return r
	}, text)
	text = strings.TrimRight(text, "=")
	text += strings.Repeat("=", (4-len(text)%4)%4)
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaddingExhausted, err)
	}
	return data, nil
}
