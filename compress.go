// Compression for hashlink payloads.
//
// Documents are compressed as a classic LZMA ("alone") stream: a 13 byte
// header (properties, dictionary size, uncompressed size) followed by the
// range-coded data and an end marker. Some encoder generations put extra
// framing in front of the header, so decompression takes a count of
// leading bytes to discard.
package hashlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ulikunitz/xz/lzma"
)

// Codec decompresses a payload after discarding skip leading bytes.
// The strict LZMA codec and the legacy codec both satisfy it.
type Codec interface {
	Decompress(data []byte, skip int) ([]byte, error)
}

// DefaultPreset is the compression preset producers use.
const DefaultPreset = 9

// MaxDocumentSize is the default cap on a decompressed document (16MB).
const MaxDocumentSize = 16 * 1024 * 1024

// maxDictCap bounds the dictionary size a header may request. The largest
// preset uses 64MB; anything above that is a mangled header, not a producer.
const maxDictCap = 64 * 1024 * 1024

// presetDict maps presets 0-9 to dictionary sizes, as xz-utils does.
var presetDict = [...]int{
	256 << 10, 1 << 20, 2 << 20, 4 << 20, 4 << 20,
	8 << 20, 8 << 20, 16 << 20, 32 << 20, 64 << 20,
}

// Compress encodes data as an LZMA stream at the given preset. The
// dictionary never exceeds the next power of two above the input length,
// which keeps small documents from allocating the full preset dictionary.
func Compress(data []byte, preset int) ([]byte, error) {
	if preset < 0 || preset >= len(presetDict) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPreset, preset)
	}

	dict := lzma.MinDictCap
	for dict < len(data) && dict < presetDict[preset] {
		dict <<= 1
	}
	matcher := lzma.HashTable4
	if preset >= 5 {
		matcher = lzma.BinaryTree
	}

	var buf bytes.Buffer
	w, err := lzma.WriterConfig{DictCap: dict, Matcher: matcher}.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LZMA is the strict decoder: the stream must be complete, match its
// declared size, and decompress to valid UTF-8.
type LZMA struct {
	MaxSize int64 // Decompressed size cap (default MaxDocumentSize)
}

// Decompress drops skip leading bytes and decodes the remainder.
func (c LZMA) Decompress(data []byte, skip int) ([]byte, error) {
	if skip < 0 || skip+lzma.HeaderLen > len(data) {
		return nil, fmt.Errorf("%w: %d bytes after skipping %d", ErrCorruptStream, len(data)-skip, skip)
	}
	limit := c.MaxSize
	if limit <= 0 {
		limit = MaxDocumentSize
	}

	// A dictionary larger than the output cap is never needed; shrinking
	// it keeps a preset-9 header from allocating 64MB per attempt.
	stream := data[skip:]
	if dict := binary.LittleEndian.Uint32(stream[1:5]); dict <= maxDictCap && int64(dict) > limit {
		stream = bytes.Clone(stream)
		clampDict(stream, limit)
	}

	r, err := lzma.ReaderConfig{DictCap: maxDictCap}.NewReader(bytes.NewReader(stream))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma: %w", ErrCorruptStream, err)
	}
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma: %w", ErrCorruptStream, err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, limit)
	}
	if !utf8.Valid(out) {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStream, ErrInvalidDocument)
	}
	return out, nil
}

// clampDict lowers the dictionary size field of an LZMA header to ceiling.
// The dictionary only has to cover the longest match distance, which can
// never exceed the decompressed size.
func clampDict(header []byte, ceiling int64) {
	if int64(binary.LittleEndian.Uint32(header[1:5])) > ceiling {
		binary.LittleEndian.PutUint32(header[1:5], uint32(ceiling))
	}
}
