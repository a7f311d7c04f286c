// Legacy decompression for payloads from very old producers.
//
// Those producers ran a JavaScript LZMA port that wrote headers with
// inconsistent sizes, sometimes omitted the end marker, and occasionally
// left junk after it. The strict codec rejects all of these. The legacy
// codec keeps whatever the stream yielded before it broke.
package hashlink

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ulikunitz/xz/lzma"
)

// drainReads bounds the reads issued after a stream error to collect
// output still buffered in the decoder's dictionary.
const drainReads = 8

// LegacyLZMA is the tolerant decoder used after the strict one fails.
type LegacyLZMA struct {
	MaxSize int64 // Decompressed size cap (default MaxDocumentSize)
}

// Decompress drops skip leading bytes and decodes as much of the remaining
// stream as possible. Invalid UTF-8 is replaced rather than rejected. It
// fails only when nothing at all can be recovered.
func (c LegacyLZMA) Decompress(data []byte, skip int) ([]byte, error) {
	if skip < 0 || skip+lzma.HeaderLen > len(data) {
		return nil, fmt.Errorf("%w: stream shorter than header", ErrLegacyCodecFailed)
	}
	limit := c.MaxSize
	if limit <= 0 {
		limit = MaxDocumentSize
	}

	// Work on a copy so the caller's payload is never modified.
	stream := bytes.Clone(data[skip:])
	clampDict(stream, min(limit, maxDictCap))

	r, err := lzma.ReaderConfig{DictCap: maxDictCap}.NewReader(bytes.NewReader(stream))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma: %w", ErrLegacyCodecFailed, err)
	}

	var out bytes.Buffer
	_, err = out.ReadFrom(io.LimitReader(r, limit+1))
	if err != nil {
		buf := make([]byte, 32*1024)
		for range drainReads {
			n, rerr := r.Read(buf)
			out.Write(buf[:n])
			if n == 0 || rerr == io.EOF {
				break
			}
		}
	}
	if int64(out.Len()) > limit {
		return nil, fmt.Errorf("%w: %w", ErrLegacyCodecFailed, ErrDocumentTooLarge)
	}
	if out.Len() == 0 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: nothing recovered: %w", ErrLegacyCodecFailed, err)
	}
	return []byte(strings.ToValidUTF8(out.String(), "�")), nil
}
