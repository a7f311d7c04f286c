// Hashlink fingerprints for diagnostic records.
//
// A hashlink can be tens of kilobytes, so attempt records carry a 16 hex
// character fingerprint and a shortened form instead of the full URI.
// Three algorithms are supported, selectable via Config.HashAlgorithm.
package hashlink

import (
	"fmt"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// Fingerprint returns a 16 hex character digest of a hashlink using the
// given algorithm. Unknown algorithms fall back to xxHash3.
func Fingerprint(hashlink string, alg int) string {
	switch alg {
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write([]byte(hashlink))
		return fmt.Sprintf("%016x", h.Sum64())
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write([]byte(hashlink))
		return fmt.Sprintf("%016x", h.Sum(nil))
	default:
		return fmt.Sprintf("%016x", xxh3.HashString(hashlink))
	}
}

// shorten renders a hashlink as its first and last six characters. Cuts
// fall on rune boundaries.
func shorten(hashlink string) string {
	r := []rune(hashlink)
	if len(r) <= 15 {
		return hashlink
	}
	return string(r[:6]) + "..." + string(r[len(r)-6:])
}
