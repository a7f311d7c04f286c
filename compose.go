// Hashlink composition: the encode path.
//
// The rendered document is treated as opaque text. It is compressed,
// base64 encoded, and placed after "#<title>/?" on the configured host,
// the same framing the decoder's standard strategy reads back.
package hashlink

import (
	"fmt"
	"strings"
)

// DefaultHost is the canonical hashlink host.
const DefaultHost = "itty.bitty.site"

// DefaultTitle is used when a document is composed without a title.
const DefaultTitle = "Title Goes Here"

// ComposeConfig holds composer options.
type ComposeConfig struct {
	Host   string // Default DefaultHost
	Preset int    // Compression preset 1-9; 0 selects DefaultPreset
	Title  string // Placeholder title (default DefaultTitle)
}

// Composer builds hashlinks.
type Composer struct {
	config ComposeConfig
}

// NewComposer creates a Composer. An out-of-range preset is rejected by
// Compose with ErrInvalidPreset.
func NewComposer(config ComposeConfig) *Composer {
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.Preset == 0 {
		config.Preset = DefaultPreset
	}
	if config.Title == "" {
		config.Title = DefaultTitle
	}
	return &Composer{config: config}
}

// Compose compresses document and returns the standard-shape hashlink.
func (c *Composer) Compose(title, document string) (string, error) {
	compressed, err := Compress([]byte(document), c.config.Preset)
	if err != nil {
		return "", fmt.Errorf("compose: %w", err)
	}
	return c.prefix(title) + EncodeTransport(compressed), nil
}

// ComposeReroute returns the reroute-shape hashlink, which embeds the
// document as plain base64 without compression.
func (c *Composer) ComposeReroute(title, document string) string {
	return c.prefix(title) + RerouteMarker + EncodeTransport([]byte(document))
}

func (c *Composer) prefix(title string) string {
	if title == "" {
		title = c.config.Title
	}
	return "https://" + c.config.Host + "/#" + escapeTitle(title) + "/?"
}

// escapeTitle percent-encodes every byte outside the unreserved set
// (letters, digits, "-", ".", "_", "~"). Unlike url.PathEscape it also
// escapes "/", ":", "@" and friends, which would otherwise confuse the
// "#title/?" separator.
func escapeTitle(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&15])
		}
	}
	return b.String()
}
