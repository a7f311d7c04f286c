// Hashlink grammar.
//
// Three shapes are recognised, in priority order:
//
//	reroute   https://host/...#title/?data:text/html;charset=utf-8;base64,<payload>
//	          (also "#title#data:..." and "#data:...")
//	standard  https://host/#title/?<payload>
//	unknown   anything else; the payload is guessed as the text after the last "/?"
//
// Parsing never fails. An unrecognised hashlink yields ShapeUnknown.
package hashlink

import (
	"net/url"
	"regexp"
	"strings"
)

// Shape identifies which hashlink form a string matched.
type Shape int

const (
	ShapeUnknown  Shape = iota // Neither pattern matched
	ShapeReroute               // Embedded base64 HTML, no compression
	ShapeStandard              // Compressed payload after "#title/?"
)

func (s Shape) String() string {
	switch s {
	case ShapeReroute:
		return "reroute"
	case ShapeStandard:
		return "standard"
	default:
		return "unknown"
	}
}

// RerouteMarker precedes the payload of a reroute-shaped hashlink.
const RerouteMarker = "data:text/html;charset=utf-8;base64,"

var (
	rerouteShape  = regexp.MustCompile(`^https?://[^/#?]+/[^#]*#[^/#]*(?:/\?|/|#)?` + regexp.QuoteMeta(RerouteMarker) + `(.+)$`)
	standardShape = regexp.MustCompile(`^https?://([^/#?]+)/#(.*?)/\?(.*)$`)
)

// Match is the result of parsing a hashlink.
type Match struct {
	Shape   Shape
	Host    string // Standard shape only
	Title   string // Percent-decoded; standard shape only
	Payload string // Verbatim payload text; empty if none was found
}

// Parse classifies a hashlink and extracts its parts. For ShapeUnknown the
// Payload holds the best-effort guess from BestEffortPayload.
func Parse(hashlink string) Match {
	if m := rerouteShape.FindStringSubmatch(hashlink); m != nil {
		return Match{Shape: ShapeReroute, Payload: m[1]}
	}
	if m := standardShape.FindStringSubmatch(hashlink); m != nil {
		title, err := url.PathUnescape(m[2])
		if err != nil {
			title = m[2]
		}
		return Match{Shape: ShapeStandard, Host: m[1], Title: title, Payload: m[3]}
	}
	return Match{Shape: ShapeUnknown, Payload: BestEffortPayload(hashlink)}
}

// BestEffortPayload returns everything after the last "/?" separator, or
// an empty string if there is none.
func BestEffortPayload(hashlink string) string {
	i := strings.LastIndex(hashlink, "/?")
	if i < 0 {
		return ""
	}
	return hashlink[i+2:]
}
