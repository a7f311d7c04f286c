// Attempt records for the diagnostic log.
//
// Every step the decoder takes produces one Attempt: a strategy, the
// parameters it ran with, and what happened. Records are immutable once
// built and are serialised as single-line JSON.
package hashlink

import (
	"time"

	json "github.com/goccy/go-json"
)

// Strategy names, which double as version labels on success.
const (
	StrategyReroute  = "reroute"
	StrategyStandard = "standard"
	StrategyLegacy   = "legacy"
	StrategyFallback = "fallback"
)

// Outcome values recorded for an attempt.
const (
	OutcomeSuccess     = "success"     // Strategy produced the document
	OutcomeFallthrough = "fallthrough" // Failure; the cascade moved on
	OutcomeTerminal    = "terminal"    // Failure that ended the cascade
)

// Attempt is one diagnostic record.
type Attempt struct {
	Timestamp   int64  `json:"ts"`              // Unix milliseconds
	Hashlink    string `json:"link"`            // Shortened hashlink
	Fingerprint string `json:"id"`              // 16 hex chars
	Strategy    string `json:"strategy"`        // Strategy* constant
	Padding     int    `json:"pad"`             // Padding repair; -1 if not applicable
	Skip        int    `json:"skip"`            // Leading bytes skipped; -1 if not applicable
	Outcome     string `json:"outcome"`         // Outcome* constant
	Error       string `json:"err,omitempty"`   // Failure text
	Version     string `json:"label,omitempty"` // Version label on success
	Err         error  `json:"-"`               // Failure value, in-process only
}

// Failed reports whether the attempt did not produce a document.
func (a Attempt) Failed() bool {
	return a.Outcome != OutcomeSuccess
}

// encode serialises the attempt as one JSON line without the newline.
func (a *Attempt) encode() ([]byte, error) {
	return json.Marshal(a)
}

// decodeAttempt parses a single log line.
func decodeAttempt(data []byte) (*Attempt, error) {
	var a Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, ErrCorruptRecord
	}
	if a.Strategy == "" || a.Outcome == "" {
		return nil, ErrCorruptRecord
	}
	return &a, nil
}

func now() int64 {
	return time.Now().UnixMilli()
}
