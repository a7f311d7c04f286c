// Decode cascade.
//
// Strategies run strictly in order and the first success ends the cascade:
//
//  1. reroute   base64 HTML after a data: marker. A recognised marker
//     commits the cascade: if its payload does not decode the failure is
//     terminal, even though a later strategy might have succeeded.
//  2. standard  padding repair x framing skip, strict LZMA.
//  3. legacy    tolerant LZMA on the same payload.
//  4. fallback  fetch from the host; always terminal.
//
// Each strategy returns an outcome value instead of signalling through
// errors, and every step appends one Attempt to the sink.
package hashlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"
)

// Leading bytes discarded before strict decompression. Earlier encoder
// generations wrote 5, 9 or 13 bytes of their own framing ahead of the
// LZMA header and carried no version tag, so each offset is tried in turn.
const (
	skipNone   = 0
	skipShort  = 5
	skipMedium = 9
	skipLong   = 13
)

var skipOffsets = [...]int{skipNone, skipShort, skipMedium, skipLong}

// Document is a recovered hashlink document.
type Document struct {
	HTML    string
	Version string // Label of the strategy that produced it
	Title   string // Percent-decoded title, when the link carried one
}

// Config holds decoder options. Zero values select the defaults.
type Config struct {
	Timeout         time.Duration // Network fallback per-request timeout (default 10s)
	MaxDocumentSize int64         // Decompressed size cap (default 16MB)
	HashAlgorithm   int           // Fingerprint algorithm (default xxHash3)
	Offline         bool          // Fail the network fallback without fetching

	Sink    Sink         // Attempt records (default: discarded)
	Logger  *slog.Logger // Default: discarded
	Fetcher Fetcher      // Default: HTTPFetcher with Timeout
	Legacy  Codec        // Default: LegacyLZMA
}

// Decoder runs the decode cascade. It holds no per-call state and is safe
// for concurrent use.
type Decoder struct {
	config  Config
	strict  Codec
	legacy  Codec
	fetcher Fetcher
	sink    Sink
	logger  *slog.Logger
}

// NewDecoder creates a Decoder.
func NewDecoder(config Config) *Decoder {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxDocumentSize <= 0 {
		config.MaxDocumentSize = MaxDocumentSize
	}
	if config.HashAlgorithm == 0 {
		config.HashAlgorithm = AlgXXHash3
	}

	d := &Decoder{
		config:  config,
		strict:  LZMA{MaxSize: config.MaxDocumentSize},
		legacy:  config.Legacy,
		fetcher: config.Fetcher,
		sink:    config.Sink,
		logger:  config.Logger,
	}
	if d.legacy == nil {
		d.legacy = LegacyLZMA{MaxSize: config.MaxDocumentSize}
	}
	if d.fetcher == nil {
		d.fetcher = NewFetcher(FetchConfig{Timeout: config.Timeout})
	}
	if config.Offline {
		d.fetcher = nil
	}
	if d.sink == nil {
		d.sink = discardSink{}
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

type outcomeKind int

const (
	kindNext     outcomeKind = iota // Failed; try the next strategy
	kindSuccess                     // Document recovered
	kindTerminal                    // Failed; stop here
)

type outcome struct {
	kind outcomeKind
	doc  *Document
	err  error
}

// run is the state shared by the strategies of one Decode call.
type run struct {
	d        *Decoder
	hashlink string
	short    string
	id       string
	match    Match
}

// record appends one attempt. Sink failures are logged, never fatal.
func (r *run) record(strategy string, pad, skip int, o outcome) {
	a := Attempt{
		Timestamp:   now(),
		Hashlink:    r.short,
		Fingerprint: r.id,
		Strategy:    strategy,
		Padding:     pad,
		Skip:        skip,
		Err:         o.err,
	}
	switch o.kind {
	case kindSuccess:
		a.Outcome = OutcomeSuccess
		a.Version = o.doc.Version
	case kindTerminal:
		a.Outcome = OutcomeTerminal
	default:
		a.Outcome = OutcomeFallthrough
	}
	if o.err != nil {
		a.Error = o.err.Error()
	}
	if err := r.d.sink.Append(a); err != nil {
		r.d.logger.Warn("diagnostic sink append failed", "err", err)
	}
}

func (r *run) document(html, version string) *Document {
	return &Document{HTML: html, Version: version, Title: r.match.Title}
}

// Decode recovers the document embedded in hashlink. It returns either a
// Document or a *DecodeError, never both.
func (d *Decoder) Decode(ctx context.Context, hashlink string) (*Document, error) {
	r := &run{
		d:        d,
		hashlink: hashlink,
		short:    shorten(hashlink),
		id:       Fingerprint(hashlink, d.config.HashAlgorithm),
		match:    Parse(hashlink),
	}
	d.logger.Info("decode start", "link", r.short, "id", r.id, "shape", r.match.Shape)

	strategies := []struct {
		name string
		fn   func(*Decoder, context.Context, *run) outcome
	}{
		{StrategyReroute, (*Decoder).reroute},
		{StrategyStandard, (*Decoder).standard},
		{StrategyLegacy, (*Decoder).legacyDecode},
		{StrategyFallback, (*Decoder).network},
	}

	for _, s := range strategies {
		o := s.fn(d, ctx, r)
		switch o.kind {
		case kindSuccess:
			d.logger.Info("decode success", "link", r.short, "id", r.id, "version", o.doc.Version)
			return o.doc, nil
		case kindTerminal:
			d.logger.Error("decode failed", "link", r.short, "id", r.id, "strategy", s.name, "err", o.err)
			return nil, &DecodeError{Strategy: s.name, Err: o.err}
		}
	}
	return nil, &DecodeError{Strategy: StrategyFallback, Err: ErrUnknownFormat}
}

func (d *Decoder) reroute(_ context.Context, r *run) outcome {
	if r.match.Shape != ShapeReroute {
		o := outcome{kind: kindNext, err: fmt.Errorf("%w: no reroute marker", ErrUnknownFormat)}
		r.record(StrategyReroute, -1, -1, o)
		return o
	}

	d.logger.Debug("phase: reroute", "link", r.short)
	var o outcome
	data, err := DecodeTransport(r.match.Payload)
	switch {
	case err != nil:
		o = outcome{kind: kindTerminal, err: err}
	case !utf8.Valid(data):
		o = outcome{kind: kindTerminal, err: ErrInvalidDocument}
	default:
		o = outcome{kind: kindSuccess, doc: r.document(string(data), StrategyReroute)}
	}
	r.record(StrategyReroute, -1, -1, o)
	return o
}

func (d *Decoder) standard(_ context.Context, r *run) outcome {
	if r.match.Payload == "" {
		o := outcome{kind: kindNext, err: fmt.Errorf("%w: no payload", ErrUnknownFormat)}
		r.record(StrategyStandard, -1, -1, o)
		return o
	}

	for _, pad := range paddingRepairs {
		d.logger.Debug("phase: padding attempt", "link", r.short, "pad", pad)
		data, err := decodePadded(r.match.Payload, pad)
		if err != nil {
			r.record(StrategyStandard, pad, -1, outcome{err: fmt.Errorf("%w: %w", ErrPaddingExhausted, err)})
			continue
		}
		for _, skip := range skipOffsets {
			out, err := d.strict.Decompress(data, skip)
			if err != nil {
				r.record(StrategyStandard, pad, skip, outcome{err: err})
				continue
			}
			o := outcome{kind: kindSuccess, doc: r.document(string(out), StrategyStandard)}
			r.record(StrategyStandard, pad, skip, o)
			return o
		}
	}
	return outcome{kind: kindNext, err: ErrCorruptStream}
}

func (d *Decoder) legacyDecode(_ context.Context, r *run) outcome {
	payload := r.match.Payload
	if payload == "" {
		payload = BestEffortPayload(r.hashlink)
	}
	if payload == "" {
		o := outcome{kind: kindNext, err: fmt.Errorf("%w: no payload", ErrUnknownFormat)}
		r.record(StrategyLegacy, -1, -1, o)
		return o
	}

	d.logger.Debug("phase: legacy decompression", "link", r.short)
	var o outcome
	data, err := decodeLenient(payload)
	if err == nil {
		var out []byte
		if out, err = d.legacy.Decompress(data, skipNone); err == nil {
			o = outcome{kind: kindSuccess, doc: r.document(string(out), StrategyLegacy)}
		}
	}
	if err != nil {
		if !errors.Is(err, ErrLegacyCodecFailed) {
			err = fmt.Errorf("%w: %w", ErrLegacyCodecFailed, err)
		}
		o = outcome{kind: kindNext, err: err}
	}
	r.record(StrategyLegacy, -1, skipNone, o)
	return o
}

func (d *Decoder) network(ctx context.Context, r *run) outcome {
	d.logger.Info("phase: network fallback", "link", r.short)
	var o outcome
	res, err := d.fallback(ctx, r.hashlink)
	if err != nil {
		o = outcome{kind: kindTerminal, err: err}
	} else {
		version := StrategyFallback
		if res.redirected {
			version += " (via redirect)"
		}
		o = outcome{kind: kindSuccess, doc: r.document(res.html, version)}
	}
	r.record(StrategyFallback, -1, -1, o)
	return o
}
