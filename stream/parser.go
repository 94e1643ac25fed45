// Package stream implements the incremental EBML parser: it turns a byte
// stream into a lazy sequence of ebml.Element events with bounded
// buffering, per spec.md §4.3.
package stream

import (
	"errors"
	"io"

	"github.com/Tangent128/webmetro/ebml"
)

// ErrResourcesExceeded is returned when the soft buffer limit is reached
// without enough bytes to decode the next element.
var ErrResourcesExceeded = errors.New("stream: resources exceeded")

// DefaultSoftLimit is the buffer ceiling the relay uses when none is given
// explicitly (spec.md §4.3: "Default relay uses L = 2 MiB").
const DefaultSoftLimit = 2 << 20

// refillSize is how many bytes Parser asks the underlying reader for per
// refill. Soft-limit overshoot is bounded by this value (spec.md §4.3:
// "Bytes may transiently exceed L after a single refill").
const refillSize = 32 * 1024

// Event is one decoded element together with its exact source byte span:
// header-only for unwrapped containers (Segment, Cluster), header+body
// otherwise. The chunker forwards Raw verbatim for every element it does
// not itself re-synthesize.
type Event struct {
	Element ebml.Element
	Raw     []byte
}

// Parser drives an EBML byte stream into a sequence of Events. It owns an
// append-only internal buffer and a read cursor; Next suspends only while
// waiting on the underlying io.Reader, matching spec.md §4.3's single-
// threaded, cooperative concurrency model (the "fill" callback of the
// abstract design is realized here as ordinary blocking Read calls).
//
// A Parser is not safe for concurrent use; each stream has exactly one
// reader, matching the single-publisher-at-a-time invariant upstream.
type Parser struct {
	r         io.Reader
	buf       []byte
	softLimit int
	eof       bool
}

// NewParser creates a Parser reading from r, applying softLimit as the
// bounded-buffering ceiling (spec.md §4.3). A softLimit of 0 disables the
// check.
func NewParser(r io.Reader, softLimit int) *Parser {
	return &Parser{r: r, softLimit: softLimit}
}

// Next decodes and returns the next Element in the stream. It returns
// io.EOF once the underlying reader is exhausted between elements, and any
// of ebml.ErrCorruptVarint, ebml.ErrUnknownElementID,
// ebml.ErrUnknownElementLength, ebml.ErrCorruptPayload or
// ErrResourcesExceeded as terminal decode errors.
func (p *Parser) Next() (Event, error) {
	for {
		tag, err := ebml.DecodeTag(p.buf)
		if err == nil {
			return p.emit(tag)
		}
		if !errors.Is(err, ebml.ErrIncomplete) {
			return Event{}, err
		}
		if len(p.buf) == 0 && p.eof {
			return Event{}, io.EOF
		}
		if err := p.refill(); err != nil {
			return Event{}, err
		}
	}
}

// emit completes the decode of a tag whose header is already fully
// buffered: it waits for the body (if any) to arrive, splits the element's
// raw span off the front of the buffer, and decodes its payload.
func (p *Parser) emit(tag ebml.Tag) (Event, error) {
	unwrap := ebml.ShouldUnwrap(tag.ID)
	if tag.Length == ebml.Unknown && !unwrap {
		return Event{}, ebml.ErrUnknownElementLength
	}

	span := tag.HeaderLen
	if !unwrap {
		span += int(tag.Length)
	}
	for len(p.buf) < span {
		if p.eof {
			return Event{}, io.ErrUnexpectedEOF
		}
		if err := p.refill(); err != nil {
			return Event{}, err
		}
	}

	raw := p.buf[:span:span]
	p.buf = p.buf[span:]

	var payload []byte
	if !unwrap {
		payload = raw[tag.HeaderLen:]
	}
	el, err := ebml.Decode(tag.ID, payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Element: el, Raw: raw}, nil
}

// refill reads more bytes from the underlying reader, enforcing the soft
// buffer limit before doing so.
func (p *Parser) refill() error {
	if p.eof {
		return io.ErrUnexpectedEOF
	}
	if p.softLimit > 0 && len(p.buf) >= p.softLimit {
		return ErrResourcesExceeded
	}

	chunk := make([]byte, refillSize)
	n, err := p.r.Read(chunk)
	if n > 0 {
		p.buf = append(p.buf, chunk[:n]...)
	}
	if err != nil {
		if err == io.EOF {
			p.eof = true
			if n > 0 {
				return nil
			}
			return nil // let the caller's next DecodeTag attempt observe EOF
		}
		return err
	}
	return nil
}
