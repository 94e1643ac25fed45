package chunk

import (
	"bytes"
	"errors"
	"io"

	"github.com/Tangent128/webmetro/ebml"
	"github.com/Tangent128/webmetro/stream"
)

// ErrResourcesExceeded is returned when the chunker's in-progress
// serialization buffer reaches its soft limit without producing a chunk,
// mirroring the streaming parser's own limit (spec.md §4.4).
var ErrResourcesExceeded = errors.New("chunk: resources exceeded")

// Source is anything that yields a sequence of element events, terminated
// by io.EOF. *stream.Parser satisfies this.
type Source interface {
	Next() (stream.Event, error)
}

type state int

const (
	stateBuildingHeader state = iota
	stateBuildingCluster
	stateEnd
)

// Chunker is the element-stream state machine described in spec.md §4.4:
// it coalesces header elements into a single Headers chunk, and each
// cluster's Timecode and SimpleBlock events into a ClusterHead/ClusterBody
// pair.
type Chunker struct {
	src       Source
	softLimit int

	state state
	ended bool

	headerBuf []byte
	head      Head
	bodyBuf   []byte

	pending []Chunk
}

// NewChunker creates a Chunker reading elements from src. softLimit bounds
// the in-progress serialization buffer; 0 disables the check.
func NewChunker(src Source, softLimit int) *Chunker {
	return &Chunker{src: src, softLimit: softLimit, state: stateBuildingHeader}
}

// Next returns the next Chunk, or io.EOF once the source is exhausted and
// every buffered chunk has been drained.
func (c *Chunker) Next() (Chunk, error) {
	if len(c.pending) > 0 {
		ch := c.pending[0]
		c.pending = c.pending[1:]
		return ch, nil
	}
	if c.ended {
		return Chunk{}, io.EOF
	}

	for {
		ev, err := c.src.Next()
		if err == io.EOF {
			return c.finish()
		}
		if err != nil {
			c.ended = true
			return Chunk{}, err
		}

		out, err := c.step(ev)
		if err != nil {
			c.ended = true
			return Chunk{}, err
		}
		if len(out) == 0 {
			continue
		}
		first := out[0]
		if len(out) > 1 {
			c.pending = append(c.pending, out[1:]...)
		}
		return first, nil
	}
}

func (c *Chunker) finish() (Chunk, error) {
	c.ended = true
	if c.state == stateBuildingCluster {
		c.state = stateEnd
		c.pending = append(c.pending, ClusterBodyChunk(c.bodyBuf))
		return ClusterHeadChunk(c.head), nil
	}
	c.state = stateEnd
	return Chunk{}, io.EOF
}

// step applies one event to the state machine and returns zero, one, or
// two chunks to emit.
func (c *Chunker) step(ev stream.Event) ([]Chunk, error) {
	switch c.state {
	case stateBuildingHeader:
		return c.stepHeader(ev)
	case stateBuildingCluster:
		return c.stepCluster(ev)
	default:
		return nil, nil
	}
}

func (c *Chunker) stepHeader(ev stream.Event) ([]Chunk, error) {
	switch ev.Element.Kind {
	case ebml.KindCluster:
		out := HeadersChunk(c.headerBuf)
		c.headerBuf = nil
		c.beginCluster()
		return []Chunk{out}, nil

	case ebml.KindInfo, ebml.KindVoid, ebml.KindSeekHead, ebml.KindCues, ebml.KindUnknown:
		return nil, nil

	default:
		c.headerBuf = append(c.headerBuf, ev.Raw...)
		return nil, c.checkLimit(len(c.headerBuf))
	}
}

func (c *Chunker) stepCluster(ev stream.Event) ([]Chunk, error) {
	switch ev.Element.Kind {
	case ebml.KindTimecode:
		c.head.StartMS = ev.Element.Timecode
		c.head.EndMS = ev.Element.Timecode
		if err := c.rewritePrefix(); err != nil {
			return nil, err
		}
		return nil, nil

	case ebml.KindSimpleBlock:
		b := ev.Element.SimpleBlock
		if b.Keyframe() {
			c.head.Keyframe = true
		}
		end := int64(c.head.StartMS) + int64(b.Timecode)
		if end < 0 {
			end = 0
		}
		if uint64(end) > c.head.EndMS {
			c.head.EndMS = uint64(end)
		}
		c.bodyBuf = append(c.bodyBuf, ev.Raw...)
		return nil, c.checkLimit(len(c.bodyBuf))

	case ebml.KindCluster:
		out := []Chunk{ClusterHeadChunk(c.head), ClusterBodyChunk(c.bodyBuf)}
		c.beginCluster()
		return out, nil

	case ebml.KindEBMLHead, ebml.KindSegment:
		out := []Chunk{ClusterHeadChunk(c.head), ClusterBodyChunk(c.bodyBuf)}
		c.state = stateBuildingHeader
		c.headerBuf = append([]byte(nil), ev.Raw...)
		c.head = Head{}
		c.bodyBuf = nil
		return out, nil

	case ebml.KindInfo, ebml.KindVoid, ebml.KindSeekHead, ebml.KindCues, ebml.KindUnknown:
		return nil, nil

	default:
		c.bodyBuf = append(c.bodyBuf, ev.Raw...)
		return nil, c.checkLimit(len(c.bodyBuf))
	}
}

// beginCluster resets chunker state to start accumulating a fresh cluster,
// remaining in (or entering) stateBuildingCluster.
func (c *Chunker) beginCluster() {
	c.state = stateBuildingCluster
	c.head = Head{}
	c.bodyBuf = nil
}

// rewritePrefix re-synthesizes Head.EncodedPrefix from the current
// StartMS: the canonical (Cluster, Timecode(StartMS)) byte sequence.
func (c *Chunker) rewritePrefix() error {
	var buf bytes.Buffer
	if err := ebml.EncodeClusterOpen(&buf); err != nil {
		return err
	}
	if err := ebml.EncodeTimecode(c.head.StartMS, &buf); err != nil {
		return err
	}
	c.head.EncodedPrefix = buf.Bytes()
	return nil
}

func (c *Chunker) checkLimit(n int) error {
	if c.softLimit > 0 && n >= c.softLimit {
		return ErrResourcesExceeded
	}
	return nil
}
