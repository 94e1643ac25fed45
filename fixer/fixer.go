// Package fixer rewrites cluster start/end timecodes so that concatenated
// sources (a publisher that restarts, or several publishers attaching to
// the same channel over time) always produce a non-decreasing cluster
// timeline, per spec.md §4.5.
package fixer

import (
	"bytes"

	"github.com/Tangent128/webmetro/chunk"
	"github.com/Tangent128/webmetro/ebml"
)

// assumedDurationMS is the fallback gap assumed between the last cluster
// of one source and the first cluster of the next, when the new source's
// own timecode would otherwise go backwards.
const assumedDurationMS = 33

// Source is anything that yields a sequence of chunks, terminated by
// io.EOF. *chunk.Chunker satisfies this, as does anything else in the
// pipeline chain.
type Source interface {
	Next() (chunk.Chunk, error)
}

// Fixer wraps a Source, rewriting every ClusterHead's timecodes to keep
// the overall cluster timeline strictly non-decreasing.
type Fixer struct {
	src Source

	currentOffset    uint64
	lastObservedEnd  uint64
	haveLastObserved bool
}

// New creates a Fixer reading chunks from src.
func New(src Source) *Fixer {
	return &Fixer{src: src}
}

// Next returns the next chunk, with ClusterHead chunks rewritten in place.
// Non-cluster chunks pass through unchanged.
func (f *Fixer) Next() (chunk.Chunk, error) {
	c, err := f.src.Next()
	if err != nil {
		return chunk.Chunk{}, err
	}
	if c.Kind != chunk.KindClusterHead {
		return c, nil
	}
	return f.fix(c)
}

func (f *Fixer) fix(c chunk.Chunk) (chunk.Chunk, error) {
	h := c.Head
	s := h.StartMS

	// Compare against where s would land under the current offset, not the
	// raw source timecode: within one restarted source's own run, s keeps
	// advancing, and it's the *shifted* position that must stay past the
	// previous source's last end, not the raw one (see DESIGN.md).
	tentative := s + f.currentOffset
	if f.haveLastObserved && tentative < f.lastObservedEnd {
		next := f.lastObservedEnd + assumedDurationMS
		f.currentOffset = next - s
	}

	h.StartMS = s + f.currentOffset
	h.EndMS = h.EndMS + f.currentOffset

	var buf bytes.Buffer
	if err := ebml.EncodeClusterOpen(&buf); err != nil {
		return chunk.Chunk{}, err
	}
	if err := ebml.EncodeTimecode(h.StartMS, &buf); err != nil {
		return chunk.Chunk{}, err
	}
	h.EncodedPrefix = buf.Bytes()

	f.lastObservedEnd = h.EndMS
	f.haveLastObserved = true

	return chunk.ClusterHeadChunk(h), nil
}
