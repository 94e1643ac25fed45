// Package pipeline composes the streaming parser, chunker, timecode
// fixer and (optionally) the starting-point gate and the replay throttle
// into the single pull chain that both the relay server and the CLI's filter/send
// commands drive, per spec.md §2's component table.
package pipeline

import (
	"io"

	"github.com/Tangent128/webmetro/chunk"
	"github.com/Tangent128/webmetro/fixer"
	"github.com/Tangent128/webmetro/gate"
	"github.com/Tangent128/webmetro/stream"
	"github.com/Tangent128/webmetro/throttle"
)

// Options configures which optional stages a Pipeline includes.
type Options struct {
	// SoftLimit bounds in-flight buffering in both the parser and the
	// chunker. Zero disables the check.
	SoftLimit int
	// Throttle paces ClusterHead emission against the wall clock; intended
	// for file replay only, never the live relay path (spec.md §4.8).
	Throttle bool
	// Gate withholds cluster chunks until a keyframe has been seen. The
	// relay server leaves this unset and gates each listener separately
	// (see package httpapi); filter and send leave it unset as well.
	Gate bool
}

// Stage is anything that yields a sequence of chunks, terminated by
// io.EOF. Every stage in this package, and chunk.Chunker, satisfies it.
type Stage interface {
	Next() (chunk.Chunk, error)
}

// Build assembles the full parser→chunker→fixer[→gate][→throttle] chain
// reading EBML bytes from r.
func Build(r io.Reader, opts Options) Stage {
	p := stream.NewParser(r, opts.SoftLimit)
	c := chunk.NewChunker(p, opts.SoftLimit)
	var s Stage = fixer.New(c)
	if opts.Gate {
		s = gate.New(s)
	}
	if opts.Throttle {
		s = throttle.New(s)
	}
	return s
}

// Drain reads every chunk from src, writing its wire bytes to w. It stops
// at io.EOF and returns any other error encountered.
func Drain(src Stage, w io.Writer) error {
	for {
		c, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, werr := w.Write(c.Bytes()); werr != nil {
			return werr
		}
	}
}

// DecodeEvents re-exposes the underlying element stream for callers that
// want element-level detail rather than chunk boundaries. The CLI's dump
// command builds the same stream.Parser directly and does not call this.
func DecodeEvents(r io.Reader, softLimit int) *stream.Parser {
	return stream.NewParser(r, softLimit)
}
