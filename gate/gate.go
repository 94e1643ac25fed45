// Package gate implements the starting-point gate from spec.md §4.6: it
// withholds cluster chunks from a listener until a keyframe has been seen,
// so that whatever a downstream decoder receives always begins at a point
// it can actually start decoding from.
package gate

import (
	"github.com/Tangent128/webmetro/chunk"
)

// Source is anything that yields a sequence of chunks, terminated by
// io.EOF.
type Source interface {
	Next() (chunk.Chunk, error)
}

// Gate wraps a Source, dropping ClusterHead/ClusterBody chunks until a
// keyframe ClusterHead has been observed. A repeated Headers chunk (a
// resumed publisher replaying its headers) re-arms the gate and is itself
// dropped, so the listener never sees a second Headers chunk mid-stream.
type Gate struct {
	src Source

	seenHeader   bool
	seenKeyframe bool
}

// New creates a Gate reading chunks from src.
func New(src Source) *Gate {
	return &Gate{src: src}
}

// Next returns the next chunk that should be forwarded downstream, skipping
// internally over any chunk the gate drops.
func (g *Gate) Next() (chunk.Chunk, error) {
	for {
		c, err := g.src.Next()
		if err != nil {
			return chunk.Chunk{}, err
		}

		switch c.Kind {
		case chunk.KindHeaders:
			if g.seenHeader {
				g.seenKeyframe = false
				continue
			}
			g.seenHeader = true
			return c, nil

		case chunk.KindClusterHead:
			if c.Head.Keyframe {
				g.seenKeyframe = true
			}
			if !g.seenKeyframe {
				continue
			}
			return c, nil

		case chunk.KindClusterBody:
			if !g.seenKeyframe {
				continue
			}
			return c, nil

		default:
			return c, nil
		}
	}
}

