// Package throttle paces a chunk stream against the wall clock, for file
// replay: each ClusterHead's end timecode, measured from the first
// cluster's end timecode, becomes a deadline relative to when the stream
// started, per spec.md §4.8. Never used on the live relay
// path, where chunks are already arriving in real time.
package throttle

import (
	"time"

	"github.com/Tangent128/webmetro/chunk"
)

// Source is anything that yields a sequence of chunks, terminated by
// io.EOF.
type Source interface {
	Next() (chunk.Chunk, error)
}

// Clock abstracts wall-clock reads and sleeping, so tests can run a replay
// without actually waiting on it.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Throttle wraps a Source, sleeping before each ClusterHead until the wall
// clock has caught up to that cluster's end timecode. The first cluster's
// end timecode is the zero point, so the first cluster never waits.
type Throttle struct {
	src   Source
	clock Clock

	startWall time.Time
	started   bool

	baseMS   uint64
	haveBase bool
}

// New creates a Throttle reading chunks from src, using the real system
// clock.
func New(src Source) *Throttle {
	return &Throttle{src: src, clock: realClock{}}
}

// NewWithClock creates a Throttle using the given Clock, for tests.
func NewWithClock(src Source, clock Clock) *Throttle {
	return &Throttle{src: src, clock: clock}
}

// Next returns the next chunk, having slept first if it is a ClusterHead
// whose target wall-clock time hasn't arrived yet.
func (t *Throttle) Next() (chunk.Chunk, error) {
	c, err := t.src.Next()
	if err != nil {
		return chunk.Chunk{}, err
	}

	if !t.started {
		t.startWall = t.clock.Now()
		t.started = true
	}

	if c.Kind != chunk.KindClusterHead {
		return c, nil
	}

	if !t.haveBase {
		t.baseMS = c.Head.EndMS
		t.haveBase = true
	}
	var offsetMS uint64
	if c.Head.EndMS > t.baseMS {
		offsetMS = c.Head.EndMS - t.baseMS
	}
	target := t.startWall.Add(time.Duration(offsetMS) * time.Millisecond)
	if d := target.Sub(t.clock.Now()); d > 0 {
		t.clock.Sleep(d)
	}
	return c, nil
}
