package gate

import (
	"io"
	"testing"

	"github.com/Tangent128/webmetro/chunk"
)

type stubSource struct {
	chunks []chunk.Chunk
	i      int
}

func (s *stubSource) Next() (chunk.Chunk, error) {
	if s.i >= len(s.chunks) {
		return chunk.Chunk{}, io.EOF
	}
	c := s.chunks[s.i]
	s.i++
	return c, nil
}

func collect(t *testing.T, g *Gate) []chunk.Chunk {
	t.Helper()
	var out []chunk.Chunk
	for {
		c, err := g.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, c)
	}
}

func TestGateDropsClustersBeforeKeyframe(t *testing.T) {
	src := &stubSource{chunks: []chunk.Chunk{
		chunk.HeadersChunk([]byte("hdr")),
		chunk.ClusterHeadChunk(chunk.Head{StartMS: 0, Keyframe: false}),
		chunk.ClusterBodyChunk([]byte("nonkey")),
		chunk.ClusterHeadChunk(chunk.Head{StartMS: 100, Keyframe: true}),
		chunk.ClusterBodyChunk([]byte("key")),
	}}
	g := New(src)
	out := collect(t, g)

	want := []chunk.Kind{chunk.KindHeaders, chunk.KindClusterHead, chunk.KindClusterBody}
	if len(out) != len(want) {
		t.Fatalf("got %d chunks, want %d: %+v", len(out), len(want), out)
	}
	for i := range want {
		if out[i].Kind != want[i] {
			t.Fatalf("chunk %d kind = %v, want %v", i, out[i].Kind, want[i])
		}
	}
	if out[1].Head.StartMS != 100 {
		t.Fatalf("surviving ClusterHead start = %d, want 100", out[1].Head.StartMS)
	}
	if string(out[2].Body) != "key" {
		t.Fatalf("surviving ClusterBody = %q, want %q", out[2].Body, "key")
	}
}

func TestGateRearmsOnRepeatedHeaders(t *testing.T) {
	src := &stubSource{chunks: []chunk.Chunk{
		chunk.HeadersChunk([]byte("hdr")),
		chunk.ClusterHeadChunk(chunk.Head{StartMS: 0, Keyframe: true}),
		chunk.ClusterBodyChunk([]byte("first-key")),
		chunk.HeadersChunk([]byte("hdr2")), // resume: must clear seen_keyframe
		chunk.ClusterHeadChunk(chunk.Head{StartMS: 500, Keyframe: false}),
		chunk.ClusterBodyChunk([]byte("dropped")),
		chunk.ClusterHeadChunk(chunk.Head{StartMS: 600, Keyframe: true}),
		chunk.ClusterBodyChunk([]byte("second-key")),
	}}
	g := New(src)
	out := collect(t, g)

	var headers, bodies []string
	for _, c := range out {
		switch c.Kind {
		case chunk.KindHeaders:
			headers = append(headers, string(c.Headers))
		case chunk.KindClusterBody:
			bodies = append(bodies, string(c.Body))
		}
	}
	if len(headers) != 1 || headers[0] != "hdr" {
		t.Fatalf("headers = %v, want exactly the first Headers chunk forwarded, the repeat dropped", headers)
	}
	want := []string{"first-key", "second-key"}
	if len(bodies) != len(want) {
		t.Fatalf("bodies = %v, want %v", bodies, want)
	}
	for i := range want {
		if bodies[i] != want[i] {
			t.Fatalf("bodies[%d] = %q, want %q", i, bodies[i], want[i])
		}
	}
}

func TestGatePassesHeadersEvenWithoutKeyframe(t *testing.T) {
	src := &stubSource{chunks: []chunk.Chunk{
		chunk.HeadersChunk([]byte("hdr")),
	}}
	g := New(src)
	c, err := g.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if c.Kind != chunk.KindHeaders {
		t.Fatalf("kind = %v, want Headers", c.Kind)
	}
}
