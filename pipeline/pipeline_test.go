package pipeline

import (
	"bytes"
	"io"
	"testing"

	"github.com/Tangent128/webmetro/chunk"
	"github.com/Tangent128/webmetro/ebml"
)

func buildFixture(t *testing.T) []byte {
	t.Helper()
	data, err := ebml.BuildTestStream([]byte("tracks"), []ebml.TestCluster{
		{StartMS: 0, Blocks: []ebml.SimpleBlock{{Track: 1, Flags: 0x80, Data: []byte("a")}}},
		{StartMS: 1000, Blocks: []ebml.SimpleBlock{{Track: 1, Flags: 0x80, Data: []byte("b")}}},
	})
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	return data
}

func TestBuildAndDrainRoundTrip(t *testing.T) {
	data := buildFixture(t)
	src := Build(bytes.NewReader(data), Options{})

	var out bytes.Buffer
	if err := Drain(src, &out); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected non-empty output")
	}
}

func TestBuildWithGateDropsUntilKeyframe(t *testing.T) {
	data, err := ebml.BuildTestStream([]byte("tracks"), []ebml.TestCluster{
		{StartMS: 0, Blocks: []ebml.SimpleBlock{{Track: 1, Flags: 0x00, Data: []byte("nonkey")}}},
		{StartMS: 1000, Blocks: []ebml.SimpleBlock{{Track: 1, Flags: 0x80, Data: []byte("key")}}},
	})
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}

	src := Build(bytes.NewReader(data), Options{Gate: true})

	var kinds []chunk.Kind
	for {
		c, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		kinds = append(kinds, c.Kind)
	}

	want := []chunk.Kind{chunk.KindHeaders, chunk.KindClusterHead, chunk.KindClusterBody}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kind %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestDecodeEventsExposesElementStream(t *testing.T) {
	data := buildFixture(t)
	p := DecodeEvents(bytes.NewReader(data), 0)

	count := 0
	for {
		_, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		count++
	}
	if count == 0 {
		t.Fatalf("expected at least one event")
	}
}
