package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Tangent128/webmetro/channel"
	"github.com/Tangent128/webmetro/chunk"
	"github.com/Tangent128/webmetro/ebml"
	"github.com/Tangent128/webmetro/gate"
)

func TestLiveChannelName(t *testing.T) {
	cases := []struct {
		path string
		name string
		ok   bool
	}{
		{"/live/room1", "room1", true},
		{"/live/", "", false},
		{"/live/room1/extra", "", false},
		{"/other", "", false},
		{"/live", "", false},
	}
	for _, c := range cases {
		name, ok := liveChannelName(c.path)
		if name != c.name || ok != c.ok {
			t.Errorf("liveChannelName(%q) = %q, %v, want %q, %v", c.path, name, ok, c.name, c.ok)
		}
	}
}

func TestHeadReturnsMediaHeaders(t *testing.T) {
	h := NewHandler(channel.NewRegistry())
	req := httptest.NewRequest(http.MethodHead, "/live/room1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "video/webm" {
		t.Fatalf("Content-Type = %q, want video/webm", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache, no-store" {
		t.Fatalf("Cache-Control = %q", cc)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	h := NewHandler(channel.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}
}

func TestPostThenGetRelaysChunks(t *testing.T) {
	h := NewHandler(channel.NewRegistry())

	data, err := ebml.BuildTestStream([]byte("tracks"), []ebml.TestCluster{
		{StartMS: 0, Blocks: []ebml.SimpleBlock{{Track: 1, Flags: 0x80, Data: []byte("a")}}},
	})
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}

	postReq := httptest.NewRequest(http.MethodPost, "/live/room1", bytes.NewReader(data))
	postW := httptest.NewRecorder()
	h.ServeHTTP(postW, postReq)
	if postW.Code != http.StatusOK {
		t.Fatalf("POST code = %d, want 200, body=%s", postW.Code, postW.Body.String())
	}

	// The channel stays open after the publisher leaves, so the listener
	// loop only returns once the request is cancelled; a pre-cancelled
	// context makes it return after its first write.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	getReq := httptest.NewRequest(http.MethodGet, "/live/room1", nil).WithContext(ctx)
	getW := httptest.NewRecorder()
	h.ServeHTTP(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("GET code = %d, want 200", getW.Code)
	}
	if getW.Body.Len() == 0 {
		t.Fatalf("expected listener to have received the replayed Headers chunk")
	}
}

// TestServeListenerGatesLateJoinerToKeyframe exercises the same
// listenerSource+gate.New composition serveListener builds, confirming a
// listener that joins mid-stream never sees a cluster before a keyframe.
func TestServeListenerGatesLateJoinerToKeyframe(t *testing.T) {
	ch := channel.New()
	ch.Publish(chunk.HeadersChunk([]byte("hdr")))

	listener := ch.Subscribe()
	gated := gate.New(listenerSource{listener})

	c, err := gated.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if c.Kind != chunk.KindHeaders {
		t.Fatalf("kind = %v, want Headers", c.Kind)
	}

	ch.Publish(chunk.ClusterHeadChunk(chunk.Head{StartMS: 0, Keyframe: false}))
	ch.Publish(chunk.ClusterBodyChunk([]byte("nonkey")))
	ch.Publish(chunk.ClusterHeadChunk(chunk.Head{StartMS: 100, Keyframe: true}))
	ch.Publish(chunk.ClusterBodyChunk([]byte("keyframe-body")))

	c, err = gated.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if c.Kind != chunk.KindClusterHead || c.Head.StartMS != 100 {
		t.Fatalf("first surviving cluster = %+v, want the keyframe cluster at StartMS 100", c)
	}

	c, err = gated.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if c.Kind != chunk.KindClusterBody || string(c.Body) != "keyframe-body" {
		t.Fatalf("body = %+v, want keyframe-body", c)
	}
}

func TestMethodNotAllowedOnLiveRouteIs404(t *testing.T) {
	h := NewHandler(channel.NewRegistry())
	req := httptest.NewRequest(http.MethodDelete, "/live/room1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}
}
