// Package httpapi implements the HTTP surface described in spec.md §6:
// HEAD/GET subscribe to a named channel, POST/PUT publish to it, and any
// other route or method is a 404.
package httpapi

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Tangent128/webmetro/channel"
	"github.com/Tangent128/webmetro/chunk"
	"github.com/Tangent128/webmetro/gate"
	"github.com/Tangent128/webmetro/internal/logging"
	"github.com/Tangent128/webmetro/pipeline"
)

// softLimit bounds in-flight buffering for a published stream, per
// spec.md's BUFFER_LIMIT precedent in the original relay server.
const softLimit = 2 << 20

// Handler serves the live/{name} surface over a channel.Registry.
type Handler struct {
	registry *channel.Registry
	log      *zap.SugaredLogger

	// connLimiter bounds how often a single remote address may open a new
	// subscribe/publish connection, guarding the relay against reconnect
	// storms. Not part of spec.md's core model; an operational safeguard.
	connLimiter *perAddrLimiter
}

// NewHandler creates a Handler backed by registry.
func NewHandler(registry *channel.Registry) *Handler {
	return &Handler{
		registry:    registry,
		log:         logging.Component("httpapi"),
		connLimiter: newPerAddrLimiter(rate.Limit(5), 10),
	}
}

// ServeHTTP routes "/live/{name}" by method; every other path is a 404.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := liveChannelName(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	reqID := uuid.NewString()
	log := h.log.With("request_id", reqID, "channel", name, "remote", r.RemoteAddr)

	if !h.connLimiter.Allow(r.RemoteAddr) {
		log.Warnw("rejecting connection, rate limit exceeded")
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	switch r.Method {
	case http.MethodHead:
		log.Infow("HEAD request")
		writeMediaHeaders(w)
		w.WriteHeader(http.StatusOK)

	case http.MethodGet:
		log.Infow("listener connected")
		h.serveListener(w, r, name, log)

	case http.MethodPost, http.MethodPut:
		log.Infow("publisher connected")
		h.servePublisher(w, r, name, log)

	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) serveListener(w http.ResponseWriter, r *http.Request, name string, log *zap.SugaredLogger) {
	ch, ok := h.registry.Lookup(name)
	if !ok {
		// No publisher has ever attached; still a valid subscribe target,
		// it will simply never receive a Headers chunk.
		ch = h.registry.GetOrCreate(name)
	}
	listener := ch.Subscribe()
	gated := gate.New(listenerSource{listener})

	writeMediaHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	for {
		c, err := gated.Next()
		if err != nil {
			return
		}
		if _, err := w.Write(c.Bytes()); err != nil {
			log.Debugw("listener write failed", "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		select {
		case <-r.Context().Done():
			return
		default:
		}
	}
}

func (h *Handler) servePublisher(w http.ResponseWriter, r *http.Request, name string, log *zap.SugaredLogger) {
	ch := h.registry.GetOrCreate(name)

	src := pipeline.Build(r.Body, pipeline.Options{SoftLimit: softLimit})
	for {
		c, err := src.Next()
		if err == io.EOF {
			w.WriteHeader(http.StatusOK)
			return
		}
		if err != nil {
			log.Warnw("publish stream terminated", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ch.Publish(c)
	}
}

// listenerSource adapts a channel.Listener's (Chunk, bool) pull to the
// (Chunk, error) shape gate.Source expects, so a late-joining listener is
// gated to the next keyframe the same way a file source is.
type listenerSource struct {
	l *channel.Listener
}

func (s listenerSource) Next() (chunk.Chunk, error) {
	c, ok := s.l.Next()
	if !ok {
		return chunk.Chunk{}, io.EOF
	}
	return c, nil
}

func writeMediaHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "video/webm")
	h.Set("Cache-Control", "no-cache, no-store")
	h.Set("X-Accel-Buffering", "no")
}

// liveChannelName extracts {name} from "/live/{name}", rejecting anything
// else (including a bare "/live/" with an empty name).
func liveChannelName(path string) (string, bool) {
	const prefix = "/live/"
	if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
		return "", false
	}
	name := path[len(prefix):]
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return "", false
		}
	}
	return name, true
}
