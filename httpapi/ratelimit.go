package httpapi

import (
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// perAddrLimiter tracks one rate.Limiter per remote host, so a single
// misbehaving client can't starve connection slots for everyone else.
// Entries are never actively expired; this is bounded in practice by the
// number of distinct client addresses a relay actually sees, and the
// limiters themselves are tiny.
type perAddrLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newPerAddrLimiter(limit rate.Limit, burst int) *perAddrLimiter {
	return &perAddrLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether a new connection from remoteAddr (as found on
// http.Request.RemoteAddr) may proceed.
func (p *perAddrLimiter) Allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	p.mu.Lock()
	l, ok := p.limiters[host]
	if !ok {
		l = rate.NewLimiter(p.limit, p.burst)
		p.limiters[host] = l
	}
	p.mu.Unlock()

	return l.Allow()
}
