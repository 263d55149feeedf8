package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	loginClientIdle  = 30 * time.Minute
	loginSweepPeriod = time.Minute
)

type loginClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiter throttles credential checks per client address. A zero rate
// disables limiting. Clients idle for loginClientIdle are forgotten.
type loginLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*loginClient
	lastSweep time.Time
	now       func() time.Time
}

func newLoginLimiter(perMinute, burst int) *loginLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	if burst <= 0 {
		burst = 1
	}
	return &loginLimiter{
		limit:   limit,
		burst:   burst,
		clients: make(map[string]*loginClient),
		now:     time.Now,
	}
}

func (l *loginLimiter) allow(r *http.Request) bool {
	if l.limit == rate.Inf {
		return true
	}
	key := clientAddress(r)
	now := l.now()
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= loginSweepPeriod {
		l.sweep(now)
	}
	client, ok := l.clients[key]
	if !ok {
		client = &loginClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}
	client.lastSeen = now
	l.mu.Unlock()
	return client.limiter.AllowN(now, 1)
}

// sweep drops idle clients. Callers hold l.mu.
func (l *loginLimiter) sweep(now time.Time) {
	for key, client := range l.clients {
		if now.Sub(client.lastSeen) >= loginClientIdle {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
