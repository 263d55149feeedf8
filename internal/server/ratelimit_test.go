package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func loginFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/config", nil)
	req.RemoteAddr = addr
	return req
}

func TestLoginLimiterForgetsIdleClients(t *testing.T) {
	limiter := newLoginLimiter(1, 1)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := range 100 {
		limiter.allow(loginFrom("10.0.0." + strconv.Itoa(i) + ":5000"))
	}
	if got := len(limiter.clients); got != 100 {
		t.Fatalf("expected 100 tracked clients, got %d", got)
	}

	now = now.Add(loginClientIdle - time.Minute)
	if !limiter.allow(loginFrom("10.0.1.1:5000")) {
		t.Fatal("new client should be allowed")
	}
	if got := len(limiter.clients); got != 101 {
		t.Fatalf("clients must survive until idle, got %d", got)
	}

	now = now.Add(2 * time.Minute)
	limiter.allow(loginFrom("10.0.1.2:5000"))
	if got := len(limiter.clients); got != 2 {
		t.Fatalf("expected idle clients to be swept, got %d", got)
	}
}

func TestLoginLimiterKeepsActiveClientThrottled(t *testing.T) {
	limiter := newLoginLimiter(1, 1)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.allow(loginFrom("10.0.0.1:5000")) {
		t.Fatal("first attempt should pass")
	}
	now = now.Add(2 * loginSweepPeriod)
	limiter.allow(loginFrom("10.0.0.1:5000"))
	now = now.Add(time.Second)
	if limiter.allow(loginFrom("10.0.0.1:5001")) {
		t.Fatal("active client must stay throttled across a sweep")
	}
}

func TestLoginLimiterDisabled(t *testing.T) {
	limiter := newLoginLimiter(0, 0)
	for range 10 {
		if !limiter.allow(loginFrom("10.0.0.1:5000")) {
			t.Fatal("zero rate must not throttle")
		}
	}
	if len(limiter.clients) != 0 {
		t.Fatal("disabled limiter must not track clients")
	}
}
