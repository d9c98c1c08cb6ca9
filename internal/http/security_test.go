package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct", "203.0.113.9:5000", nil, "203.0.113.9"},
		{"untrusted proxy ignored", "203.0.113.9:5000", map[string]string{"X-Forwarded-For": "198.51.100.1"}, "203.0.113.9"},
		{"trusted proxy forwarded", "10.0.0.2:5000", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, "198.51.100.1"},
		{"trusted proxy real ip", "127.0.0.1:5000", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"invalid forwarded value", "192.168.1.1:5000", map[string]string{"X-Forwarded-For": "not-an-ip"}, "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	metrics := &securityMetrics{}

	r := httptest.NewRequest(http.MethodGet, "/wrapped.txt", nil)
	r.Header.Set("User-Agent", "curl/8.5.0")
	if detectSuspiciousRequest(r, metrics) {
		t.Fatal("curl on the text view is expected traffic")
	}

	for _, target := range []string{"/.git/config", "/?next=../../etc/passwd", "/wp-admin"} {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		if !detectSuspiciousRequest(r, metrics) {
			t.Errorf("%s should be suspicious", target)
		}
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", "sqlmap/1.7")
	if !detectSuspiciousRequest(r, metrics) {
		t.Error("scanner user agent should be suspicious")
	}

	if metrics.suspiciousRequests != 4 {
		t.Fatalf("expected 4 counted requests, got %d", metrics.suspiciousRequests)
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		limit:       2,
		window:      time.Minute,
		now:         func() time.Time { return now },
		stopCleanup: make(chan struct{}),
	}
	defer rl.stop()
	metrics := &securityMetrics{}

	if !rl.allow("a", metrics) || !rl.allow("a", metrics) {
		t.Fatal("first two requests must pass")
	}
	if rl.allow("a", metrics) {
		t.Fatal("third request in the window must be rejected")
	}
	if !rl.allow("b", metrics) {
		t.Fatal("other clients have their own budget")
	}
	if metrics.rateLimitHits != 1 {
		t.Fatalf("expected one hit, got %d", metrics.rateLimitHits)
	}

	now = now.Add(time.Minute)
	if !rl.allow("a", metrics) {
		t.Fatal("a new window must reset the budget")
	}

	now = now.Add(11 * time.Minute)
	if removed := rl.cleanupStaleEntries(); removed != 2 {
		t.Fatalf("expected both clients removed, got %d", removed)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, Options{})
	rr := get(srv, "/")
	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	static := get(srv, "/static/wrapped.css")
	if static.Code != http.StatusOK || static.Header().Get("Cache-Control") == "" {
		t.Fatalf("static asset: status=%d cache=%q", static.Code, static.Header().Get("Cache-Control"))
	}
}
