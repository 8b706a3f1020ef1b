package server

import (
	"net/http"
	"testing"

	"github.com/geniusisme/falldice/internal/config"
)

func TestConnLimiter_PerIPLimit(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 2, MaxTotal: 100})

	release1, ok := limiter.Acquire("192.168.1.1")
	if !ok {
		t.Fatal("first connection should be allowed")
	}
	if _, ok := limiter.Acquire("192.168.1.1"); !ok {
		t.Fatal("second connection should be allowed")
	}
	if _, ok := limiter.Acquire("192.168.1.1"); ok {
		t.Error("third connection from same IP should be rejected")
	}
	if _, ok := limiter.Acquire("192.168.1.2"); !ok {
		t.Error("connection from different IP should be allowed")
	}

	release1()
	if _, ok := limiter.Acquire("192.168.1.1"); !ok {
		t.Error("connection should be allowed after release")
	}
}

func TestConnLimiter_TotalLimit(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxTotal: 2})

	limiter.Acquire("10.0.0.1")
	limiter.Acquire("10.0.0.2")
	if _, ok := limiter.Acquire("10.0.0.3"); ok {
		t.Error("connection beyond total limit should be rejected")
	}
}

func TestConnLimiter_Unlimited(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{})
	for i := 0; i < 100; i++ {
		if _, ok := limiter.Acquire("10.0.0.1"); !ok {
			t.Fatalf("connection %d rejected with no limits", i)
		}
	}
}

func TestConnLimiter_ReleaseIsIdempotent(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 1})

	release, _ := limiter.Acquire("10.0.0.1")
	other, _ := limiter.Acquire("10.0.0.2")
	release()
	release()

	total, ips := limiter.Stats()
	if total != 1 || ips != 1 {
		t.Errorf("Stats() = %d, %d, want 1, 1", total, ips)
	}

	other()
	total, ips = limiter.Stats()
	if total != 0 || ips != 0 {
		t.Errorf("Stats() = %d, %d, want 0, 0", total, ips)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"ipv6 remote addr", "[::1]:12345", nil, "::1"},
		{"unsplittable remote addr", "pipe", nil, "pipe"},
		{"forwarded for", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": " 203.0.113.7 "}, "203.0.113.7"},
		{"forwarded wins over real ip", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "203.0.113.7"}, "203.0.113.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: tt.remoteAddr, Header: http.Header{}}
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
