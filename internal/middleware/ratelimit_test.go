package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "X-Forwarded-For Single",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "X-Forwarded-For Multiple",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "X-Real-IP",
			headers:  map[string]string{"X-Real-IP": "10.0.0.3"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.3",
		},
		{
			name:     "RemoteAddr",
			remote:   "192.168.1.1:1234",
			expected: "192.168.1.1",
		},
		{
			name:     "RemoteAddr Without Port",
			remote:   "192.168.1.1",
			expected: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNewAuthRateLimiter_Config(t *testing.T) {
	limiter := NewAuthRateLimiter(nil)
	if limiter.limit != 5 {
		t.Fatalf("unexpected auth limit: %d", limiter.limit)
	}
	if limiter.prefix != "ratelimit:auth" {
		t.Fatalf("unexpected prefix: %q", limiter.prefix)
	}
}
