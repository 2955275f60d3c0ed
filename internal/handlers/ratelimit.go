package handlers

import (
	"net"
	"net/http"
	"strings"
)

// RateLimiter throttles actions per key; see middleware.NewIPRateLimiter.
type RateLimiter interface {
	Allow(key string) bool
}

// allowRequest checks the caller's IP against the limiter for the given
// action. A nil limiter allows everything.
func allowRequest(limiter RateLimiter, r *http.Request, action string) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(action + ":" + clientIP(r))
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
