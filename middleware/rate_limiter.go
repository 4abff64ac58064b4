package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/utils"
)

type timestamps []int64 // unix nanos

// IPRateLimiter implements per-IP fixed-window counters with optional
// trusted-proxy parsing of X-Forwarded-For.
type IPRateLimiter struct {
	max         int
	window      time.Duration
	mu          sync.Mutex
	state       map[string]timestamps
	trustedCIDR []string
	lastCleanup time.Time
}

func NewIPRateLimiter(maxReq int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		max:         maxReq,
		window:      window,
		state:       make(map[string]timestamps),
		lastCleanup: time.Now(),
	}
}

// SetTrustedProxies configures the CIDRs/IPs whose X-Forwarded-For header is
// honored.
func (l *IPRateLimiter) SetTrustedProxies(cidrs []string) {
	l.trustedCIDR = cidrs
}

// Middleware enforces the limit and answers 429 when exceeded.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		if !l.allow(ip) {
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
				Success: false,
				Message: "Too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) allow(ip string) bool {
	now := time.Now().UnixNano()
	cutoff := now - l.window.Nanoseconds()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Periodically drop idle entries so the map does not grow unbounded.
	if time.Since(l.lastCleanup) > l.window {
		for k, ts := range l.state {
			if len(ts) == 0 || ts[len(ts)-1] < cutoff {
				delete(l.state, k)
			}
		}
		l.lastCleanup = time.Now()
	}

	ts := l.state[ip]
	kept := ts[:0]
	for _, t := range ts {
		if t >= cutoff {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.state[ip] = kept
		return false
	}
	l.state[ip] = append(kept, now)
	return true
}

// clientIPGeneric resolves the client IP. X-Forwarded-For is honored only
// when the direct peer is a trusted proxy; otherwise the remote address wins.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}

	if !ipTrusted(remote, trustedCIDR) {
		return remote
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return remote
	}
	parts := strings.Split(xff, ",")
	if first := strings.TrimSpace(parts[0]); first != "" {
		return first
	}
	return remote
}

func ipTrusted(ip string, trustedCIDR []string) bool {
	parsed := net.ParseIP(ip)
	for _, entry := range trustedCIDR {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == ip {
			return true
		}
		if _, cidr, err := net.ParseCIDR(entry); err == nil && parsed != nil && cidr.Contains(parsed) {
			return true
		}
	}
	return false
}
