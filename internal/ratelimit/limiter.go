// Package ratelimit enforces a minimum interval between requests to the
// same host, keeping feed polling polite.
package ratelimit

import (
	"net/url"
	"strings"
	"sync"
	"time"
)

// Limiter tracks the last request time per host.
type Limiter struct {
	mu          sync.Mutex
	hosts       map[string]time.Time
	minInterval time.Duration
}

// New creates a limiter with the given minimum interval between requests
// to the same host.
func New(minInterval time.Duration) *Limiter {
	return &Limiter{
		hosts:       make(map[string]time.Time),
		minInterval: minInterval,
	}
}

// Wait blocks until a request to target may proceed, then records it.
// Target may be a full feed URL or a bare hostname; all URLs on the same
// host share one interval.
func (l *Limiter) Wait(target string) {
	host := hostOf(target)
	for {
		l.mu.Lock()
		now := time.Now()
		last, ok := l.hosts[host]
		if !ok || now.Sub(last) >= l.minInterval {
			l.hosts[host] = now
			l.mu.Unlock()
			return
		}
		remaining := l.minInterval - now.Sub(last)
		l.mu.Unlock()
		time.Sleep(remaining)
	}
}

// hostOf extracts the hostname from a URL, passing bare hostnames through.
func hostOf(target string) string {
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return target
}
