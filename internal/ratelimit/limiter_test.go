package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestWait_FirstFetchImmediate(t *testing.T) {
	limiter := New(50 * time.Millisecond)

	start := time.Now()
	limiter.Wait("https://www.lemonde.fr/rss/une.xml")
	elapsed := time.Since(start)

	if elapsed >= 50*time.Millisecond {
		t.Errorf("first fetch to a host should not wait, blocked %v", elapsed)
	}
}

func TestWait_SameHostWaitsOutInterval(t *testing.T) {
	limiter := New(50 * time.Millisecond)

	limiter.Wait("https://www.lemonde.fr/rss/une.xml")
	start := time.Now()
	limiter.Wait("https://www.lemonde.fr/rss/international.xml")
	elapsed := time.Since(start)

	// Two feeds on the same host share the interval.
	if elapsed < 40*time.Millisecond {
		t.Errorf("second fetch to the same host should wait out the interval, blocked only %v", elapsed)
	}
}

func TestWait_DifferentHostsIndependent(t *testing.T) {
	limiter := New(100 * time.Millisecond)

	limiter.Wait("https://www.lemonde.fr/rss/une.xml")
	start := time.Now()
	limiter.Wait("https://www.liberation.fr/arc/outboundfeeds/rss-all/")
	elapsed := time.Since(start)

	if elapsed >= 50*time.Millisecond {
		t.Errorf("fetch to an unrelated host should not wait, blocked %v", elapsed)
	}
}

func TestWait_PartialIntervalElapsed(t *testing.T) {
	limiter := New(100 * time.Millisecond)

	limiter.Wait("www.mediapart.fr")
	time.Sleep(30 * time.Millisecond)

	start := time.Now()
	limiter.Wait("www.mediapart.fr")
	elapsed := time.Since(start)

	// Only the remaining ~70ms of the interval should be slept.
	if elapsed < 60*time.Millisecond || elapsed > 90*time.Millisecond {
		t.Errorf("expected a wait near the remaining interval, blocked %v", elapsed)
	}
}

func TestWait_BareHostnameSharesURLInterval(t *testing.T) {
	limiter := New(100 * time.Millisecond)

	limiter.Wait("https://www.francetvinfo.fr/titres.rss")
	start := time.Now()
	limiter.Wait("www.francetvinfo.fr")
	elapsed := time.Since(start)

	if elapsed < 80*time.Millisecond {
		t.Errorf("bare hostname should share the URL's interval, blocked only %v", elapsed)
	}
}

func TestWait_ZeroIntervalNeverBlocks(t *testing.T) {
	limiter := New(0)

	start := time.Now()
	for i := 0; i < 10; i++ {
		limiter.Wait("https://www.lemonde.fr/rss/une.xml")
	}
	if elapsed := time.Since(start); elapsed >= 50*time.Millisecond {
		t.Errorf("zero interval should never block, took %v", elapsed)
	}
}

func TestWait_ConcurrentFetchers(t *testing.T) {
	limiter := New(time.Millisecond)
	var wg sync.WaitGroup

	feeds := []string{
		"https://www.lemonde.fr/rss/une.xml",
		"https://www.liberation.fr/arc/outboundfeeds/rss-all/",
		"https://www.lefigaro.fr/rss/figaro_actualites.xml",
		"https://www.mediapart.fr/articles/feed",
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				limiter.Wait(feeds[(idx+j)%len(feeds)])
			}
		}(i)
	}
	wg.Wait()
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"https://www.lemonde.fr/rss/une.xml", "www.lemonde.fr"},
		{"http://feeds.example.com/path?x=1", "feeds.example.com"},
		{"www.liberation.fr", "www.liberation.fr"},
		{"not a url", "not a url"},
		{"://broken", "://broken"},
	}

	for _, tt := range tests {
		if got := hostOf(tt.target); got != tt.want {
			t.Errorf("hostOf(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}
