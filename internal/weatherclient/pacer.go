package weatherclient

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// hostPacer enforces a minimum spacing between requests to the same host.
// Different hosts proceed independently, so a cycle over many providers
// no longer serializes on a global sleep, but each individual provider
// still sees at most one request per interval.
type hostPacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     map[string]time.Time
}

func newHostPacer(interval time.Duration) *hostPacer {
	return &hostPacer{
		interval: interval,
		next:     make(map[string]time.Time),
	}
}

// wait blocks until the host's next slot. The slot is reserved before
// sleeping so concurrent callers queue rather than stampede.
func (p *hostPacer) wait(ctx context.Context, rawURL string, nowFn func() time.Time, sleepFn func(context.Context, time.Duration) error) error {
	if p.interval <= 0 {
		return nil
	}

	host := hostOf(rawURL)

	p.mu.Lock()
	now := nowFn()
	slot := p.next[host]
	if slot.Before(now) {
		slot = now
	}
	p.next[host] = slot.Add(p.interval)
	p.mu.Unlock()

	if d := slot.Sub(now); d > 0 {
		return sleepFn(ctx, d)
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
