package source

import (
	"net/http"
	"sync"
	"time"
)

// HTTPClient is an interface matching the Do method of *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ThrottledClient spaces every request sent through it at least interval
// apart, whatever the host. The GitHub API rate-limits unauthenticated
// clients aggressively.
type ThrottledClient struct {
	underlying  HTTPClient
	interval    time.Duration
	lastRequest time.Time
	mu          sync.Mutex
}

// NewThrottledClient wraps underlying with a minimum request interval.
func NewThrottledClient(underlying HTTPClient, interval time.Duration) *ThrottledClient {
	return &ThrottledClient{
		underlying: underlying,
		interval:   interval,
	}
}

// Do waits for the interval to elapse since the previous request, then sends req.
func (client *ThrottledClient) Do(req *http.Request) (*http.Response, error) {
	client.mu.Lock()
	if !client.lastRequest.IsZero() {
		if wait := client.interval - time.Since(client.lastRequest); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				client.mu.Unlock()
				return nil, req.Context().Err()
			}
		}
	}
	client.lastRequest = time.Now()
	client.mu.Unlock()

	return client.underlying.Do(req)
}
