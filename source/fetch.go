package source

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

const defaultUserAgent = "techscout/1.0"

// Fetcher issues outbound GETs and spaces consecutive requests to the same
// source with a politeness delay.
type Fetcher struct {
	client    *http.Client
	userAgent string
	minDelay  time.Duration
	maxDelay  time.Duration
}

// NewFetcher builds a fetcher whose Delay sleeps a random duration in
// [minDelay, maxDelay]. Equal bounds give a fixed delay.
func NewFetcher(client *http.Client, minDelay, maxDelay time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Fetcher{
		client:    client,
		userAgent: defaultUserAgent,
		minDelay:  minDelay,
		maxDelay:  maxDelay,
	}
}

// NewHTTPClient builds the shared outbound client, tunneled through a
// SOCKS5 proxy when proxyURL is set.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	if proxyURL == "" {
		return &http.Client{Timeout: timeout}, nil
	}

	dialer, err := proxy.SOCKS5("tcp", proxyURL, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy dialer: %w", err)
	}
	dialContext := func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}
	transport := &http.Transport{DialContext: dialContext}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// Get fetches rawURL and returns the response body. The request carries the
// context, so cancellation settles an in-flight call promptly.
func (f *Fetcher) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// Delay sleeps the politeness interval. A pending delay resolves early with
// the context's error when the run is cancelled.
func (f *Fetcher) Delay(ctx context.Context) error {
	d := f.minDelay
	if f.maxDelay > f.minDelay {
		d += time.Duration(rand.Int63n(int64(f.maxDelay - f.minDelay)))
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
