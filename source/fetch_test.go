package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 0, 0)
	body, err := f.Get(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer secret"})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestFetcherGetNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 0, 0)
	_, err := f.Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFetcherGetCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	f := NewFetcher(srv.Client(), 0, 0)
	start := time.Now()
	_, err := f.Get(ctx, srv.URL, nil)
	require.Error(t, err)
	assert.True(t, IsAborted(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDelayResolvesEarlyOnCancel(t *testing.T) {
	f := NewFetcher(nil, 5*time.Second, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := f.Delay(ctx)
	require.Error(t, err)
	assert.True(t, IsAborted(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestDelayStaysWithinBounds(t *testing.T) {
	f := NewFetcher(nil, time.Millisecond, 5*time.Millisecond)

	start := time.Now()
	require.NoError(t, f.Delay(context.Background()))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestNewHTTPClientWithoutProxy(t *testing.T) {
	client, err := NewHTTPClient("", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)
}
