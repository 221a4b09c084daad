package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Engineering Blog</title>
  <item>
    <title>Go concurrency patterns revisited</title>
    <link>https://blog.example.com/go-concurrency</link>
    <description>Channels, worker pools and cancellation.</description>
    <pubDate>Mon, 02 Jan 2023 15:04:05 GMT</pubDate>
  </item>
  <item>
    <title>Concurrency in other languages</title>
    <link>https://blog.example.com/other</link>
    <description>Nothing about our favorite language here.</description>
    <pubDate>Tue, 03 Jan 2023 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Go releases</title>
    <link>https://blog.example.com/releases</link>
    <description>Release notes only.</description>
  </item>
</channel>
</rss>`

func TestRSSDiscoverFiltersByAllTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	r := NewRSS([]string{srv.URL}, NewFetcher(srv.Client(), 0, 0), zap.NewNop())
	items, err := r.Discover(context.Background(), []string{"Go", "concurrency"}, 10)
	require.NoError(t, err)

	// only the entry matching BOTH tokens survives
	require.Len(t, items, 1)
	assert.Equal(t, "https://blog.example.com/go-concurrency", items[0].URL)
	assert.Equal(t, rssID, items[0].SourceID)
	assert.Equal(t, 1, items[0].Rank)
}

func TestRSSDiscoverSkipsDeadFeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dead.Close()

	r := NewRSS([]string{dead.URL, srv.URL}, NewFetcher(srv.Client(), 0, 0), zap.NewNop())
	items, err := r.Discover(context.Background(), []string{"go"}, 10)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRSSEnrichProjectsFeedDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	r := NewRSS([]string{srv.URL}, NewFetcher(srv.Client(), 0, 0), zap.NewNop())
	items, err := r.Discover(context.Background(), []string{"go"}, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	enriched, err := r.Enrich(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, enriched, 2)

	require.NotNil(t, enriched[0].PublishedAt)
	assert.Equal(t, 2023, enriched[0].PublishedAt.Year())
	assert.Nil(t, enriched[0].LikeCount)
	assert.Nil(t, enriched[0].ViewCount)

	// entry without a pubDate stays unknown
	assert.Nil(t, enriched[1].PublishedAt)
}

func TestRSSEnrichFailsOnCancelledContext(t *testing.T) {
	r := NewRSS(nil, NewFetcher(nil, 0, 0), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Enrich(ctx, []Item{{URL: "u", SourceID: rssID}})
	require.Error(t, err)
	assert.True(t, IsAborted(err))
}
