package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shoplink-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type memoryCache struct {
	mu       sync.Mutex
	verdicts map[string]bool
	writes   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{verdicts: map[string]bool{}}
}

func (c *memoryCache) GetVerdict(_ context.Context, url string) (bool, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok, found := c.verdicts[url]
	return ok, found, nil
}

func (c *memoryCache) SetVerdict(_ context.Context, url string, ok bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts[url] = ok
	c.writes++
	return nil
}

func newRetailerServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<html>42 items found</html>"))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<html>No Results Found for your search</html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	})
	mux.HandleFunc("/blocked", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	mux.HandleFunc("/moved-empty", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, "/empty", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/long", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(strings.Repeat("a", 150000)))
		w.Write([]byte("no results found"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &hits
}

func newTestProber(t *testing.T, opts ProberOptions) *Prober {
	t.Helper()
	if opts.Timeout == 0 {
		opts.Timeout = 200 * time.Millisecond
	}
	opts.Logger = logger.NewTestLogger(t)
	return NewProber(opts)
}

// ==========================
// Probe Verdict Tests
// ==========================

func TestProber_ProbeCandidate(t *testing.T) {
	server, _ := newRetailerServer(t)
	prober := newTestProber(t, ProberOptions{})

	tests := []struct {
		name      string
		path      string
		surviving bool
		reason    Reason
		status    int
	}{
		{"results page", "/ok", true, ReasonOK, http.StatusOK},
		{"no results phrase with 200", "/empty", false, ReasonNoResults, http.StatusOK},
		{"not found", "/missing", false, ReasonHTTPError, http.StatusNotFound},
		{"bot block", "/blocked", false, ReasonHTTPError, http.StatusForbidden},
		{"timeout", "/slow", false, ReasonTimeout, 0},
		{"redirect to results", "/moved", true, ReasonOK, http.StatusOK},
		{"redirect to empty page", "/moved-empty", false, ReasonNoResults, http.StatusOK},
		{"redirect loop", "/loop", false, ReasonNetworkError, 0},
		{"phrase beyond read limit", "/long", true, ReasonOK, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := prober.ProbeCandidate(context.Background(), LinkCandidate{
				ItemIndex:   3,
				RetailerKey: "amazon",
				URL:         server.URL + tt.path,
			})

			assert.Equal(t, tt.surviving, out.Surviving)
			assert.Equal(t, tt.reason, out.Reason)
			assert.Equal(t, tt.status, out.StatusCode)
			assert.Equal(t, 3, out.ItemIndex)
			assert.Equal(t, "amazon", out.RetailerKey)
		})
	}
}

func TestProber_Probe(t *testing.T) {
	server, _ := newRetailerServer(t)
	prober := newTestProber(t, ProberOptions{})

	assert.True(t, prober.Probe(context.Background(), server.URL+"/ok", "asos"))
	assert.False(t, prober.Probe(context.Background(), server.URL+"/missing", "asos"))
	assert.False(t, prober.Probe(context.Background(), server.URL+"/empty", "asos"))
}

func TestProber_TimeoutIsBounded(t *testing.T) {
	server, _ := newRetailerServer(t)
	prober := newTestProber(t, ProberOptions{Timeout: 150 * time.Millisecond})

	start := time.Now()
	ok := prober.Probe(context.Background(), server.URL+"/slow", "amazon")

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProber_StopsReadingAtLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 2048)))
		w.(http.Flusher).Flush()
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
		w.Write([]byte("no results found"))
	}))
	defer server.Close()

	prober := newTestProber(t, ProberOptions{Timeout: 3 * time.Second, ReadLimit: 1024})

	start := time.Now()
	out := prober.ProbeCandidate(context.Background(), LinkCandidate{RetailerKey: "asos", URL: server.URL})

	assert.True(t, out.Surviving)
	assert.Equal(t, ReasonOK, out.Reason)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProber_SkipListMakesNoRequest(t *testing.T) {
	server, hits := newRetailerServer(t)
	prober := newTestProber(t, ProberOptions{})

	for _, retailer := range []string{"nordstrom", "zara"} {
		out := prober.ProbeCandidate(context.Background(), LinkCandidate{
			RetailerKey: retailer,
			URL:         server.URL + "/missing",
		})
		assert.True(t, out.Surviving)
		assert.Equal(t, ReasonSkipped, out.Reason)
	}

	assert.True(t, prober.Probe(context.Background(), "not even a url", "zara"))
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestProber_EmptySkipListProbesEverything(t *testing.T) {
	server, hits := newRetailerServer(t)
	prober := newTestProber(t, ProberOptions{SkipRetailers: []string{}})

	assert.False(t, prober.Probe(context.Background(), server.URL+"/missing", "zara"))
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestProber_SendsBrowserHeaders(t *testing.T) {
	headers := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	prober := newTestProber(t, ProberOptions{UserAgent: "test-agent/1.0", AcceptLanguage: "en-GB"})
	require.True(t, prober.Probe(context.Background(), server.URL, "asos"))

	got := <-headers
	assert.Equal(t, "test-agent/1.0", got.Get("User-Agent"))
	assert.Equal(t, "en-GB", got.Get("Accept-Language"))
}

func TestProber_NetworkFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := server.URL
	server.Close()

	prober := newTestProber(t, ProberOptions{})

	out := prober.ProbeCandidate(context.Background(), LinkCandidate{RetailerKey: "amazon", URL: closedURL})
	assert.False(t, out.Surviving)
	assert.Equal(t, ReasonNetworkError, out.Reason)

	for _, raw := range []string{"", "ftp://example.com/search", "://broken", "/relative/path"} {
		out = prober.ProbeCandidate(context.Background(), LinkCandidate{RetailerKey: "amazon", URL: raw})
		assert.False(t, out.Surviving, raw)
		assert.Equal(t, ReasonInvalidURL, out.Reason, raw)
	}
}

func TestProber_CustomPhrases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>Nothing Matched Your Query</p>"))
	}))
	defer server.Close()

	prober := newTestProber(t, ProberOptions{Matcher: NewMatcher([]string{"nothing matched"})})
	assert.False(t, prober.Probe(context.Background(), server.URL, "asos"))
}

// ==========================
// Verdict Cache Tests
// ==========================

func TestProber_UsesVerdictCache(t *testing.T) {
	server, hits := newRetailerServer(t)
	cache := newMemoryCache()
	prober := newTestProber(t, ProberOptions{Cache: cache})
	url := server.URL + "/empty"

	first := prober.ProbeCandidate(context.Background(), LinkCandidate{RetailerKey: "asos", URL: url})
	second := prober.ProbeCandidate(context.Background(), LinkCandidate{RetailerKey: "asos", URL: url})

	assert.Equal(t, ReasonNoResults, first.Reason)
	assert.Equal(t, ReasonCached, second.Reason)
	assert.False(t, second.Surviving)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestProber_TransientFailuresAreNotCached(t *testing.T) {
	server, _ := newRetailerServer(t)
	cache := newMemoryCache()
	prober := newTestProber(t, ProberOptions{Cache: cache, Timeout: 100 * time.Millisecond})

	assert.False(t, prober.Probe(context.Background(), server.URL+"/slow", "amazon"))
	assert.False(t, prober.Probe(context.Background(), server.URL+"/slow", "amazon"))
	assert.Equal(t, 0, cache.writes)
}

func TestProber_SkipListBypassesCache(t *testing.T) {
	cache := newMemoryCache()
	cache.verdicts["https://www.zara.com/us/en/search?searchTerm=coat"] = false
	prober := newTestProber(t, ProberOptions{Cache: cache})

	assert.True(t, prober.Probe(context.Background(), "https://www.zara.com/us/en/search?searchTerm=coat", "zara"))
	assert.Equal(t, 0, cache.writes)
}
