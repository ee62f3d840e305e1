package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeClient_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(r.URL.Path, "/hop/%d", &n)
		if n == 0 {
			w.Write([]byte("landed"))
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/hop/%d", n-1), http.StatusFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewProbeClient(ClientOptions{Timeout: time.Second, MaxRedirects: 3})

	resp, err := client.Do(mustRequest(t, server.URL+"/hop/3"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = client.Do(mustRequest(t, server.URL+"/hop/4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 3 redirects")
}

func TestProbeClient_RedirectCapCountsHops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/landing" {
			w.Write([]byte("landed"))
			return
		}
		http.Redirect(w, r, "/landing", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewProbeClient(ClientOptions{Timeout: time.Second, MaxRedirects: 1}).Do(mustRequest(t, server.URL+"/start"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/landing", resp.Request.URL.Path)
}

func TestProbeClient_RejectsNonHTTPRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "ftp://files.example/catalog", http.StatusFound)
	}))
	defer server.Close()

	client := NewProbeClient(ClientOptions{Timeout: time.Second, MaxRedirects: 10})

	_, err := client.Do(mustRequest(t, server.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestProbeClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewProbeClient(ClientOptions{Timeout: 100 * time.Millisecond, MaxRedirects: 10})

	start := time.Now()
	_, err := client.Do(mustRequest(t, server.URL))
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func mustRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}
