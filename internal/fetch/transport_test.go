package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news_aggregator/internal/fetch"
)

func TestHTTPTransport_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fetch.DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Write([]byte("<rss></rss>"))
	}))
	defer srv.Close()

	tr := fetch.NewHTTPTransport("", nil)
	resp, err := tr.Get(context.Background(), srv.URL, http.Header{"X-Api-Key": []string{"secret"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<rss></rss>", string(resp.Body))
}

func TestHTTPTransport_StatusClassification(t *testing.T) {
	code := http.StatusTooManyRequests
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}))
	defer srv.Close()

	tr := fetch.NewHTTPTransport("", nil)

	_, err := tr.Get(context.Background(), srv.URL+"?apiKey=secret", nil)
	require.Error(t, err)
	assert.True(t, fetch.IsRateLimited(err))
	assert.NotContains(t, err.Error(), "secret")

	code = http.StatusServiceUnavailable
	_, err = tr.Get(context.Background(), srv.URL, nil)
	var se *fetch.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.False(t, fetch.IsNetworkFailure(err))
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	tr := fetch.NewHTTPTransport("", nil)
	_, err := tr.Get(context.Background(), addr, nil)
	require.Error(t, err)
	assert.True(t, fetch.IsNetworkFailure(err))
}

func TestHTTPTransport_NetworkErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	tr := fetch.NewHTTPTransport("", nil)
	_, err := tr.Get(context.Background(), addr+"/v2/top-headlines?apiKey=SECRETKEY123&pageSize=50", nil)
	require.Error(t, err)
	assert.True(t, fetch.IsNetworkFailure(err))
	assert.NotContains(t, err.Error(), "SECRETKEY123")
	assert.Contains(t, err.Error(), "pageSize=50")

	_, err = tr.Get(context.Background(), addr+"/v1/news/top?api_token=SECRETKEY123", nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
}

func TestProxyTransport_NetworkErrorHidesWrappedKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	proxy := fetch.NewProxyTransport(addr+"/raw?url=", fetch.NewHTTPTransport("", nil))
	_, err := proxy.Get(context.Background(), "http://origin.test/feed?apiKey=SECRETKEY123", nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
}

func TestProxyTransport_WrapsTarget(t *testing.T) {
	var gotTarget string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTarget = r.URL.Query().Get("url")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	proxy := fetch.NewProxyTransport(srv.URL+"/raw?url=", fetch.NewHTTPTransport("", nil))
	resp, err := proxy.Get(context.Background(), "http://origin.test/feed?a=1&b=2", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, "http://origin.test/feed?a=1&b=2", gotTarget)
	assert.Equal(t, "proxy", proxy.Name())
}

func TestHostLimiter_SpacesRequests(t *testing.T) {
	limiter := fetch.NewHostLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx, "http://same.test/x"))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

	start = time.Now()
	require.NoError(t, limiter.Wait(ctx, "http://other.test/x"))
	assert.Less(t, time.Since(start), 40*time.Millisecond)
}
