// Package fetch holds the outbound HTTP transports, the failure taxonomy
// and the resilience wrapper every source fetch goes through.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultUserAgent mimics a desktop browser; many feeds reject bare clients.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	maxBodyBytes = 8 << 20
)

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs GET requests for adapters.
type Transport interface {
	Name() string
	Get(ctx context.Context, rawURL string, header http.Header) (*Response, error)
}

// HTTPTransport is the direct network path.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
	limiter   *HostLimiter
}

// NewHTTPTransport builds the direct transport. Per-request deadlines come
// from the context; the client timeout is only a backstop.
func NewHTTPTransport(userAgent string, limiter *HostLimiter) *HTTPTransport {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
	}
	return &HTTPTransport{
		client:    &http.Client{Transport: transport, Timeout: 60 * time.Second},
		userAgent: userAgent,
		limiter:   limiter,
	}
}

func (t *HTTPTransport) Name() string { return "direct" }

func (t *HTTPTransport) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	if err := t.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("wait for host slot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", t.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, application/json, text/xml;q=0.9, */*;q=0.8")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(ue.URL)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, redact(rawURL))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: redact(rawURL)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// ProxyTransport re-fetches a URL through a public re-fetch service that
// returns the same content by a different path, e.g.
// "https://api.allorigins.win/raw?url=".
type ProxyTransport struct {
	base  string
	inner Transport
}

func NewProxyTransport(base string, inner Transport) *ProxyTransport {
	return &ProxyTransport{base: base, inner: inner}
}

func (p *ProxyTransport) Name() string { return "proxy" }

func (p *ProxyTransport) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	return p.inner.Get(ctx, p.base+url.QueryEscape(rawURL), header)
}

// redact drops credentials carried in query strings before URLs reach logs
// or recorded errors. A target wrapped in a proxy "url" parameter is
// redacted too.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for key := range q {
		switch strings.ToLower(key) {
		case "apikey", "api_key", "api_token", "token", "key":
			q.Set(key, "REDACTED")
			changed = true
		case "url":
			if inner := q.Get(key); inner != "" {
				if r := redact(inner); r != inner {
					q.Set(key, r)
					changed = true
				}
			}
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
