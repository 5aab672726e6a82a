// Package headline fetches top-headline style JSON APIs.
package headline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/fetch"
	"news_aggregator/internal/source"
)

const (
	statusError     = "error"
	codeRateLimited = "rateLimited"
	defaultPageSize = "50"
)

// Adapter implements fetch.Adapter for headline APIs.
type Adapter struct {
	now func() time.Time
}

func New() *Adapter {
	return &Adapter{now: time.Now}
}

func (a *Adapter) Fetch(ctx context.Context, src domain.SourceDescriptor, t fetch.Transport) ([]domain.Article, error) {
	reqURL, err := buildURL(src)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	if src.APIKey != "" {
		header.Set("X-Api-Key", src.APIKey)
	}

	resp, err := t.Get(ctx, reqURL, header)
	if err != nil {
		return nil, fmt.Errorf("get headlines: %w", err)
	}

	var env Response
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", fetch.ErrMalformed, err)
	}
	if env.Status == statusError {
		if env.Code == codeRateLimited {
			return nil, fmt.Errorf("%w: %s", fetch.ErrRateLimited, env.Message)
		}
		return nil, fmt.Errorf("%w: api error %s: %s", fetch.ErrRejected, env.Code, env.Message)
	}

	return source.Canonicalize(src, a.drafts(env.Articles), a.now()), nil
}

func buildURL(src domain.SourceDescriptor) (string, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	for _, key := range []string{"category", "country", "language", "sources"} {
		if v := src.Param(key, ""); v != "" {
			q.Set(key, v)
		}
	}
	if v := src.Param("query", src.Param("q", "")); v != "" {
		q.Set("q", v)
	}
	q.Set("pageSize", src.Param("page_size", defaultPageSize))
	if src.APIKey != "" {
		q.Set("apiKey", src.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *Adapter) drafts(items []Article) []source.Draft {
	drafts := make([]source.Draft, 0, len(items))
	for _, it := range items {
		// removed stories come back as placeholders
		if it.Title == "[Removed]" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, it.PublishedAt)
		drafts = append(drafts, source.Draft{
			Title:       it.Title,
			Description: firstNonEmpty(it.Description, it.Content),
			URL:         it.URL,
			ImageURL:    deref(it.URLToImage),
			Author:      deref(it.Author),
			Published:   published,
		})
	}
	return drafts
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
