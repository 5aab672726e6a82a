// Package rss fetches RSS, Atom and JSON-wrapped feeds.
package rss

import (
	"context"
	"fmt"
	"time"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/feed"
	"news_aggregator/internal/fetch"
	"news_aggregator/internal/source"
)

// Adapter implements fetch.Adapter for feed URLs.
type Adapter struct {
	now func() time.Time
}

func New() *Adapter {
	return &Adapter{now: time.Now}
}

// Fetch downloads src.URL and maps its items to canonical articles.
func (a *Adapter) Fetch(ctx context.Context, src domain.SourceDescriptor, t fetch.Transport) ([]domain.Article, error) {
	return a.FetchURL(ctx, src, t, src.URL)
}

// FetchURL fetches a feed from an explicit URL on behalf of src.
func (a *Adapter) FetchURL(ctx context.Context, src domain.SourceDescriptor, t fetch.Transport, feedURL string) ([]domain.Article, error) {
	resp, err := t.Get(ctx, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return a.Parse(src, resp.Body)
}

// Parse maps a raw feed payload to canonical articles.
func (a *Adapter) Parse(src domain.SourceDescriptor, body []byte) ([]domain.Article, error) {
	items, err := feed.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrMalformed, err)
	}

	drafts := make([]source.Draft, 0, len(items))
	for _, it := range items {
		drafts = append(drafts, source.Draft{
			Title:       it.Title,
			Description: it.Description,
			URL:         it.Link,
			ImageURL:    it.ImageURL,
			Author:      it.Author,
			Published:   it.Published,
			Categories:  it.Categories,
		})
	}

	return source.Canonicalize(src, drafts, a.now()), nil
}
