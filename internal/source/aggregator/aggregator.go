// Package aggregator builds topic feed URLs for news aggregators and reads
// them through the rss adapter.
package aggregator

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/fetch"
	"news_aggregator/internal/source/rss"
)

const DefaultBaseURL = "https://news.google.com/rss"

var topics = map[domain.Category]string{
	domain.CategoryWorld:         "WORLD",
	domain.CategoryTechnology:    "TECHNOLOGY",
	domain.CategoryBusiness:      "BUSINESS",
	domain.CategoryScience:       "SCIENCE",
	domain.CategoryHealth:        "HEALTH",
	domain.CategorySports:        "SPORTS",
	domain.CategoryEntertainment: "ENTERTAINMENT",
}

// Adapter implements fetch.Adapter for aggregator topic feeds.
type Adapter struct {
	rss *rss.Adapter
}

func New(rssAdapter *rss.Adapter) *Adapter {
	return &Adapter{rss: rssAdapter}
}

func (a *Adapter) Fetch(ctx context.Context, src domain.SourceDescriptor, t fetch.Transport) ([]domain.Article, error) {
	feedURL, err := TopicURL(src)
	if err != nil {
		return nil, err
	}
	return a.rss.FetchURL(ctx, src, t, feedURL)
}

// Topic returns the upstream topic code for a category. General maps to
// top stories and has no code.
func Topic(c domain.Category) (string, bool) {
	code, ok := topics[c]
	return code, ok
}

// TopicURL builds the feed URL for src's category, language and country.
func TopicURL(src domain.SourceDescriptor) (string, error) {
	base := src.URL
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimRight(base, "/")

	category := domain.ParseCategory(src.Param("category", string(src.Category)))
	if code, ok := Topic(category); ok {
		base += "/headlines/section/topic/" + code
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	lang := src.Param("language", "en")
	country := strings.ToUpper(src.Param("country", "US"))

	q := u.Query()
	q.Set("hl", lang+"-"+country)
	q.Set("gl", country)
	q.Set("ceid", country+":"+lang)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
