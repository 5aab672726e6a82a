// Package structured fetches paginated JSON news APIs with rich item metadata.
package structured

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/fetch"
	"news_aggregator/internal/source"
)

const (
	defaultLimit    = 25
	defaultMaxPages = 1
)

var rateLimitCodes = map[string]bool{
	"rate_limit_reached":  true,
	"usage_limit_reached": true,
}

// Adapter implements fetch.Adapter for structured APIs.
type Adapter struct {
	now    func() time.Time
	logger *slog.Logger
}

func New(logger *slog.Logger) *Adapter {
	return &Adapter{
		now:    time.Now,
		logger: logger.With("adapter", string(domain.ProtocolStructuredAPI)),
	}
}

// Fetch walks up to params.max_pages pages. A failure after the first page
// keeps what was already collected.
func (a *Adapter) Fetch(ctx context.Context, src domain.SourceDescriptor, t fetch.Transport) ([]domain.Article, error) {
	maxPages := intParam(src, "max_pages", defaultMaxPages)
	limit := intParam(src, "limit", defaultLimit)

	var all []Item
	for page := 1; page <= maxPages; page++ {
		resp, err := a.fetchPage(ctx, src, t, page, limit)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			a.logger.Warn("stopping pagination early",
				"source", src.ID,
				"page", page,
				"error", err,
			)
			break
		}

		all = append(all, resp.Data...)

		a.logger.Debug("fetched page",
			"source", src.ID,
			"page", page,
			"articles", len(resp.Data),
			"total", len(all),
		)

		if resp.Meta.Returned == 0 || page*max(resp.Meta.Limit, 1) >= resp.Meta.Found {
			break
		}
	}

	return source.Canonicalize(src, drafts(all), a.now()), nil
}

func (a *Adapter) fetchPage(ctx context.Context, src domain.SourceDescriptor, t fetch.Transport, page, limit int) (*Response, error) {
	reqURL, err := buildURL(src, page, limit)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Accept", "application/json")

	resp, err := t.Get(ctx, reqURL, header)
	if err != nil {
		return nil, fmt.Errorf("get page %d: %w", page, err)
	}

	var env Response
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode page %d: %v", fetch.ErrMalformed, page, err)
	}
	if env.Error != nil {
		if rateLimitCodes[env.Error.Code] {
			return nil, fmt.Errorf("%w: %s", fetch.ErrRateLimited, env.Error.Message)
		}
		return nil, fmt.Errorf("%w: api error %s: %s", fetch.ErrRejected, env.Error.Code, env.Error.Message)
	}

	return &env, nil
}

func buildURL(src domain.SourceDescriptor, page, limit int) (string, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	for _, key := range []string{"language", "locale", "categories"} {
		if v := src.Param(key, ""); v != "" {
			q.Set(key, v)
		}
	}
	if v := src.Param("query", src.Param("search", "")); v != "" {
		q.Set("search", v)
	}
	if src.APIKey != "" {
		q.Set("api_token", src.APIKey)
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func drafts(items []Item) []source.Draft {
	out := make([]source.Draft, 0, len(items))
	for _, it := range items {
		published, _ := time.Parse(time.RFC3339, it.PublishedAt)

		description := it.Description
		if description == "" {
			description = it.Snippet
		}

		var category string
		if len(it.Categories) > 0 {
			category = it.Categories[0]
		}

		var tags []string
		for _, k := range strings.Split(it.Keywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				tags = append(tags, k)
			}
		}

		out = append(out, source.Draft{
			Title:       it.Title,
			Description: description,
			URL:         it.URL,
			ImageURL:    it.ImageURL,
			Published:   published,
			Category:    category,
			Categories:  tags,
		})
	}
	return out
}

func intParam(src domain.SourceDescriptor, key string, def int) int {
	n, err := strconv.Atoi(src.Param(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
