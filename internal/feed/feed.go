// Package feed turns raw RSS/Atom payloads into wire-neutral items.
//
// Parsing runs in a fixed fallback order: JSON-wrapped feeds (proxies that
// re-encode RSS as JSON), then gofeed for well-formed XML, then a lenient
// scanner for malformed documents gofeed rejects.
package feed

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"news_aggregator/internal/textutil"
)

// ErrUnrecognized is returned when a payload is neither XML nor a JSON feed.
var ErrUnrecognized = errors.New("unrecognized feed payload")

// Item is one parsed feed entry before it is mapped to a canonical article.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Author      string
	Published   time.Time
	ImageURL    string
	Categories  []string
}

// Parse detects the payload shape and returns the items it contains.
// A well-formed feed with no entries yields an empty slice and nil error.
func Parse(body []byte) ([]Item, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnrecognized
	}
	if trimmed[0] == '{' {
		return parseJSON(trimmed)
	}

	items, gerr := parseGofeed(trimmed)
	if gerr == nil && len(items) > 0 {
		return items, nil
	}

	lenient := scan(trimmed)
	if len(lenient) > 0 {
		return lenient, nil
	}
	if gerr != nil {
		return nil, fmt.Errorf("parse xml: %w", gerr)
	}
	return items, nil
}

func parseGofeed(body []byte) ([]Item, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		item := Item{
			GUID:        strings.TrimSpace(it.GUID),
			Title:       textutil.StripHTML(it.Title),
			Link:        strings.TrimSpace(it.Link),
			Description: firstNonEmpty(it.Description, it.Content),
			Published:   pickTime(it.PublishedParsed, it.UpdatedParsed),
			ImageURL:    gofeedImage(it),
			Categories:  it.Categories,
		}
		if item.Link == "" && len(it.Links) > 0 {
			item.Link = strings.TrimSpace(it.Links[0])
		}
		if it.Author != nil {
			item.Author = firstNonEmpty(it.Author.Name, it.Author.Email)
		}
		items = append(items, item)
	}
	return items, nil
}

// gofeedImage applies the image fallback order:
// enclosure, media:content, media:thumbnail, item image, first <img> in the body.
func gofeedImage(it *gofeed.Item) string {
	for _, enc := range it.Enclosures {
		if enc != nil && enc.URL != "" && isImageType(enc.Type) {
			return strings.TrimSpace(enc.URL)
		}
	}
	if media, ok := it.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, ext := range media[name] {
				if u := ext.Attrs["url"]; u != "" && isImageMedium(ext.Attrs["medium"], ext.Attrs["type"]) {
					return strings.TrimSpace(u)
				}
			}
			// media:group wraps media:content in some feeds
			for _, group := range media["group"] {
				for _, ext := range group.Children[name] {
					if u := ext.Attrs["url"]; u != "" && isImageMedium(ext.Attrs["medium"], ext.Attrs["type"]) {
						return strings.TrimSpace(u)
					}
				}
			}
		}
	}
	if it.Image != nil && it.Image.URL != "" {
		return strings.TrimSpace(it.Image.URL)
	}
	if src := textutil.FirstImage(it.Description); src != "" {
		return src
	}
	return textutil.FirstImage(it.Content)
}

func isImageType(t string) bool {
	t = strings.ToLower(strings.TrimSpace(t))
	return t == "" || strings.HasPrefix(t, "image/")
}

func isImageMedium(medium, typ string) bool {
	medium = strings.ToLower(medium)
	if medium != "" {
		return medium == "image"
	}
	return isImageType(typ)
}

func pickTime(ts ...*time.Time) time.Time {
	for _, t := range ts {
		if t != nil && !t.IsZero() {
			return t.UTC()
		}
	}
	return time.Time{}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
