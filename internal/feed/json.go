package feed

import (
	"encoding/json"
	"fmt"
	"strings"

	"news_aggregator/internal/textutil"
)

// jsonEnvelope is the shape RSS-to-JSON proxies return.
type jsonEnvelope struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Items   []jsonItem `json:"items"`
}

type jsonItem struct {
	Title       string        `json:"title"`
	PubDate     string        `json:"pubDate"`
	Link        string        `json:"link"`
	GUID        string        `json:"guid"`
	Author      string        `json:"author"`
	Thumbnail   string        `json:"thumbnail"`
	Description string        `json:"description"`
	Content     string        `json:"content"`
	Enclosure   jsonEnclosure `json:"enclosure"`
	Categories  []string      `json:"categories"`
}

// jsonEnclosure decodes both the object form and the empty array some
// proxies emit when an item has no enclosure.
type jsonEnclosure struct {
	Link      string `json:"link"`
	Type      string `json:"type"`
	Thumbnail string `json:"thumbnail"`
}

func (e *jsonEnclosure) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		return nil
	}
	type plain jsonEnclosure
	return json.Unmarshal(b, (*plain)(e))
}

func parseJSON(body []byte) ([]Item, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode json feed: %w", err)
	}
	if strings.EqualFold(env.Status, "error") {
		return nil, fmt.Errorf("%w: json feed error: %s", ErrUnrecognized, env.Message)
	}
	if env.Items == nil {
		return nil, fmt.Errorf("%w: json payload has no items field", ErrUnrecognized)
	}

	items := make([]Item, 0, len(env.Items))
	for _, it := range env.Items {
		item := Item{
			GUID:        strings.TrimSpace(it.GUID),
			Title:       textutil.StripHTML(it.Title),
			Link:        strings.TrimSpace(it.Link),
			Description: firstNonEmpty(it.Description, it.Content),
			Author:      strings.TrimSpace(it.Author),
			Published:   parseDate(it.PubDate),
			Categories:  it.Categories,
		}
		switch {
		case it.Enclosure.Link != "" && isImageType(it.Enclosure.Type):
			item.ImageURL = it.Enclosure.Link
		case it.Enclosure.Thumbnail != "":
			item.ImageURL = it.Enclosure.Thumbnail
		case it.Thumbnail != "":
			item.ImageURL = it.Thumbnail
		default:
			item.ImageURL = textutil.FirstImage(item.Description)
		}
		items = append(items, item)
	}
	return items, nil
}
