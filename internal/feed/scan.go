package feed

import (
	"html"
	"regexp"
	"strings"
	"time"

	"news_aggregator/internal/textutil"
)

var (
	itemRe    = regexp.MustCompile(`(?is)<(item|entry)(?:\s[^>]*)?>(.*?)</(?:item|entry)\s*>`)
	cdataRe   = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*?)\]\]>\s*$`)
	attrRe    = regexp.MustCompile(`(?i)([a-z:_-]+)\s*=\s*("([^"]*)"|'([^']*)')`)
	elemCache = map[string]*regexp.Regexp{}
	voidCache = map[string]*regexp.Regexp{}
)

func init() {
	for _, name := range []string{
		"title", "link", "guid", "id", "description", "summary", "content",
		"content:encoded", "pubDate", "published", "updated", "dc:date",
		"author", "dc:creator", "name", "category",
	} {
		elemCache[name] = regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(name) + `(?:\s[^>]*)?>(.*?)</` + regexp.QuoteMeta(name) + `\s*>`)
	}
	for _, name := range []string{"enclosure", "media:content", "media:thumbnail", "link", "category"} {
		voidCache[name] = regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(name) + `(\s[^>]*?)/?>`)
	}
}

// scan is the lenient fallback for payloads the XML decoder rejects:
// unescaped ampersands, stray markup, or items that were entity-escaped
// as a whole (&lt;item&gt;...).
func scan(body []byte) []Item {
	doc := string(body)
	if !containsFold(doc, "<item") && !containsFold(doc, "<entry") && containsFold(doc, "&lt;item") {
		doc = html.UnescapeString(doc)
	}

	matches := itemRe.FindAllStringSubmatch(doc, -1)
	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		block := m[2]
		item := Item{
			GUID:        elemText(block, "guid", "id"),
			Title:       textutil.StripHTML(elemText(block, "title")),
			Link:        scanLink(block),
			Description: elemText(block, "description", "summary", "content:encoded", "content"),
			Author:      textutil.StripHTML(elemText(block, "author", "dc:creator")),
			Published:   parseDate(elemText(block, "pubDate", "published", "dc:date", "updated")),
			Categories:  scanCategories(block),
		}
		item.ImageURL = scanImage(block, item.Description)
		items = append(items, item)
	}
	return items
}

func elemText(block string, names ...string) string {
	for _, name := range names {
		re := elemCache[name]
		if re == nil {
			continue
		}
		m := re.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		v := m[1]
		if c := cdataRe.FindStringSubmatch(v); c != nil {
			v = c[1]
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func voidAttrs(block, name string) []map[string]string {
	re := voidCache[name]
	if re == nil {
		return nil
	}
	var out []map[string]string
	for _, m := range re.FindAllStringSubmatch(block, -1) {
		attrs := map[string]string{}
		for _, a := range attrRe.FindAllStringSubmatch(m[1], -1) {
			val := a[3]
			if val == "" {
				val = a[4]
			}
			attrs[strings.ToLower(a[1])] = html.UnescapeString(val)
		}
		out = append(out, attrs)
	}
	return out
}

// scanLink prefers RSS <link>text</link>, then Atom <link href> with
// rel=alternate (or no rel), then the guid when it looks like a URL.
func scanLink(block string) string {
	if l := elemText(block, "link"); l != "" && !strings.Contains(l, "<") {
		return html.UnescapeString(l)
	}
	var fallback string
	for _, attrs := range voidAttrs(block, "link") {
		href := attrs["href"]
		if href == "" {
			continue
		}
		rel := attrs["rel"]
		if rel == "" || rel == "alternate" {
			return href
		}
		if fallback == "" {
			fallback = href
		}
	}
	if fallback != "" {
		return fallback
	}
	if g := elemText(block, "guid", "id"); strings.HasPrefix(g, "http") {
		return g
	}
	return ""
}

func scanImage(block, description string) string {
	for _, attrs := range voidAttrs(block, "enclosure") {
		if u := attrs["url"]; u != "" && isImageType(attrs["type"]) {
			return u
		}
	}
	for _, name := range []string{"media:content", "media:thumbnail"} {
		for _, attrs := range voidAttrs(block, name) {
			if u := attrs["url"]; u != "" && isImageMedium(attrs["medium"], attrs["type"]) {
				return u
			}
		}
	}
	return textutil.FirstImage(description)
}

func scanCategories(block string) []string {
	var out []string
	re := elemCache["category"]
	for _, m := range re.FindAllStringSubmatch(block, -1) {
		v := m[1]
		if c := cdataRe.FindStringSubmatch(v); c != nil {
			v = c[1]
		}
		if v = textutil.StripHTML(v); v != "" {
			out = append(out, v)
		}
	}
	for _, attrs := range voidAttrs(block, "category") {
		if term := attrs["term"]; term != "" {
			out = append(out, term)
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC3339Nano,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 02 Jan 2006 15:04 -0700",
	"02 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
