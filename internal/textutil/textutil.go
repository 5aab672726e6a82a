// Package textutil normalizes the free-form text found in upstream feeds:
// HTML stripping, excerpt truncation, dedup keys and keyword tags.
package textutil

import (
	"html"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const (
	ExcerptLength = 200
	Ellipsis      = "..."
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// StripHTML removes tags and decodes entities, returning collapsed plain text.
// Feeds that double-escape markup (&lt;p&gt;) are decoded before stripping.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "&lt;") {
		s = html.UnescapeString(s)
	}
	if strings.ContainsAny(s, "<>") {
		s = policy().Sanitize(s)
	}
	// bluemonday re-escapes entities; decode for plain-text consumers.
	s = html.UnescapeString(s)
	return CollapseSpace(s)
}

// CollapseSpace trims s and folds every whitespace run into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to limit runes and appends Ellipsis when it had to cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	rs := []rune(s)
	return strings.TrimRightFunc(string(rs[:limit]), unicode.IsSpace) + Ellipsis
}

// Excerpt strips HTML and truncates to ExcerptLength.
func Excerpt(s string) string {
	return Truncate(StripHTML(s), ExcerptLength)
}

// NormalizeURL is the catalog dedup key: case-folded with all whitespace removed.
func NormalizeURL(u string) string {
	return strings.ToLower(strings.Join(strings.Fields(u), ""))
}

// NormalizeTitle lowercases, drops punctuation and collapses whitespace so
// syndicated copies of a story compare byte-identical.
func NormalizeTitle(t string) string {
	var b strings.Builder
	b.Grow(len(t))
	space := false
	for _, r := range strings.ToLower(StripHTML(t)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			space = true
		}
	}
	return b.String()
}

// FirstImage returns the src of the first <img> inside an HTML fragment.
func FirstImage(fragment string) string {
	if !strings.Contains(fragment, "<img") && !strings.Contains(fragment, "&lt;img") {
		return ""
	}
	if !strings.Contains(fragment, "<img") {
		fragment = html.UnescapeString(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
