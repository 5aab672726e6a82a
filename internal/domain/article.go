package domain

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryWorld         Category = "world"
	CategoryTechnology    Category = "technology"
	CategoryBusiness      Category = "business"
	CategoryScience       Category = "science"
	CategoryHealth        Category = "health"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryGeneral       Category = "general"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryWorld,
	CategoryTechnology,
	CategoryBusiness,
	CategoryScience,
	CategoryHealth,
	CategorySports,
	CategoryEntertainment,
	CategoryGeneral,
}

// ParseCategory maps free-form category names onto a known category,
// falling back to general.
func ParseCategory(s string) Category {
	if c, ok := LookupCategory(s); ok {
		return c
	}
	return CategoryGeneral
}

// LookupCategory reports whether s names a known category, ignoring case
// and surrounding space.
func LookupCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// PlaceholderPrefix marks synthetic articles injected when every source fails.
const PlaceholderPrefix = "placeholder-"

// Article is the canonical shape every fetch adapter produces.
type Article struct {
	ID           string    `json:"id" db:"id"`
	SourceID     string    `json:"sourceId" db:"source_id"`
	SourceName   string    `json:"sourceName" db:"source_name"`
	Category     Category  `json:"category" db:"category"`
	Title        string    `json:"title" db:"title"`
	Excerpt      string    `json:"excerpt" db:"excerpt"`
	CanonicalURL string    `json:"canonicalUrl" db:"canonical_url"`
	ImageURL     string    `json:"imageUrl,omitempty" db:"image_url"`
	Author       string    `json:"author,omitempty" db:"author"`
	PublishedAt  time.Time `json:"publishedAt" db:"published_at"`
	ImportedAt   time.Time `json:"importedAt" db:"imported_at"`
	Status       Status    `json:"status" db:"status"`
	ViewCount    int64     `json:"viewCount" db:"view_count"`
	Featured     bool      `json:"featured" db:"featured"`
	Breaking     bool      `json:"breaking" db:"breaking"`
	Trending     bool      `json:"trending" db:"trending"`
	Tags         []string  `json:"tags" db:"-"`
}

// NewArticleID composes an id that stays unique across concurrent batches.
func NewArticleID(sourceID string, batch time.Time, ordinal int) string {
	return fmt.Sprintf("%s-%d-%d", sourceID, batch.UnixMilli(), ordinal)
}

// IsPlaceholder reports whether the article was synthesized locally.
func (a *Article) IsPlaceholder() bool {
	return strings.HasPrefix(a.ID, PlaceholderPrefix)
}

// HasTag reports whether the article carries tag (case-insensitive).
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the tag slice.
func (a Article) Clone() Article {
	if a.Tags != nil {
		tags := make([]string, len(a.Tags))
		copy(tags, a.Tags)
		a.Tags = tags
	}
	return a
}
