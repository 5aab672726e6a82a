package source

import (
	"strings"
	"time"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/textutil"
)

// Draft is an adapter's item after decoding, before canonicalization.
type Draft struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Author      string
	Published   time.Time
	Category    string
	Categories  []string
}

// Canonicalize maps drafts onto canonical articles for src. Drafts without
// a URL or title are dropped; missing publish times fall back to now.
// IDs are left empty for the orchestrator to assign.
func Canonicalize(src domain.SourceDescriptor, drafts []Draft, now time.Time) []domain.Article {
	articles := make([]domain.Article, 0, len(drafts))

	for _, d := range drafts {
		link := strings.TrimSpace(d.URL)
		title := textutil.StripHTML(d.Title)
		if link == "" || title == "" {
			continue
		}

		published := d.Published
		if published.IsZero() {
			published = now
		}

		category := src.Category
		if category == "" || category == domain.CategoryGeneral {
			if d.Category != "" {
				category = domain.ParseCategory(d.Category)
			} else {
				category = domain.CategoryGeneral
			}
		}

		articles = append(articles, domain.Article{
			SourceID:     src.ID,
			SourceName:   src.Name,
			Category:     category,
			Title:        title,
			Excerpt:      textutil.Excerpt(d.Description),
			CanonicalURL: link,
			ImageURL:     strings.TrimSpace(d.ImageURL),
			Author:       textutil.StripHTML(d.Author),
			PublishedAt:  published.UTC(),
			Status:       domain.StatusPublished,
			Tags:         textutil.MergeTags(textutil.MaxTags, d.Categories, textutil.Keywords(title, textutil.MaxTags)),
		})
	}

	return articles
}
