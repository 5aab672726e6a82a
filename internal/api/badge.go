package api

import (
	"time"

	"news_aggregator/internal/domain"
)

type Freshness string

const (
	FreshnessVeryRecent Freshness = "very_recent"
	FreshnessRecent     Freshness = "recent"
	FreshnessToday      Freshness = "today"
	FreshnessOlder      Freshness = "older"
)

// Badges holds the age thresholds for each freshness level.
type Badges struct {
	VeryRecent time.Duration
	Recent     time.Duration
	Today      time.Duration
}

func (b *Badges) setDefaults() {
	if b.VeryRecent <= 0 {
		b.VeryRecent = time.Hour
	}
	if b.Recent <= 0 {
		b.Recent = 6 * time.Hour
	}
	if b.Today <= 0 {
		b.Today = 24 * time.Hour
	}
}

// For classifies an article published at published, as seen at now.
// Timestamps in the future count as very recent.
func (b Badges) For(published, now time.Time) Freshness {
	age := now.Sub(published)
	switch {
	case age < b.VeryRecent:
		return FreshnessVeryRecent
	case age < b.Recent:
		return FreshnessRecent
	case age < b.Today:
		return FreshnessToday
	default:
		return FreshnessOlder
	}
}

type articleView struct {
	domain.Article
	Freshness Freshness `json:"freshness"`
}

func (s *Server) view(a domain.Article) articleView {
	return articleView{Article: a, Freshness: s.opts.Badges.For(a.PublishedAt, s.now())}
}

func (s *Server) views(articles []domain.Article) []articleView {
	out := make([]articleView, 0, len(articles))
	for _, a := range articles {
		out = append(out, s.view(a))
	}
	return out
}
