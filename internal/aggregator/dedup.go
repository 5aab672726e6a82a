package aggregator

import (
	"slices"
	"strings"
	"time"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/textutil"
)

// Dedup drops URL duplicates, then near-duplicates: articles whose
// normalized titles match and whose publish times are less than window
// apart. The first occurrence always wins, so Dedup is idempotent.
func Dedup(articles []domain.Article, window time.Duration) (out []domain.Article, byURL, nearDup int) {
	seenURL := make(map[string]struct{}, len(articles))
	byTitle := make(map[string][]time.Time, len(articles))
	out = make([]domain.Article, 0, len(articles))

	for _, a := range articles {
		key := textutil.NormalizeURL(a.CanonicalURL)
		if _, dup := seenURL[key]; dup {
			byURL++
			continue
		}

		title := textutil.NormalizeTitle(a.Title)
		if title != "" && window > 0 && nearAny(byTitle[title], a.PublishedAt, window) {
			nearDup++
			continue
		}

		seenURL[key] = struct{}{}
		if title != "" {
			byTitle[title] = append(byTitle[title], a.PublishedAt)
		}
		out = append(out, a)
	}

	return out, byURL, nearDup
}

func nearAny(times []time.Time, t time.Time, window time.Duration) bool {
	for _, other := range times {
		d := t.Sub(other)
		if d < 0 {
			d = -d
		}
		if d < window {
			return true
		}
	}
	return false
}

// Sort orders articles newest first, breaking ties by normalized URL so the
// result does not depend on input order.
func Sort(articles []domain.Article) {
	slices.SortStableFunc(articles, func(a, b domain.Article) int {
		if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
			return c
		}
		return strings.Compare(textutil.NormalizeURL(a.CanonicalURL), textutil.NormalizeURL(b.CanonicalURL))
	})
}
