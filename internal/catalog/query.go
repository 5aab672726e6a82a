package catalog

import (
	"slices"
	"strings"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/textutil"
)

// Len returns the number of held articles.
func (s *Store) Len() int {
	return len(s.current.Load().articles)
}

// Snapshot returns a copy of every held article in listing order.
func (s *Store) Snapshot() []domain.Article {
	snap := s.current.Load()
	out := make([]domain.Article, len(snap.articles))
	for i, a := range snap.articles {
		out[i] = a.Clone()
	}
	return out
}

// Get returns one article by id.
func (s *Store) Get(id string) (domain.Article, error) {
	snap := s.current.Load()
	idx, ok := snap.byID[id]
	if !ok {
		return domain.Article{}, ErrNotFound
	}
	return snap.articles[idx].Clone(), nil
}

// List returns a filtered page in listing order.
func (s *Store) List(q Query) Page {
	snap := s.current.Load()
	matched := make([]domain.Article, 0, len(snap.articles))
	for _, a := range snap.articles {
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if q.Featured && !a.Featured {
			continue
		}
		if q.Breaking && !a.Breaking {
			continue
		}
		if q.Trending && !a.Trending {
			continue
		}
		matched = append(matched, a)
	}
	return paginate(matched, q.Limit, q.Offset)
}

// Search matches a case-insensitive substring against title, excerpt and
// tags. An empty query matches nothing.
func (s *Store) Search(query string, limit, offset int) Page {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return Page{Articles: []domain.Article{}}
	}

	snap := s.current.Load()
	matched := make([]domain.Article, 0)
	for _, a := range snap.articles {
		if matches(a, needle) {
			matched = append(matched, a)
		}
	}
	return paginate(matched, limit, offset)
}

func matches(a domain.Article, needle string) bool {
	if strings.Contains(strings.ToLower(a.Title), needle) || strings.Contains(strings.ToLower(a.Excerpt), needle) {
		return true
	}
	for _, t := range a.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// Related returns articles sharing the category or at least one tag with
// id, ranked by shared tag count then recency.
func (s *Store) Related(id string, limit int) ([]domain.Article, error) {
	snap := s.current.Load()
	idx, ok := snap.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	limit = clampLimit(limit)
	target := snap.articles[idx]

	type scored struct {
		article domain.Article
		shared  int
	}
	var candidates []scored
	for i, a := range snap.articles {
		if i == idx {
			continue
		}
		shared := 0
		for _, t := range a.Tags {
			if target.HasTag(t) {
				shared++
			}
		}
		if shared == 0 && a.Category != target.Category {
			continue
		}
		candidates = append(candidates, scored{article: a, shared: shared})
	}

	slices.SortStableFunc(candidates, func(x, y scored) int {
		if x.shared != y.shared {
			return y.shared - x.shared
		}
		return y.article.PublishedAt.Compare(x.article.PublishedAt)
	})

	out := make([]domain.Article, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, c.article.Clone())
	}
	return out, nil
}

func paginate(matched []domain.Article, limit, offset int) Page {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	total := len(matched)
	if offset >= total {
		return Page{Articles: []domain.Article{}, Total: total}
	}
	end := min(offset+limit, total)
	out := make([]domain.Article, 0, end-offset)
	for _, a := range matched[offset:end] {
		out = append(out, a.Clone())
	}
	return Page{Articles: out, Total: total, HasMore: end < total}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// HasURL reports whether an article with the same normalized URL is held.
func (s *Store) HasURL(canonicalURL string) bool {
	_, ok := s.current.Load().byURL[textutil.NormalizeURL(canonicalURL)]
	return ok
}
