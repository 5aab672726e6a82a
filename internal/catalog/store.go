// Package catalog is the in-memory article store served to readers.
//
// Writers serialize on a mutex and publish a new immutable snapshot through
// an atomic pointer, so readers never lock and never observe a half-applied
// batch. Backend writes run outside that mutex but on a second one taken
// before it is released, so the mirror applies changes in snapshot order.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/metrics"
	"news_aggregator/internal/textutil"
)

const (
	DefaultTrendingViews = 50
	DefaultMaxArticles   = 5000
	DefaultLimit         = 20
	MaxLimit             = 100
)

var ErrNotFound = errors.New("article not found")

type Options struct {
	TrendingViews int64
	MaxArticles   int
}

func (o *Options) setDefaults() {
	if o.TrendingViews <= 0 {
		o.TrendingViews = DefaultTrendingViews
	}
	if o.MaxArticles <= 0 {
		o.MaxArticles = DefaultMaxArticles
	}
}

// Query filters List. Zero values mean no filter.
type Query struct {
	Category domain.Category
	Featured bool
	Breaking bool
	Trending bool
	Limit    int
	Offset   int
}

type Page struct {
	Articles []domain.Article `json:"articles"`
	Total    int              `json:"total"`
	HasMore  bool             `json:"hasMore"`
}

type snapshot struct {
	articles []domain.Article
	byID     map[string]int
	byURL    map[string]int
}

func newSnapshot(articles []domain.Article) *snapshot {
	s := &snapshot{
		articles: articles,
		byID:     make(map[string]int, len(articles)),
		byURL:    make(map[string]int, len(articles)),
	}
	for i, a := range articles {
		s.byID[a.ID] = i
		s.byURL[textutil.NormalizeURL(a.CanonicalURL)] = i
	}
	return s
}

type Store struct {
	mu       sync.Mutex
	mirrorMu sync.Mutex
	current  atomic.Pointer[snapshot]
	backend  Backend
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates an empty store. backend may be nil.
func NewStore(backend Backend, opts Options, logger *slog.Logger) *Store {
	opts.setDefaults()
	s := &Store{
		backend: backend,
		opts:    opts,
		logger:  logger.With("component", "catalog"),
		now:     time.Now,
	}
	s.current.Store(newSnapshot(nil))
	return s
}

// Load warms the store from the backend. Articles already held win.
func (s *Store) Load(ctx context.Context) (int, error) {
	if s.backend == nil {
		return 0, nil
	}
	articles, err := s.backend.Load(ctx, s.opts.MaxArticles)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.current.Load()
	merged := slices.Clone(snap.articles)
	seen := make(map[string]struct{}, len(merged)+len(articles))
	for _, a := range merged {
		seen[textutil.NormalizeURL(a.CanonicalURL)] = struct{}{}
	}
	loaded := 0
	for _, a := range articles {
		key := textutil.NormalizeURL(a.CanonicalURL)
		if _, dup := seen[key]; dup || a.CanonicalURL == "" {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, a)
		loaded++
	}
	s.publish(merged)
	return loaded, nil
}

// AddArticles merge-inserts articles whose normalized URL is not yet held
// and returns the inserted copies. Placeholders are dropped once real
// articles arrive.
func (s *Store) AddArticles(ctx context.Context, articles []domain.Article) []domain.Article {
	s.mu.Lock()

	snap := s.current.Load()
	now := s.now()
	seen := make(map[string]struct{}, len(articles))
	inserted := make([]domain.Article, 0, len(articles))
	real := false

	for _, a := range articles {
		key := textutil.NormalizeURL(a.CanonicalURL)
		if key == "" {
			continue
		}
		if _, held := snap.byURL[key]; held {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		inserted = append(inserted, prepare(a, now))
		if !a.IsPlaceholder() {
			real = true
		}
	}

	if len(inserted) == 0 {
		s.mu.Unlock()
		return inserted
	}

	merged := make([]domain.Article, 0, len(snap.articles)+len(inserted))
	merged = append(merged, inserted...)
	for _, a := range snap.articles {
		if real && a.IsPlaceholder() {
			continue
		}
		merged = append(merged, a)
	}
	s.publish(merged)

	batch := durable(inserted)
	if !s.handOff(len(batch) > 0) {
		return inserted
	}
	defer s.mirrorMu.Unlock()

	if err := s.backend.SaveBatch(ctx, batch); err != nil {
		s.logger.Warn("failed to mirror inserted articles", "count", len(batch), "error", err)
	}
	return inserted
}

// ReplaceArticles atomically swaps the whole catalog. An empty batch keeps
// the current catalog and returns false.
func (s *Store) ReplaceArticles(ctx context.Context, articles []domain.Article) bool {
	if len(articles) == 0 {
		s.logger.Warn("refusing to replace catalog with an empty batch")
		return false
	}

	s.mu.Lock()
	now := s.now()
	seen := make(map[string]struct{}, len(articles))
	next := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		key := textutil.NormalizeURL(a.CanonicalURL)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		next = append(next, prepare(a, now))
	}
	if len(next) == 0 {
		s.mu.Unlock()
		return false
	}
	s.publish(next)

	batch := durable(next)
	if !s.handOff(len(batch) > 0) {
		return true
	}
	defer s.mirrorMu.Unlock()

	if err := s.backend.ReplaceAll(ctx, batch); err != nil {
		s.logger.Warn("failed to mirror catalog replace", "count", len(batch), "error", err)
	}
	return true
}

// IncrementView bumps the view counter and recomputes the trending flag.
func (s *Store) IncrementView(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()

	snap := s.current.Load()
	idx, ok := snap.byID[id]
	if !ok {
		s.mu.Unlock()
		return 0, ErrNotFound
	}

	next := slices.Clone(snap.articles)
	a := &next[idx]
	a.ViewCount++
	a.Trending = a.ViewCount >= s.opts.TrendingViews
	views, trending := a.ViewCount, a.Trending

	s.current.Store(&snapshot{articles: next, byID: snap.byID, byURL: snap.byURL})

	if !s.handOff(!strings.HasPrefix(id, domain.PlaceholderPrefix)) {
		return views, nil
	}
	defer s.mirrorMu.Unlock()

	if err := s.backend.UpdateViews(ctx, id, views, trending); err != nil {
		s.logger.Warn("failed to mirror view count", "id", id, "error", err)
	}
	return views, nil
}

// handOff releases mu. When the change must reach the backend it first
// takes mirrorMu and reports true; the caller then unlocks mirrorMu once
// the backend write returns.
func (s *Store) handOff(mirror bool) bool {
	if s.backend == nil || !mirror {
		s.mu.Unlock()
		return false
	}
	s.mirrorMu.Lock()
	s.mu.Unlock()
	return true
}

// publish orders, caps and stores a new snapshot. Callers hold mu.
func (s *Store) publish(articles []domain.Article) {
	slices.SortStableFunc(articles, func(a, b domain.Article) int {
		if c := b.ImportedAt.Compare(a.ImportedAt); c != 0 {
			return c
		}
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	if len(articles) > s.opts.MaxArticles {
		articles = articles[:s.opts.MaxArticles]
	}
	s.current.Store(newSnapshot(articles))
	metrics.SetCatalogSize(len(articles))
}

func prepare(a domain.Article, now time.Time) domain.Article {
	a = a.Clone()
	a.ImportedAt = now
	a.ViewCount = 0
	a.Trending = false
	if a.Status == "" {
		a.Status = domain.StatusPublished
	}
	return a
}

// durable filters placeholders out of backend writes.
func durable(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if !a.IsPlaceholder() {
			out = append(out, a)
		}
	}
	return out
}
