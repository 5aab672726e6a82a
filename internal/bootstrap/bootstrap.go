// Package bootstrap fills the catalog once at startup so the first readers
// never see an empty store.
package bootstrap

//go:generate mockgen -source=bootstrap.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"news_aggregator/internal/domain"
)

const (
	DefaultSeedTimeout      = 20 * time.Second
	DefaultPlaceholderCount = 6
)

type Aggregator interface {
	Aggregate(ctx context.Context, sources []domain.SourceDescriptor) ([]domain.Article, domain.AggregateStats)
}

type Catalog interface {
	AddArticles(ctx context.Context, articles []domain.Article) []domain.Article
	Len() int
}

type SeedRegistry interface {
	Seeds() []domain.SourceDescriptor
}

type Options struct {
	SeedTimeout      time.Duration
	PlaceholderCount int
}

// Initializer runs the startup fill exactly once.
type Initializer struct {
	aggregator Aggregator
	catalog    Catalog
	registry   SeedRegistry
	opts       Options
	logger     *slog.Logger
	now        func() time.Time

	once  sync.Once
	ready chan struct{}
}

func NewInitializer(aggregator Aggregator, catalog Catalog, registry SeedRegistry, opts Options, logger *slog.Logger) *Initializer {
	if opts.SeedTimeout <= 0 {
		opts.SeedTimeout = DefaultSeedTimeout
	}
	if opts.PlaceholderCount <= 0 {
		opts.PlaceholderCount = DefaultPlaceholderCount
	}
	return &Initializer{
		aggregator: aggregator,
		catalog:    catalog,
		registry:   registry,
		opts:       opts,
		logger:     logger.With("component", "bootstrap"),
		now:        time.Now,
		ready:      make(chan struct{}),
	}
}

// Run fetches the seed sources under SeedTimeout and falls back to
// placeholders when the catalog is still empty. Concurrent and later calls
// wait for the first run and return.
func (i *Initializer) Run(ctx context.Context) {
	i.once.Do(func() {
		defer close(i.ready)
		i.run(ctx)
	})
}

// Ready is closed once the first Run has finished.
func (i *Initializer) Ready() <-chan struct{} {
	return i.ready
}

// Wait blocks until Ready or ctx is done.
func (i *Initializer) Wait(ctx context.Context) error {
	select {
	case <-i.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Initializer) run(ctx context.Context) {
	start := i.now()
	seeds := i.registry.Seeds()
	i.logger.Info("bootstrap started", "seeds", len(seeds), "timeout", i.opts.SeedTimeout)

	if len(seeds) > 0 {
		seedCtx, cancel := context.WithTimeout(ctx, i.opts.SeedTimeout)
		articles, stats := i.aggregator.Aggregate(seedCtx, seeds)
		cancel()

		inserted := i.catalog.AddArticles(ctx, articles)
		i.logger.Info("seed sources fetched",
			"succeeded", stats.Succeeded,
			"failed", stats.Failed,
			"inserted", len(inserted),
		)
	}

	if i.catalog.Len() == 0 {
		placeholders := Placeholders(i.now(), i.opts.PlaceholderCount)
		i.catalog.AddArticles(ctx, placeholders)
		i.logger.Warn("catalog empty after bootstrap, inserted placeholders", "count", len(placeholders))
	}

	i.logger.Info("bootstrap completed", "articles", i.catalog.Len(), "duration", i.now().Sub(start))
}

// Placeholders synthesizes n articles, one per category, with publish times
// spaced back from now.
func Placeholders(now time.Time, n int) []domain.Article {
	out := make([]domain.Article, 0, n)
	for k := 0; k < n; k++ {
		cat := domain.Categories[k%len(domain.Categories)]
		name := string(cat)
		if k >= len(domain.Categories) {
			name = fmt.Sprintf("%s-%d", cat, k/len(domain.Categories))
		}
		label := strings.ToUpper(name[:1]) + name[1:]
		out = append(out, domain.Article{
			ID:           domain.PlaceholderPrefix + name,
			SourceID:     "placeholder",
			SourceName:   "News Desk",
			Category:     cat,
			Title:        label + " headlines are on their way",
			Excerpt:      "Our sources are temporarily unavailable. Fresh stories will appear here automatically.",
			CanonicalURL: "placeholder://" + name,
			PublishedAt:  now.Add(-time.Duration(k) * 10 * time.Minute).UTC(),
			Status:       domain.StatusPublished,
		})
	}
	return out
}
