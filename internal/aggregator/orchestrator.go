// Package aggregator fans out to every active source and merges the results
// into one deduplicated, deterministically ordered batch.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/metrics"
	"news_aggregator/internal/source"
)

const (
	DefaultMaxConcurrency      = 8
	DefaultNearDuplicateWindow = 60 * time.Second
	DefaultFeaturedPriority    = 70
)

type Options struct {
	MaxConcurrency      int
	NearDuplicateWindow time.Duration
	FeaturedPriority    int
	BreakingKeywords    []string
}

func (o *Options) setDefaults() {
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = DefaultMaxConcurrency
	}
	if o.NearDuplicateWindow <= 0 {
		o.NearDuplicateWindow = DefaultNearDuplicateWindow
	}
	if o.FeaturedPriority <= 0 {
		o.FeaturedPriority = DefaultFeaturedPriority
	}
	if len(o.BreakingKeywords) == 0 {
		o.BreakingKeywords = DefaultBreakingKeywords
	}
}

type Orchestrator struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
}

func NewOrchestrator(fetcher Fetcher, opts Options, logger *slog.Logger) *Orchestrator {
	opts.setDefaults()
	return &Orchestrator{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.With("component", "aggregator"),
		now:     time.Now,
	}
}

// Aggregate fetches every active source concurrently and returns the merged
// batch. It never fails: sources that error contribute nothing.
func (o *Orchestrator) Aggregate(ctx context.Context, sources []domain.SourceDescriptor) ([]domain.Article, domain.AggregateStats) {
	start := o.now()

	active := make([]domain.SourceDescriptor, 0, len(sources))
	priorities := make(map[string]int, len(sources))
	for _, src := range sources {
		if src.Active {
			active = append(active, src)
			priorities[src.ID] = src.Priority
		}
	}
	source.ByPriority(active)

	stats := domain.AggregateStats{Sources: len(active)}

	// each source writes only its own slot, so merge order is fixed
	slots := make([][]domain.Article, len(active))
	failed := make([]bool, len(active))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxConcurrency)
	for i, src := range active {
		i, src := i, src
		g.Go(func() error {
			res := o.fetcher.Fetch(gctx, src)
			slots[i] = res.Articles
			failed[i] = res.Failed
			return nil
		})
	}
	_ = g.Wait()

	batch := o.now()
	var merged []domain.Article
	ordinal := 0
	for i, slot := range slots {
		switch {
		case failed[i]:
			stats.Failed++
		case len(slot) == 0:
			stats.Empty++
		default:
			stats.Succeeded++
		}
		for _, a := range slot {
			a.ID = domain.NewArticleID(a.SourceID, batch, ordinal)
			ordinal++
			merged = append(merged, a)
		}
	}
	stats.Fetched = len(merged)

	out, byURL, near := Dedup(merged, o.opts.NearDuplicateWindow)
	stats.DuplicatesURL = byURL
	stats.DuplicatesNear = near

	Sort(out)
	applyFlags(out, priorities, o.opts.FeaturedPriority, o.opts.BreakingKeywords)

	stats.Returned = len(out)
	stats.Duration = o.now().Sub(start)

	metrics.RecordAggregate(stats.Duration.Seconds(), byURL, near)
	o.logger.Info("aggregation complete",
		"sources", stats.Sources,
		"succeeded", stats.Succeeded,
		"empty", stats.Empty,
		"failed", stats.Failed,
		"fetched", stats.Fetched,
		"duplicates_url", stats.DuplicatesURL,
		"duplicates_near", stats.DuplicatesNear,
		"returned", stats.Returned,
		"duration", stats.Duration,
	)

	return out, stats
}
