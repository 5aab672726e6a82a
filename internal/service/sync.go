package service

import (
	"context"
	"log/slog"
	"time"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/metrics"
)

// IngestService runs one aggregation pass and applies it to the catalog,
// then mirrors source state and announces new articles downstream.
type IngestService struct {
	aggregator Aggregator
	catalog    Catalog
	registry   SourceRegistry
	states     SourceStateStore
	publisher  Publisher
	logger     *slog.Logger
}

// NewIngestService wires the refresh pipeline. states and publisher may be nil.
func NewIngestService(
	aggregator Aggregator,
	catalog Catalog,
	registry SourceRegistry,
	states SourceStateStore,
	publisher Publisher,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		aggregator: aggregator,
		catalog:    catalog,
		registry:   registry,
		states:     states,
		publisher:  publisher,
		logger:     logger.With("component", "ingest"),
	}
}

// Refresh aggregates every active source and merges or replaces the
// catalog. An empty aggregation leaves the catalog untouched.
func (s *IngestService) Refresh(ctx context.Context, mode domain.RefreshMode) (*domain.RefreshStats, error) {
	startTime := time.Now()
	s.logger.Info("starting refresh", "mode", mode)

	articles, agg := s.aggregator.Aggregate(ctx, s.registry.Active())

	stats := &domain.RefreshStats{
		Aggregate: agg,
		Mode:      mode,
	}

	var fresh, held []domain.Article
	switch {
	case len(articles) == 0:
		s.logger.Warn("refresh produced no articles, keeping current catalog",
			"sources", agg.Sources,
			"failed", agg.Failed,
		)
	case mode == domain.RefreshReplace:
		for _, a := range articles {
			if s.catalog.HasURL(a.CanonicalURL) {
				held = append(held, a)
			} else {
				fresh = append(fresh, a)
			}
		}
		if s.catalog.ReplaceArticles(ctx, articles) {
			stats.Inserted = len(fresh)
			stats.Updated = len(held)
		} else {
			fresh, held = nil, nil
		}
	default:
		fresh = s.catalog.AddArticles(ctx, articles)
		stats.Inserted = len(fresh)
	}

	s.publish(ctx, fresh, true, stats)
	s.publish(ctx, held, false, stats)
	s.persistStates(ctx, stats)

	stats.Total = s.catalog.Len()
	stats.Duration = time.Since(startTime)

	s.logger.Info("refresh completed",
		"mode", mode,
		"fetched", agg.Fetched,
		"returned", agg.Returned,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"total", stats.Total,
		"published", stats.Published,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, ctx.Err()
}

// publish announces articles downstream: isNew marks first sightings, the
// rest are re-imported copies of articles the catalog already held.
func (s *IngestService) publish(ctx context.Context, articles []domain.Article, isNew bool, stats *domain.RefreshStats) {
	if s.publisher == nil {
		return
	}
	for i := range articles {
		article := &articles[i]
		if article.IsPlaceholder() {
			continue
		}
		if err := s.publisher.Publish(ctx, article, isNew); err != nil {
			s.logger.Warn("failed to publish article", "id", article.ID, "error", err)
			metrics.RecordPublish("error")
			stats.Errors++
			continue
		}
		metrics.RecordPublish("ok")
		stats.Published++
	}
}

func (s *IngestService) persistStates(ctx context.Context, stats *domain.RefreshStats) {
	if s.states == nil {
		return
	}
	for _, st := range s.registry.States() {
		if err := s.states.Update(ctx, &st); err != nil {
			s.logger.Warn("failed to persist source state", "source", st.SourceID, "error", err)
			stats.Errors++
		}
	}
}
