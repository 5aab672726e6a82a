package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"news_aggregator/internal/domain"
)

type Aggregator interface {
	Aggregate(ctx context.Context, sources []domain.SourceDescriptor) ([]domain.Article, domain.AggregateStats)
}

type Catalog interface {
	AddArticles(ctx context.Context, articles []domain.Article) []domain.Article
	ReplaceArticles(ctx context.Context, articles []domain.Article) bool
	HasURL(canonicalURL string) bool
	Len() int
}

type SourceRegistry interface {
	Active() []domain.SourceDescriptor
	States() []domain.SourceState
}

type SourceStateStore interface {
	Update(ctx context.Context, state *domain.SourceState) error
}

type Publisher interface {
	Publish(ctx context.Context, article *domain.Article, isNew bool) error
	Close() error
}
