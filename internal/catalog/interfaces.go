package catalog

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"news_aggregator/internal/domain"
)

// Backend is the durable mirror of the catalog.
type Backend interface {
	SaveBatch(ctx context.Context, articles []domain.Article) error
	ReplaceAll(ctx context.Context, articles []domain.Article) error
	UpdateViews(ctx context.Context, id string, views int64, trending bool) error
	Load(ctx context.Context, limit int) ([]domain.Article, error)
}
