package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"news_aggregator/internal/catalog"
	"news_aggregator/internal/domain"
)

type Catalog interface {
	Len() int
	Get(id string) (domain.Article, error)
	List(q catalog.Query) catalog.Page
	Search(query string, limit, offset int) catalog.Page
	Related(id string, limit int) ([]domain.Article, error)
	IncrementView(ctx context.Context, id string) (int64, error)
}

type Sources interface {
	All() []domain.SourceDescriptor
	States() []domain.SourceState
}

type Refresher interface {
	ForceRun(ctx context.Context) error
}

type Readiness interface {
	Wait(ctx context.Context) error
}
