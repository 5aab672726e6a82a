package aggregator

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/fetch"
)

// Fetcher runs one source through the resilience wrapper.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.SourceDescriptor) fetch.Result
}
