package port

import (
	"context"
	"time"

	"block_metrics/internal/domain/entity"
)

// AggregatorService fans out one block lookup per network and collects the results.
type AggregatorService interface {
	// Aggregate never fails; networks that could not be fetched are listed in the result's Failures.
	Aggregate(ctx context.Context, networks []string) entity.AggregateResult
}

// Renderer turns metrics into a displayable report.
type Renderer interface {
	Render(metrics []entity.Metric) []byte
	ContentType() string
}

// FetchObserver receives one observation per finished network fetch.
type FetchObserver interface {
	ObserveFetch(network string, duration time.Duration, err error)
	ObserveAggregate(requested, succeeded int)
}
