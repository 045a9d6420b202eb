package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"block_metrics/internal/app/port"
	"block_metrics/internal/domain/entity"
)

// DefaultPerNetworkTimeout bounds a single network's fetch when no timeout is configured.
const DefaultPerNetworkTimeout = 10 * time.Second

// AggregatorServiceImpl implements port.AggregatorService.
type AggregatorServiceImpl struct {
	dataSource        port.BlockDataSource
	observer          port.FetchObserver
	logger            port.Logger
	perNetworkTimeout time.Duration
	maxConcurrent     int
}

// NewAggregatorService creates a new instance of AggregatorServiceImpl.
// maxConcurrent <= 0 means one goroutine per network with no bound. observer may be nil.
func NewAggregatorService(
	ds port.BlockDataSource,
	observer port.FetchObserver,
	l port.Logger,
	perNetworkTimeout time.Duration,
	maxConcurrent int,
) port.AggregatorService {
	if perNetworkTimeout <= 0 {
		perNetworkTimeout = DefaultPerNetworkTimeout
	}
	return &AggregatorServiceImpl{
		dataSource:        ds,
		observer:          observer,
		logger:            l,
		perNetworkTimeout: perNetworkTimeout,
		maxConcurrent:     maxConcurrent,
	}
}

type fetchResult struct {
	block *entity.RawBlock
	err   error
}

// Aggregate fetches the latest block of every network concurrently and keeps the ones that succeeded,
// in the order the networks were given.
func (s *AggregatorServiceImpl) Aggregate(ctx context.Context, networks []string) entity.AggregateResult {
	s.logger.Debug("Aggregating block metrics", "networks", networks)

	outcomes := make([]entity.NetworkOutcome, len(networks))

	var g errgroup.Group
	if s.maxConcurrent > 0 {
		g.SetLimit(s.maxConcurrent)
	}
	for i, network := range networks {
		g.Go(func() error {
			outcomes[i] = s.fetchNetwork(ctx, network)
			return nil
		})
	}
	_ = g.Wait() // units never return errors

	result := entity.AggregateResult{Metrics: make([]entity.Metric, 0, len(networks))}
	for _, o := range outcomes {
		if o.Succeeded() {
			result.Metrics = append(result.Metrics, *o.Metric)
			continue
		}
		result.Failures = append(result.Failures, entity.NetworkFailure{
			Network: o.Network,
			Reason:  entity.ClassifyFailure(o.Err),
			Message: o.Err.Error(),
		})
	}

	if s.observer != nil {
		s.observer.ObserveAggregate(len(networks), len(result.Metrics))
	}
	if result.Degraded() {
		s.logger.Warn("Aggregate is missing networks",
			"requested", len(networks), "succeeded", len(result.Metrics), "failed", len(result.Failures))
	} else {
		s.logger.Debug("Aggregate complete", "requested", len(networks))
	}
	return result
}

// fetchNetwork runs one unit under its own deadline. The unit stops waiting at the deadline
// even if the data source ignores ctx; the late result is dropped.
func (s *AggregatorServiceImpl) fetchNetwork(ctx context.Context, network string) entity.NetworkOutcome {
	start := time.Now()
	unitCtx, cancel := context.WithTimeout(ctx, s.perNetworkTimeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		block, err := s.dataSource.FetchLatestBlock(unitCtx, network)
		done <- fetchResult{block: block, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-unitCtx.Done():
		res.err = unitCtx.Err()
	}

	if res.err == nil && res.block == nil {
		res.err = fmt.Errorf("%w: empty block for %s", entity.ErrParse, network)
	}
	if res.err != nil && unitCtx.Err() != nil && ctx.Err() == nil {
		res.err = fmt.Errorf("%w: %s after %s: %w", entity.ErrDeadlineExceeded, network, s.perNetworkTimeout, res.err)
	}

	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveFetch(network, elapsed, res.err)
	}

	if res.err != nil {
		s.logger.Warn("Failed to fetch latest block",
			"network", network, "reason", entity.ClassifyFailure(res.err), "duration", elapsed, "error", res.err)
		return entity.NetworkOutcome{Network: network, Err: res.err}
	}

	metric := TransformBlock(network, res.block)
	s.logger.Debug("Fetched latest block", "network", network, "block", res.block.Number, "duration", elapsed)
	return entity.NetworkOutcome{Network: network, Metric: &metric}
}
