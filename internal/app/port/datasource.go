package port

import (
	"context"

	"block_metrics/internal/domain/entity"
)

// BlockDataSource resolves the latest block of a network.
// Implementations must be safe for concurrent use; one instance serves every network.
type BlockDataSource interface {
	// FetchLatestBlock returns the most recent block for the given network identifier.
	// Errors wrap entity.ErrTransport or entity.ErrParse.
	FetchLatestBlock(ctx context.Context, network string) (*entity.RawBlock, error)
}
