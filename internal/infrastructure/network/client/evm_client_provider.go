package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"block_metrics/internal/app/port"
	"block_metrics/internal/domain/entity"
	"block_metrics/internal/infrastructure/configloader"
	networkdefinition "block_metrics/internal/infrastructure/network/definition"
)

const defaultProviderConnectionTimeout = 10 * time.Second

// EVMClientProvider serves port.BlockDataSource over JSON-RPC, one cached client per network.
type EVMClientProvider struct {
	networks          *networkdefinition.NetworkDefinitionProvider
	clients           map[string]*EVMClient
	mu                sync.Mutex
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

var _ port.BlockDataSource = (*EVMClientProvider)(nil)

// NewEVMClientProvider creates a new EVMClientProvider. Clients are dialed on first use.
func NewEVMClientProvider(
	networks *networkdefinition.NetworkDefinitionProvider,
	cfg configloader.RPCConfig,
	rpcCallTimeout time.Duration,
	logger port.Logger,
) *EVMClientProvider {
	connectionTimeout := time.Duration(cfg.ConnectionTimeoutMs) * time.Millisecond
	if connectionTimeout <= 0 {
		connectionTimeout = defaultProviderConnectionTimeout
	}
	return &EVMClientProvider{
		networks:          networks,
		clients:           make(map[string]*EVMClient),
		logger:            logger,
		connectionTimeout: connectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// FetchLatestBlock implements port.BlockDataSource.
func (p *EVMClientProvider) FetchLatestBlock(ctx context.Context, network string) (*entity.RawBlock, error) {
	client, err := p.GetClient(network)
	if err != nil {
		return nil, err
	}
	return client.LatestBlock(ctx)
}

// GetClient returns the cached client for the network, dialing it if needed.
func (p *EVMClientProvider) GetClient(network string) (*EVMClient, error) {
	netDef, ok := p.networks.GetNetworkDefinitionByName(network)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", entity.ErrTransport, entity.ErrUnknownNetwork, network)
	}

	p.mu.Lock()
	client, exists := p.clients[network]
	p.mu.Unlock()
	if exists {
		return client, nil
	}

	// dial unlocked: other networks must not wait on this endpoint
	p.logger.Info("Creating new EVM client", "network", network, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := NewEVMClient(netDef, p.connectionTimeout, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", network, "error", err)
		return nil, fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, raced := p.clients[network]; raced {
		newClient.Close()
		return existing, nil
	}
	p.clients[network] = newClient
	p.logger.Debug("Cached EVM client", "network", network, "rpc", newClient.rpcURL)
	return newClient, nil
}

// Close closes every cached client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for network, c := range p.clients {
		c.Close()
		delete(p.clients, network)
	}
}
