package networkdefinition

import (
	"block_metrics/internal/app/port"
	"block_metrics/internal/domain/entity"
)

// Predefined network definitions. Identifiers are the chain tokens understood by the Moralis API.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "eth",
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon PoS",
		Identifier:       "polygon",
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
	}
	BSC = entity.NetworkDefinition{
		ChainID:          56,
		Name:             "BNB Smart Chain",
		Identifier:       "bsc",
		PrimaryRPCURL:    "https://1rpc.io/bnb",
		FallbackRPCURLs:  []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL: "https://bscscan.com",
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:          43114,
		Name:             "Avalanche C-Chain",
		Identifier:       "avalanche",
		PrimaryRPCURL:    "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs:  []string{"https://avalanche.public-rpc.com", "https://rpc.ankr.com/avalanche"},
		BlockExplorerURL: "https://snowtrace.io",
	}
	Fantom = entity.NetworkDefinition{
		ChainID:          250,
		Name:             "Fantom Opera",
		Identifier:       "fantom",
		PrimaryRPCURL:    "https://rpc.ftm.tools",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/fantom", "https://fantom.publicnode.com"},
		BlockExplorerURL: "https://ftmscan.com",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		BlockExplorerURL: "https://arbiscan.io",
	}
	Cronos = entity.NetworkDefinition{
		ChainID:          25,
		Name:             "Cronos Mainnet",
		Identifier:       "cronos",
		PrimaryRPCURL:    "https://evm.cronos.org",
		FallbackRPCURLs:  []string{"https://cronos-evm-rpc.publicnode.com"},
		BlockExplorerURL: "https://cronoscan.com",
	}
	Chiliz = entity.NetworkDefinition{
		ChainID:          88888,
		Name:             "Chiliz Chain",
		Identifier:       "chiliz",
		PrimaryRPCURL:    "https://rpc.ankr.com/chiliz",
		FallbackRPCURLs:  []string{"https://chiliz-rpc.publicnode.com"},
		BlockExplorerURL: "https://chiliscan.com",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Identifier:       "base",
		PrimaryRPCURL:    "https://1rpc.io/base",
		FallbackRPCURLs:  []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
		BlockExplorerURL: "https://basescan.org",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "OP Mainnet",
		Identifier:       "optimism",
		PrimaryRPCURL:    "https://mainnet.optimism.io",
		FallbackRPCURLs:  []string{"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism"},
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
)

// DefaultNetworks returns the report's default network list, in display order.
func DefaultNetworks() []entity.NetworkDefinition {
	defs := []entity.NetworkDefinition{
		Ethereum, Polygon, BSC, Avalanche, Fantom, Arbitrum, Cronos, Chiliz, Base, Optimism,
	}
	for i := range defs {
		defs[i].FallbackRPCURLs = append([]string(nil), defs[i].FallbackRPCURLs...)
	}
	return defs
}

// NetworkDefinitionProvider looks up the configured networks by identifier.
type NetworkDefinitionProvider struct {
	logger  port.Logger
	ordered []entity.NetworkDefinition
	byID    map[string]entity.NetworkDefinition
}

// NewNetworkDefinitionProvider indexes defs. Later duplicates are ignored.
func NewNetworkDefinitionProvider(log port.Logger, defs []entity.NetworkDefinition) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:  log,
		ordered: make([]entity.NetworkDefinition, 0, len(defs)),
		byID:    make(map[string]entity.NetworkDefinition, len(defs)),
	}
	for _, def := range defs {
		if _, dup := p.byID[def.Identifier]; dup {
			p.logger.Warn("Duplicate network definition skipped", "identifier", def.Identifier)
			continue
		}
		p.byID[def.Identifier] = def
		p.ordered = append(p.ordered, def)
		p.logger.Debug("Network registered", "identifier", def.Identifier, "name", def.Name, "chainID", def.ChainID)
	}
	p.logger.Info("NetworkDefinitionProvider initialized", "networks", len(p.ordered))
	return p
}

// GetAllNetworkDefinitions returns a copy of the configured networks in order.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.ordered))
	copy(defsCopy, p.ordered)
	return defsCopy
}

// GetNetworkDefinitionByName returns the definition for identifier, if configured.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.byID[identifier]
	return def, ok
}
