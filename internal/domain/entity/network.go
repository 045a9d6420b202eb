package entity

// NetworkDefinition describes one network the service can report on.
// Identifier is the token passed to the data source (e.g. "eth", "polygon").
type NetworkDefinition struct {
	ChainID          uint64   `json:"chainId" yaml:"chainID"`
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}

// RPCURLs returns the primary endpoint followed by the fallbacks, skipping empty entries.
func (n NetworkDefinition) RPCURLs() []string {
	urls := make([]string, 0, len(n.FallbackRPCURLs)+1)
	if n.PrimaryRPCURL != "" {
		urls = append(urls, n.PrimaryRPCURL)
	}
	for _, u := range n.FallbackRPCURLs {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Identifiers returns the identifiers of defs, preserving order.
func Identifiers(defs []NetworkDefinition) []string {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.Identifier)
	}
	return ids
}
