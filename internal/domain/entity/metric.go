package entity

// Unit labels appended to metric values.
const (
	GasUnit  = "gas"
	SizeUnit = "bytes"
	FeeUnit  = "ETH"
	BaseUnit = "Wei"
)

// Metric is the display-ready summary of one network's latest block.
type Metric struct {
	Blockchain       string `json:"blockchain"`
	BlockNumber      string `json:"block_number"`
	Timestamp        string `json:"timestamp"`
	GasUsed          string `json:"gas_used"`
	TransactionCount string `json:"transaction_count"`
	BlockSize        string `json:"block_size"`
	TransactionFees  string `json:"transaction_fees"`
	BaseFeePerGas    string `json:"base_fee_per_gas"`
}

// Fields returns the metric values in report column order.
func (m Metric) Fields() []string {
	return []string{
		m.Blockchain,
		m.BlockNumber,
		m.Timestamp,
		m.GasUsed,
		m.TransactionCount,
		m.BlockSize,
		m.TransactionFees,
		m.BaseFeePerGas,
	}
}
