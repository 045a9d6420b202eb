package entity

// RawTransaction is the part of an upstream transaction record the transformer reads.
type RawTransaction struct {
	Hash           string `json:"hash"`
	TransactionFee string `json:"transaction_fee"`
}

// RawBlock is the latest block of one network as returned by a data source.
// Numeric fields are kept as text; they are not validated here.
type RawBlock struct {
	Number           string           `json:"number"`
	Hash             string           `json:"hash"`
	Timestamp        string           `json:"timestamp"`
	GasUsed          string           `json:"gas_used"`
	TransactionCount string           `json:"transaction_count"`
	Size             string           `json:"size"`
	BaseFeePerGas    string           `json:"base_fee_per_gas"`
	Transactions     []RawTransaction `json:"transactions"`
}
