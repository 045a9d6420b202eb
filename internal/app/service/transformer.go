package service

import (
	"fmt"

	"block_metrics/internal/domain/entity"
	"block_metrics/internal/pkg/utils"
)

// TransformBlock converts a raw block into a display-ready Metric.
// It never fails: unparsable fees count as zero and a nil block yields only the network and a zero fee total.
func TransformBlock(network string, block *entity.RawBlock) entity.Metric {
	if block == nil {
		return entity.Metric{
			Blockchain:      network,
			TransactionFees: formatFees(0),
		}
	}

	return entity.Metric{
		Blockchain:       network,
		BlockNumber:      block.Number,
		Timestamp:        block.Timestamp,
		GasUsed:          utils.WithUnit(block.GasUsed, entity.GasUnit),
		TransactionCount: block.TransactionCount,
		BlockSize:        utils.WithUnit(block.Size, entity.SizeUnit),
		TransactionFees:  formatFees(sumFees(block.Transactions)),
		BaseFeePerGas:    utils.WithUnit(block.BaseFeePerGas, entity.BaseUnit),
	}
}

func sumFees(txs []entity.RawTransaction) float64 {
	var total float64
	for _, tx := range txs {
		if fee, ok := utils.ParseDecimal(tx.TransactionFee); ok {
			total += fee
		}
	}
	return total
}

func formatFees(total float64) string {
	return utils.WithUnit(fmt.Sprintf("%.6f", total), entity.FeeUnit)
}
