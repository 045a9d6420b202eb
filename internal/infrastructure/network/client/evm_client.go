package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"block_metrics/internal/domain/entity"
	"block_metrics/internal/pkg/utils"
)

// TimestampLayout renders block times the same way the Moralis API does.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const etherDecimals = 18

// rpcBlock is the subset of eth_getBlockByNumber(n, false) that the report needs.
type rpcBlock struct {
	Number        *hexutil.Big   `json:"number"`
	Hash          common.Hash    `json:"hash"`
	Timestamp     hexutil.Uint64 `json:"timestamp"`
	GasUsed       hexutil.Uint64 `json:"gasUsed"`
	Size          hexutil.Uint64 `json:"size"`
	BaseFeePerGas *hexutil.Big   `json:"baseFeePerGas"`
	Transactions  []common.Hash  `json:"transactions"`
}

// rpcReceipt is the subset of a transaction receipt used to compute the paid fee.
type rpcReceipt struct {
	TransactionHash   common.Hash    `json:"transactionHash"`
	GasUsed           hexutil.Uint64 `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big   `json:"effectiveGasPrice"`
}

// EVMClient reads the latest block of one EVM-compatible network over JSON-RPC.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcURL         string
	rpcCallTimeout time.Duration
}

// NewEVMClient dials the network's RPC endpoints in order and keeps the first that connects.
func NewEVMClient(netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration) (*EVMClient, error) {
	rpcURLs := netDef.RPCURLs()
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("network %s has no RPC URLs", netDef.Identifier)
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return &EVMClient{ethClient: client, netDef: netDef, rpcURL: rpcURL, rpcCallTimeout: rpcCallTimeout}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Identifier, lastErr)
}

// LatestBlock fetches the head block and its receipts in one batch and converts them to a RawBlock.
func (c *EVMClient) LatestBlock(ctx context.Context) (*entity.RawBlock, error) {
	if c.rpcCallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.rpcCallTimeout)
		defer cancel()
	}

	head, err := c.ethClient.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: eth_blockNumber on %s: %w", entity.ErrTransport, c.netDef.Identifier, err)
	}
	number := hexutil.EncodeUint64(head)

	var block *rpcBlock
	var receipts []rpcReceipt
	batch := []rpc.BatchElem{
		{Method: "eth_getBlockByNumber", Args: []interface{}{number, false}, Result: &block},
		{Method: "eth_getBlockReceipts", Args: []interface{}{number}, Result: &receipts},
	}
	if err := c.ethClient.Client().BatchCallContext(ctx, batch); err != nil {
		return nil, fmt.Errorf("%w: RPC batch call on %s failed: %w", entity.ErrTransport, c.netDef.Identifier, err)
	}
	for _, elem := range batch {
		if elem.Error == nil {
			continue
		}
		var jsonErr rpc.Error
		if errors.As(elem.Error, &jsonErr) {
			return nil, fmt.Errorf("%w: %s on %s: %w", entity.ErrTransport, elem.Method, c.netDef.Identifier, elem.Error)
		}
		return nil, fmt.Errorf("%w: %s on %s: %w", entity.ErrParse, elem.Method, c.netDef.Identifier, elem.Error)
	}
	if block == nil || block.Number == nil {
		return nil, fmt.Errorf("%w: block %d not found on %s", entity.ErrParse, head, c.netDef.Identifier)
	}

	return toRawBlock(block, receipts), nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}

func toRawBlock(b *rpcBlock, receipts []rpcReceipt) *entity.RawBlock {
	txs := make([]entity.RawTransaction, 0, len(receipts))
	for _, r := range receipts {
		fee := new(big.Int).SetUint64(uint64(r.GasUsed))
		if r.EffectiveGasPrice != nil {
			fee.Mul(fee, r.EffectiveGasPrice.ToInt())
		} else {
			fee.SetInt64(0)
		}
		txs = append(txs, entity.RawTransaction{
			Hash:           r.TransactionHash.Hex(),
			TransactionFee: utils.FormatBigInt(fee, etherDecimals),
		})
	}

	baseFee := "0"
	if b.BaseFeePerGas != nil {
		baseFee = b.BaseFeePerGas.ToInt().String()
	}

	return &entity.RawBlock{
		Number:           b.Number.ToInt().String(),
		Hash:             b.Hash.Hex(),
		Timestamp:        time.Unix(int64(b.Timestamp), 0).UTC().Format(TimestampLayout),
		GasUsed:          strconv.FormatUint(uint64(b.GasUsed), 10),
		TransactionCount: strconv.Itoa(len(b.Transactions)),
		Size:             strconv.FormatUint(uint64(b.Size), 10),
		BaseFeePerGas:    baseFee,
		Transactions:     txs,
	}
}
