package client

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"block_metrics/internal/domain/entity"
	"block_metrics/internal/infrastructure/configloader"
	networkdefinition "block_metrics/internal/infrastructure/network/definition"
	"block_metrics/internal/pkg/logger"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// newRPCServer answers single and batched JSON-RPC calls with the results returned by answer.
func newRPCServer(t *testing.T, answer func(method string) (any, *rpcErrorBody)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		reply := func(req rpcRequest) rpcResponse {
			result, rpcErr := answer(req.Method)
			return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
			var reqs []rpcRequest
			require.NoError(t, json.Unmarshal(body, &reqs))
			out := make([]rpcResponse, 0, len(reqs))
			for _, req := range reqs {
				out = append(out, reply(req))
			}
			_ = json.NewEncoder(w).Encode(out)
			return
		}
		var req rpcRequest
		require.NoError(t, json.Unmarshal(body, &req))
		_ = json.NewEncoder(w).Encode(reply(req))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func londonAnswers(method string) (any, *rpcErrorBody) {
	switch method {
	case "eth_blockNumber":
		return "0x10", nil
	case "eth_getBlockByNumber":
		return map[string]any{
			"number":        "0x10",
			"hash":          "0x00000000000000000000000000000000000000000000000000000000000000aa",
			"timestamp":     "0x65a2c0ff",
			"gasUsed":       "0xa410",
			"size":          "0x400",
			"baseFeePerGas": "0x4a817c800",
			"transactions": []string{
				"0x0000000000000000000000000000000000000000000000000000000000000001",
				"0x0000000000000000000000000000000000000000000000000000000000000002",
			},
		}, nil
	case "eth_getBlockReceipts":
		return []map[string]any{
			{
				"transactionHash":   "0x0000000000000000000000000000000000000000000000000000000000000001",
				"gasUsed":           "0x5208",
				"effectiveGasPrice": "0x4a817c800",
			},
			{
				"transactionHash":   "0x0000000000000000000000000000000000000000000000000000000000000002",
				"gasUsed":           "0x5208",
				"effectiveGasPrice": "0x9502f9000",
			},
		}, nil
	}
	return nil, &rpcErrorBody{Code: -32601, Message: "method not found"}
}

func newProvider(t *testing.T, defs ...entity.NetworkDefinition) *EVMClientProvider {
	t.Helper()
	p := NewEVMClientProvider(
		networkdefinition.NewNetworkDefinitionProvider(logger.NewNop(), defs),
		configloader.RPCConfig{ConnectionTimeoutMs: 1000},
		2*time.Second,
		logger.NewNop(),
	)
	t.Cleanup(p.Close)
	return p
}

func TestFetchLatestBlock_RPC(t *testing.T) {
	srv, _ := newRPCServer(t, londonAnswers)
	p := newProvider(t, entity.NetworkDefinition{Identifier: "eth", PrimaryRPCURL: srv.URL})

	block, err := p.FetchLatestBlock(context.Background(), "eth")

	require.NoError(t, err)
	assert.Equal(t, "16", block.Number)
	assert.Equal(t, "2024-01-13T16:57:35.000Z", block.Timestamp)
	assert.Equal(t, "42000", block.GasUsed)
	assert.Equal(t, "2", block.TransactionCount)
	assert.Equal(t, "1024", block.Size)
	assert.Equal(t, "20000000000", block.BaseFeePerGas)
	require.Len(t, block.Transactions, 2)
	// 21000 gas at 20 gwei and at 40 gwei
	assert.Equal(t, "0.00042", block.Transactions[0].TransactionFee)
	assert.Equal(t, "0.00084", block.Transactions[1].TransactionFee)
}

func TestFetchLatestBlock_ClientIsCached(t *testing.T) {
	srv, _ := newRPCServer(t, londonAnswers)
	p := newProvider(t, entity.NetworkDefinition{Identifier: "eth", PrimaryRPCURL: srv.URL})

	first, err := p.GetClient("eth")
	require.NoError(t, err)
	second, err := p.GetClient("eth")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestFetchLatestBlock_FallbackURL(t *testing.T) {
	srv, _ := newRPCServer(t, londonAnswers)
	p := newProvider(t, entity.NetworkDefinition{
		Identifier:      "eth",
		PrimaryRPCURL:   "unsupported-scheme://nowhere",
		FallbackRPCURLs: []string{srv.URL},
	})

	block, err := p.FetchLatestBlock(context.Background(), "eth")

	require.NoError(t, err)
	assert.Equal(t, "16", block.Number)
}

func TestFetchLatestBlock_UnknownNetwork(t *testing.T) {
	p := newProvider(t)

	_, err := p.FetchLatestBlock(context.Background(), "solana")

	assert.ErrorIs(t, err, entity.ErrUnknownNetwork)
	assert.ErrorIs(t, err, entity.ErrTransport)
}

func TestFetchLatestBlock_RPCErrors(t *testing.T) {
	tests := []struct {
		name    string
		answer  func(string) (any, *rpcErrorBody)
		wantErr error
	}{
		{
			name: "receipts not supported",
			answer: func(m string) (any, *rpcErrorBody) {
				if m == "eth_getBlockReceipts" {
					return nil, &rpcErrorBody{Code: -32601, Message: "method not found"}
				}
				return londonAnswers(m)
			},
			wantErr: entity.ErrTransport,
		},
		{
			name: "block not found",
			answer: func(m string) (any, *rpcErrorBody) {
				if m == "eth_getBlockByNumber" {
					return nil, nil
				}
				return londonAnswers(m)
			},
			wantErr: entity.ErrParse,
		},
		{
			name: "malformed block",
			answer: func(m string) (any, *rpcErrorBody) {
				if m == "eth_getBlockByNumber" {
					return map[string]any{"number": 16}, nil
				}
				return londonAnswers(m)
			},
			wantErr: entity.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newRPCServer(t, tt.answer)
			p := newProvider(t, entity.NetworkDefinition{Identifier: "eth", PrimaryRPCURL: srv.URL})

			_, err := p.FetchLatestBlock(context.Background(), "eth")

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestToRawBlock_PreLondon(t *testing.T) {
	raw := toRawBlock(&rpcBlock{Number: (*hexutil.Big)(big.NewInt(7)), Timestamp: 0}, nil)
	assert.Equal(t, "7", raw.Number)
	assert.Equal(t, "1970-01-01T00:00:00.000Z", raw.Timestamp)
	assert.Equal(t, "0", raw.BaseFeePerGas)
	assert.Empty(t, raw.Transactions)
}

func TestGetClient_SlowDialDoesNotBlockOtherNetworks(t *testing.T) {
	dialing := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		once.Do(func() { close(dialing) })
		<-release
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(slow.Close)
	defer close(release)

	fast, _ := newRPCServer(t, londonAnswers)
	p := newProvider(t,
		entity.NetworkDefinition{Identifier: "slow", PrimaryRPCURL: "ws" + strings.TrimPrefix(slow.URL, "http")},
		entity.NetworkDefinition{Identifier: "eth", PrimaryRPCURL: fast.URL},
	)

	slowDone := make(chan error, 1)
	go func() {
		_, err := p.GetClient("slow")
		slowDone <- err
	}()
	<-dialing

	start := time.Now()
	_, err := p.GetClient("eth")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	select {
	case <-slowDone:
		t.Fatal("slow dial finished before it was released")
	default:
	}
}
