package restapi

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"block_metrics/internal/app/service"
	"block_metrics/internal/domain/entity"
	"block_metrics/internal/infrastructure/render"
	"block_metrics/internal/pkg/logger"
)

type scriptedSource map[string]*entity.RawBlock

func (s scriptedSource) FetchLatestBlock(_ context.Context, network string) (*entity.RawBlock, error) {
	if b, ok := s[network]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s returned status 503", entity.ErrTransport, network)
}

func newPipeline(src scriptedSource, networks []string) *MetricsHandler {
	agg := service.NewAggregatorService(src, nil, logger.NewNop(), time.Second, 0)
	return NewMetricsHandler(agg, networks, render.NewHTMLRenderer(), render.NewJSONRenderer(), 0, zap.NewNop())
}

func TestPipeline_OneNetworkFails(t *testing.T) {
	src := scriptedSource{"eth": {
		Number:        "100",
		GasUsed:       "21000",
		Size:          "500",
		BaseFeePerGas: "7",
		Transactions:  []entity.RawTransaction{{TransactionFee: "0.002"}},
	}}
	router := SetupRouter(newPipeline(src, []string{"eth", "polygon"}), RouterOptions{}, zap.NewNop())

	rec := get(t, router, "/metrics?format=json")
	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"metrics":[{
		"blockchain":"eth","block_number":"100","timestamp":"","gas_used":"21000 gas",
		"transaction_count":"","block_size":"500 bytes","transaction_fees":"0.002000 ETH",
		"base_fee_per_gas":"7 Wei"}]}`, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get(HeaderFailedNetworks))

	rec = get(t, router, "/metrics")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `<tr class="metric-row">`))
	assert.Contains(t, rec.Body.String(), "<td>0.002000 ETH</td>")
}

func TestPipeline_AllNetworksFail(t *testing.T) {
	router := SetupRouter(newPipeline(scriptedSource{}, []string{"eth", "polygon", "bsc"}), RouterOptions{}, zap.NewNop())

	rec := get(t, router, "/metrics")

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Blockchain Metrics</title>")
	assert.Contains(t, rec.Body.String(), `class="legend"`)
	assert.Zero(t, strings.Count(rec.Body.String(), `class="metric-row"`))
	assert.Equal(t, "3", rec.Header().Get(HeaderFailedNetworks))
}
