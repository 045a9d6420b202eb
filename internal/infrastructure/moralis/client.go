package moralis

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"block_metrics/internal/app/port"
	"block_metrics/internal/domain/entity"
	"block_metrics/internal/infrastructure/configloader"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const apiKeyHeader = "X-API-Key"

// dateToBlockResponse is the answer of GET /dateToBlock.
type dateToBlockResponse struct {
	Block *int64 `json:"block"`
}

// Client fetches the latest block of a chain from the Moralis deep-index API.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

var _ port.BlockDataSource = (*Client)(nil)

// NewClient creates a new instance of Client.
func NewClient(cfg configloader.MoralisConfig, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{Name: "block_metrics"},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		logger:  logger.Named("MoralisClient"),
		now:     time.Now,
	}
}

// FetchLatestBlock resolves the block closest to now for the chain and returns its details.
func (c *Client) FetchLatestBlock(ctx context.Context, network string) (*entity.RawBlock, error) {
	number, err := c.dateToBlock(ctx, network, c.now())
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Resolved latest block number", zap.String("chain", network), zap.Int64("block", number))

	return c.blockByNumber(ctx, network, number)
}

func (c *Client) dateToBlock(ctx context.Context, chain string, at time.Time) (int64, error) {
	q := url.Values{}
	q.Set("chain", chain)
	q.Set("date", strconv.FormatInt(at.UnixMilli(), 10))
	requestURL := c.baseURL + "/dateToBlock?" + q.Encode()

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return 0, err
	}

	var resp dateToBlockResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%w: failed to unmarshal dateToBlock response for %s: %w", entity.ErrParse, chain, err)
	}
	if resp.Block == nil {
		return 0, fmt.Errorf("%w: dateToBlock for %s has no block", entity.ErrParse, chain)
	}
	return *resp.Block, nil
}

func (c *Client) blockByNumber(ctx context.Context, chain string, number int64) (*entity.RawBlock, error) {
	q := url.Values{}
	q.Set("chain", chain)
	requestURL := fmt.Sprintf("%s/block/%d?%s", c.baseURL, number, q.Encode())

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var block entity.RawBlock
	if err := json.Unmarshal(body, &block); err != nil {
		c.logger.Error("Failed to unmarshal block response",
			zap.String("chain", chain), zap.ByteString("responseBody", body), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to unmarshal block %d for %s: %w", entity.ErrParse, number, chain, err)
	}
	if block.Number == "" {
		return nil, fmt.Errorf("%w: block %d for %s has no number", entity.ErrParse, number, chain)
	}
	return &block, nil
}

// get performs an authenticated GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Warn("Request to Moralis failed", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("%w: request to %s: %w", entity.ErrTransport, requestURL, err)
	}

	// resp is released on return
	body := append([]byte(nil), resp.Body()...)
	if status := resp.StatusCode(); status < 200 || status > 299 {
		c.logger.Warn("Moralis API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", body))
		return nil, fmt.Errorf("%w: %s returned status %d: %s", entity.ErrTransport, requestURL, status, string(body))
	}
	return body, nil
}
