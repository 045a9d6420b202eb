package restapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"block_metrics/internal/app/port"
)

// Report formats accepted by the format query parameter.
const (
	FormatHTML = "html"
	FormatJSON = "json"
)

// HeaderFailedNetworks carries the number of networks missing from a report.
const HeaderFailedNetworks = "X-Failed-Networks"

type cachedReport struct {
	contentType string
	body        []byte
	failed      int
}

// MetricsHandler serves the aggregated block metrics report.
type MetricsHandler struct {
	aggregator port.AggregatorService
	networks   []string
	renderers  map[string]port.Renderer
	reports    *cache.Cache
	logger     *zap.Logger
}

// NewMetricsHandler creates a new instance of MetricsHandler.
// reportTTL <= 0 disables the report cache, so every request aggregates.
func NewMetricsHandler(
	aggregator port.AggregatorService,
	networks []string,
	htmlRenderer port.Renderer,
	jsonRenderer port.Renderer,
	reportTTL time.Duration,
	logger *zap.Logger,
) *MetricsHandler {
	h := &MetricsHandler{
		aggregator: aggregator,
		networks:   append([]string(nil), networks...),
		renderers: map[string]port.Renderer{
			FormatHTML: htmlRenderer,
			FormatJSON: jsonRenderer,
		},
		logger: logger.Named("MetricsHandler"),
	}
	if reportTTL > 0 {
		h.reports = cache.New(reportTTL, 2*reportTTL)
	}
	return h
}

// GetMetricsHandler aggregates the configured networks and renders the report.
// It always answers 200; networks that failed are left out of the report.
func (h *MetricsHandler) GetMetricsHandler(c *gin.Context) {
	format := c.DefaultQuery("format", FormatHTML)
	renderer, ok := h.renderers[format]
	if !ok {
		format, renderer = FormatHTML, h.renderers[FormatHTML]
	}

	if h.reports != nil {
		if cached, found := h.reports.Get(format); found {
			report := cached.(cachedReport)
			h.logger.Debug("Serving cached report", zap.String("format", format))
			c.Header(HeaderFailedNetworks, strconv.Itoa(report.failed))
			c.Data(http.StatusOK, report.contentType, report.body)
			return
		}
	}

	ctx := c.Request.Context()
	result := h.aggregator.Aggregate(ctx, h.networks)
	if result.Degraded() {
		failed := make([]string, 0, len(result.Failures))
		for _, f := range result.Failures {
			failed = append(failed, f.Network+":"+f.Reason)
		}
		h.logger.Warn("Serving degraded report", zap.Strings("failed", failed), zap.Int("rows", len(result.Metrics)))
	}

	report := cachedReport{
		contentType: renderer.ContentType(),
		body:        renderer.Render(result.Metrics),
		failed:      len(result.Failures),
	}
	// a report built for a caller that went away only reflects that caller
	if h.reports != nil && ctx.Err() == nil {
		h.reports.SetDefault(format, report)
	}

	c.Header(HeaderFailedNetworks, strconv.Itoa(report.failed))
	c.Data(http.StatusOK, report.contentType, report.body)
}

// HealthHandler reports liveness without touching upstreams.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
