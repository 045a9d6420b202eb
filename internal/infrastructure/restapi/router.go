package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"block_metrics/internal/infrastructure/configloader"
)

// RouterOptions configures the optional routes.
type RouterOptions struct {
	// MetricsHandler serves Prometheus metrics at MetricsPath. Nil disables the route.
	MetricsHandler http.Handler
	MetricsPath    string
}

// SetupRouter builds the gin engine with CORS, access logging and recovery.
func SetupRouter(metricsHandler *MetricsHandler, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.ExposeHeaders = []string{HeaderFailedNetworks}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(logger.Named("http")))
	router.Use(gin.Recovery())

	router.GET(configloader.ReportPath, metricsHandler.GetMetricsHandler)
	router.GET(configloader.HealthPath, HealthHandler)

	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(opts.MetricsHandler))
		logger.Info("Prometheus metrics endpoint enabled", zap.String("path", opts.MetricsPath))
	}

	return router
}
