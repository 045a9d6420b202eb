package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"block_metrics/internal/app/port"
	"block_metrics/internal/app/service"
	"block_metrics/internal/domain/entity"
	"block_metrics/internal/infrastructure/configloader"
	"block_metrics/internal/infrastructure/moralis"
	evmclient "block_metrics/internal/infrastructure/network/client"
	networkdefinition "block_metrics/internal/infrastructure/network/definition"
	"block_metrics/internal/infrastructure/render"
	"block_metrics/internal/infrastructure/restapi"
	"block_metrics/internal/pkg/logger"
	"block_metrics/internal/pkg/metrics"
	"block_metrics/internal/pkg/utils"
)

const flagConfigPath = "config-path"

func initFlags() {
	flag.String(flagConfigPath, "", "config file path (default $CONFIG_PATH or "+configloader.DefaultConfigPath+")")
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}
}

func main() {
	initFlags()

	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %v", err)
	}

	configPath := viper.GetString(flagConfigPath)
	if configPath == "" {
		configPath = utils.GetEnv(configloader.EnvConfigPath, configloader.DefaultConfigPath)
	}

	cfg, err := configloader.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger := logger.Init(cfg.Logging)
	defer func() { _ = zapLogger.Sync() }()

	if err := cfg.Validate(); err != nil {
		zapLogger.Error("Invalid configuration", zap.Error(err))
		_ = zapLogger.Sync()
		os.Exit(1)
	}
	appLogger := logger.NewSlogAdapter()

	networkProvider := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.Networks)
	networks := entity.Identifiers(networkProvider.GetAllNetworkDefinitions())
	perNetworkTimeout := time.Duration(cfg.Aggregator.PerNetworkTimeoutMs) * time.Millisecond

	var dataSource port.BlockDataSource
	switch cfg.DataSource.Kind {
	case configloader.DataSourceRPC:
		provider := evmclient.NewEVMClientProvider(networkProvider, cfg.DataSource.RPC, perNetworkTimeout, appLogger)
		defer provider.Close()
		dataSource = provider
	default:
		dataSource = moralis.NewClient(cfg.DataSource.Moralis, zapLogger)
	}
	zapLogger.Info("Data source initialized", zap.String("kind", cfg.DataSource.Kind), zap.Strings("networks", networks))

	var observer port.FetchObserver
	routerOpts := restapi.RouterOptions{}
	if cfg.MetricsEnabled() {
		m := metrics.New()
		observer = m
		routerOpts.MetricsHandler = m.Handler()
		routerOpts.MetricsPath = cfg.Metrics.Path
	}

	aggregator := service.NewAggregatorService(
		dataSource, observer, appLogger, perNetworkTimeout, cfg.Aggregator.MaxConcurrentRequests)

	handler := restapi.NewMetricsHandler(
		aggregator,
		networks,
		render.NewHTMLRenderer(),
		render.NewJSONRenderer(),
		time.Duration(cfg.Cache.ReportTTLSeconds)*time.Second,
		zapLogger,
	)

	gin.SetMode(gin.ReleaseMode)
	router := restapi.SetupRouter(handler, routerOpts, zapLogger)

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server running at http://%s/metrics", cfg.ListenAddr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
