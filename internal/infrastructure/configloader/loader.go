package configloader

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"block_metrics/internal/domain/entity"
	networkdefinition "block_metrics/internal/infrastructure/network/definition"
)

// Environment variables that override file values.
const (
	EnvPort          = "PORT"
	EnvMoralisAPIKey = "MORALIS_API_KEY"
	EnvLogLevel      = "LOG_LEVEL"
	EnvConfigPath    = "CONFIG_PATH"
)

// Data source kinds.
const (
	DataSourceMoralis = "moralis"
	DataSourceRPC     = "rpc"
)

const (
	DefaultConfigPath     = "config/config.yaml"
	DefaultHost           = "127.0.0.1"
	DefaultPort           = "3030"
	DefaultMoralisBaseURL = "https://deep-index.moralis.io/api/v2.2"
	DefaultMetricsPath    = "/prometheus"
)

// Built-in routes that metrics.path must not shadow.
const (
	ReportPath = "/metrics"
	HealthPath = "/healthz"
)

// ServerConfig holds the inbound HTTP settings. Timeouts are in seconds.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// MoralisConfig holds the Moralis deep-index API settings.
type MoralisConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// RPCConfig holds settings for the JSON-RPC data source.
type RPCConfig struct {
	ConnectionTimeoutMs int64 `yaml:"connectionTimeoutMs"`
}

// DataSourceConfig selects and configures the upstream block source.
type DataSourceConfig struct {
	Kind    string        `yaml:"kind"`
	Moralis MoralisConfig `yaml:"moralis"`
	RPC     RPCConfig     `yaml:"rpc"`
}

// AggregatorConfig bounds the per-network fan-out.
type AggregatorConfig struct {
	PerNetworkTimeoutMs   int64 `yaml:"perNetworkTimeoutMs"`
	MaxConcurrentRequests int   `yaml:"maxConcurrentRequests"` // 0 means one goroutine per network
}

// CacheConfig configures the rendered report cache. Zero TTL disables it.
type CacheConfig struct {
	ReportTTLSeconds int `yaml:"reportTTLSeconds"`
}

// LoggingConfig holds logging settings. File enables a rotated log file next to stdout.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig               `yaml:"server"`
	Networks   []entity.NetworkDefinition `yaml:"networks"`
	DataSource DataSourceConfig           `yaml:"dataSource"`
	Aggregator AggregatorConfig           `yaml:"aggregator"`
	Cache      CacheConfig                `yaml:"cache"`
	Logging    LoggingConfig              `yaml:"logging"`
	Metrics    MetricsConfig              `yaml:"metrics"`
}

// Load reads the YAML file at path, applies environment overrides and defaults.
// A missing file is not an error: the compiled-in defaults are used instead.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	logrus.Infof("Configuration loaded: %d networks, data source %q", len(cfg.Networks), cfg.DataSource.Kind)
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPort); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(EnvMoralisAPIKey); v != "" {
		c.DataSource.Moralis.APIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120
	}

	if len(c.Networks) == 0 {
		c.Networks = networkdefinition.DefaultNetworks()
		logrus.Infof("No networks configured, defaulting to %s", strings.Join(entity.Identifiers(c.Networks), ","))
	}

	if c.DataSource.Kind == "" {
		c.DataSource.Kind = DataSourceMoralis
	}
	c.DataSource.Kind = strings.ToLower(c.DataSource.Kind)
	if c.DataSource.Moralis.BaseURL == "" {
		c.DataSource.Moralis.BaseURL = DefaultMoralisBaseURL
	}
	if c.DataSource.Moralis.RequestTimeoutMillis == 0 {
		c.DataSource.Moralis.RequestTimeoutMillis = 10000
	}
	if c.DataSource.RPC.ConnectionTimeoutMs == 0 {
		c.DataSource.RPC.ConnectionTimeoutMs = 10000
	}

	if c.Aggregator.PerNetworkTimeoutMs == 0 {
		c.Aggregator.PerNetworkTimeoutMs = 10000
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}

	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate reports every configuration problem that must stop the service from starting.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.PortNumber(); err != nil {
		errs = append(errs, err)
	}

	if len(c.Networks) == 0 {
		errs = append(errs, errors.New("no networks configured"))
	}
	seen := make(map[string]struct{}, len(c.Networks))
	for i, n := range c.Networks {
		if n.Identifier == "" {
			errs = append(errs, fmt.Errorf("network #%d has no identifier", i))
			continue
		}
		if _, dup := seen[n.Identifier]; dup {
			errs = append(errs, fmt.Errorf("network %q is configured more than once", n.Identifier))
		}
		seen[n.Identifier] = struct{}{}
	}

	switch c.DataSource.Kind {
	case DataSourceMoralis:
		if c.DataSource.Moralis.APIKey == "" {
			errs = append(errs, fmt.Errorf("%s must be set for the %s data source", EnvMoralisAPIKey, DataSourceMoralis))
		}
	case DataSourceRPC:
		for _, n := range c.Networks {
			if len(n.RPCURLs()) == 0 {
				errs = append(errs, fmt.Errorf("network %q has no RPC URLs for the %s data source", n.Identifier, DataSourceRPC))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown data source kind %q", c.DataSource.Kind))
	}

	if c.Aggregator.PerNetworkTimeoutMs < 0 {
		errs = append(errs, errors.New("aggregator.perNetworkTimeoutMs must not be negative"))
	}
	if c.Aggregator.MaxConcurrentRequests < 0 {
		errs = append(errs, errors.New("aggregator.maxConcurrentRequests must not be negative"))
	}
	if c.Cache.ReportTTLSeconds < 0 {
		errs = append(errs, errors.New("cache.reportTTLSeconds must not be negative"))
	}

	if c.MetricsEnabled() {
		switch {
		case !strings.HasPrefix(c.Metrics.Path, "/"):
			errs = append(errs, fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
		case c.Metrics.Path == ReportPath || c.Metrics.Path == HealthPath:
			errs = append(errs, fmt.Errorf("metrics.path %q collides with a built-in route", c.Metrics.Path))
		}
	}

	return errors.Join(errs...)
}

// PortNumber parses the configured port.
func (c *Config) PortNumber() (uint16, error) {
	p, err := strconv.ParseUint(strings.TrimSpace(c.Server.Port), 10, 16)
	if err != nil || p == 0 {
		return 0, fmt.Errorf("port %q must be a number between 1 and 65535", c.Server.Port)
	}
	return uint16(p), nil
}

// ListenAddr returns host:port for the HTTP server.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, strings.TrimSpace(c.Server.Port))
}

// MetricsEnabled reports whether the Prometheus endpoint is served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}
