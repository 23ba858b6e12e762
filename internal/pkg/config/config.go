// internal/pkg/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Local store
	Store StoreConfig

	// Remote authority
	Remote RemoteConfig

	// Synchronization
	Sync SyncConfig

	// Product lookup
	Lookup LookupConfig

	// HTTP server
	Server ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// StoreConfig holds local store configuration
type StoreConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// RemoteConfig holds remote authority configuration
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
	OrgID   string
}

// SyncConfig holds synchronization configuration
type SyncConfig struct {
	Interval      time.Duration
	SettleDelay   time.Duration
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
	PullWindow    int
}

// LookupConfig holds product lookup configuration
type LookupConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GracefulTimeout   time.Duration
	RateLimitRequests int
	RateLimitDuration time.Duration
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	// Initialize viper
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetTypeByDefaultValue(true)

	// Set defaults
	setDefaults()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "shelfsyncd"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    getEnv("LOG_LEVEL", "debug"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		Store: StoreConfig{
			Path:        getEnv("STORE_PATH", "shelfsync.db"),
			BusyTimeout: getDurationEnv("STORE_BUSY_TIMEOUT", 5*time.Second),
		},
		Remote: RemoteConfig{
			BaseURL: getEnv("REMOTE_BASE_URL", "http://localhost:9000"),
			Timeout: getDurationEnv("REMOTE_TIMEOUT", 15*time.Second),
			OrgID:   getEnv("REMOTE_ORG_ID", ""),
		},
		Sync: SyncConfig{
			Interval:      getDurationEnv("SYNC_INTERVAL", 5*time.Minute),
			SettleDelay:   getDurationEnv("SYNC_SETTLE_DELAY", 3*time.Second),
			ProbeInterval: getDurationEnv("SYNC_PROBE_INTERVAL", 15*time.Second),
			ProbeTimeout:  getDurationEnv("SYNC_PROBE_TIMEOUT", 3*time.Second),
			PullWindow:    getIntEnv("SYNC_PULL_WINDOW", 200),
		},
		Lookup: LookupConfig{
			Endpoint: getEnv("LOOKUP_ENDPOINT", ""),
			Timeout:  getDurationEnv("LOOKUP_TIMEOUT", 5*time.Second),
		},
		Server: ServerConfig{
			Host:              getEnv("SERVER_HOST", "127.0.0.1"),
			Port:              getEnv("SERVER_PORT", "7490"),
			ReadTimeout:       getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:       getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:    getIntEnv("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			GracefulTimeout:   getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
			RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			RateLimitDuration: getDurationEnv("RATE_LIMIT_DURATION", time.Minute),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote base URL is required")
	}
	if !strings.HasPrefix(c.Remote.BaseURL, "http://") && !strings.HasPrefix(c.Remote.BaseURL, "https://") {
		return fmt.Errorf("remote base URL must be an http(s) URL")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	if c.Sync.PullWindow <= 0 {
		return fmt.Errorf("sync pull window must be positive")
	}
	if c.Server.RateLimitRequests <= 0 {
		return fmt.Errorf("rate limit requests must be positive")
	}
	return nil
}

// RemoteHostPort returns the host:port of the remote base URL, used by the
// connectivity prober.
func (c *Config) RemoteHostPort() string {
	addr := strings.TrimPrefix(c.Remote.BaseURL, "https://")
	addr = strings.TrimPrefix(addr, "http://")
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		addr = addr[:i]
	}
	if !strings.Contains(addr, ":") {
		if strings.HasPrefix(c.Remote.BaseURL, "https://") {
			addr += ":443"
		} else {
			addr += ":80"
		}
	}
	return addr
}

// GetServerAddress returns the formatted server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// Helper functions

func setDefaults() {
	viper.SetDefault("app.name", "shelfsyncd")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
