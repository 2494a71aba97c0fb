package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/npsexplorer/explorer/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Redis         RedisConfig         `yaml:"redis"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	CORSOrigins     []string      `yaml:"cors_origins"`

	// TrustProxy makes the login limiter key on X-Forwarded-For / X-Real-IP
	TrustProxy bool `yaml:"trust_proxy"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	URL         string        `yaml:"url"`
	MaxConns    int           `yaml:"max_conns"`
	MinConns    int           `yaml:"min_conns"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxLifetime time.Duration `yaml:"max_lifetime"`
	MaxIdleTime time.Duration `yaml:"max_idle_time"`
	AutoMigrate bool          `yaml:"auto_migrate"`
}

// AuthConfig holds the credential settings
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	APIToken   string        `yaml:"api_token"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`

	LoginRateLimit  int           `yaml:"login_rate_limit"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`
	LoginRateBurst  int           `yaml:"login_rate_burst"`
}

// RedisConfig holds the optional Redis connection used by the login limiter
type RedisConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a Redis URL is configured
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`

	// Cron spec for pool statistics and limiter cleanup
	MaintenanceSchedule string `yaml:"maintenance_schedule"`

	OTelEnabled        bool    `yaml:"otel_enabled"`
	OTelEndpoint       string  `yaml:"otel_endpoint"`
	OTelServiceName    string  `yaml:"otel_service_name"`
	OTelServiceVersion string  `yaml:"otel_service_version"`
	OTelInsecure       bool    `yaml:"otel_insecure"`
	OTelSampleRatio    float64 `yaml:"otel_sample_ratio"`
}

// Level returns the parsed log level
func (o ObservabilityConfig) Level() observability.LogLevel {
	return observability.ParseLogLevel(o.LogLevel)
}

// OTel returns the tracing settings in the form InitOTel expects
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
		SampleRatio:    o.OTelSampleRatio,
	}
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
			CORSOrigins:     []string{"*"},
			HealthPort:      "9090",
		},
		Database: DatabaseConfig{
			MaxConns:    25,
			MinConns:    5,
			Timeout:     10 * time.Second,
			MaxLifetime: time.Hour,
			MaxIdleTime: 10 * time.Minute,
			AutoMigrate: true,
		},
		Auth: AuthConfig{
			TokenTTL:        24 * time.Hour,
			BcryptCost:      12,
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
		},
		Redis: RedisConfig{
			PoolSize: 10,
		},
		Observability: ObservabilityConfig{
			LogLevel:            "info",
			MetricsEnabled:      true,
			MaintenanceSchedule: "@every 30s",
			OTelEndpoint:        "localhost:4317",
			OTelServiceName:     "npsexplorer",
			OTelServiceVersion:  "1.0.0",
			OTelInsecure:        true,
			OTelSampleRatio:     1.0,
		},
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by NPS_CONFIG_FILE (if any), then NPS_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("NPS_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	s := &c.Server
	s.Host = getEnv("NPS_HOST", s.Host)
	s.Port = getEnv("NPS_PORT", s.Port)
	s.HealthPort = getEnv("NPS_HEALTH_PORT", s.HealthPort)
	s.ReadTimeout = getEnvDuration("NPS_READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = getEnvDuration("NPS_WRITE_TIMEOUT", s.WriteTimeout)
	s.IdleTimeout = getEnvDuration("NPS_IDLE_TIMEOUT", s.IdleTimeout)
	s.ShutdownTimeout = getEnvDuration("NPS_SHUTDOWN_TIMEOUT", s.ShutdownTimeout)
	s.MaxBodyBytes = getEnvInt64("NPS_MAX_BODY_BYTES", s.MaxBodyBytes)
	s.TrustProxy = getEnvBool("NPS_TRUST_PROXY", s.TrustProxy)
	if origins := getEnv("NPS_CORS_ORIGINS", ""); origins != "" {
		s.CORSOrigins = splitList(origins)
	}

	d := &c.Database
	d.URL = getEnv("NPS_DATABASE_URL", d.URL)
	d.MaxConns = getEnvInt("NPS_DATABASE_MAX_CONNS", d.MaxConns)
	d.MinConns = getEnvInt("NPS_DATABASE_MIN_CONNS", d.MinConns)
	d.Timeout = getEnvDuration("NPS_DATABASE_TIMEOUT", d.Timeout)
	d.MaxLifetime = getEnvDuration("NPS_DATABASE_MAX_LIFETIME", d.MaxLifetime)
	d.MaxIdleTime = getEnvDuration("NPS_DATABASE_MAX_IDLE_TIME", d.MaxIdleTime)
	d.AutoMigrate = getEnvBool("NPS_DATABASE_AUTO_MIGRATE", d.AutoMigrate)

	a := &c.Auth
	a.JWTSecret = getEnv("NPS_JWT_SECRET", a.JWTSecret)
	a.APIToken = getEnv("NPS_API_TOKEN", a.APIToken)
	a.TokenTTL = getEnvDuration("NPS_TOKEN_TTL", a.TokenTTL)
	a.BcryptCost = getEnvInt("NPS_BCRYPT_COST", a.BcryptCost)
	a.LoginRateLimit = getEnvInt("NPS_LOGIN_RATE_LIMIT", a.LoginRateLimit)
	a.LoginRateWindow = getEnvDuration("NPS_LOGIN_RATE_WINDOW", a.LoginRateWindow)
	a.LoginRateBurst = getEnvInt("NPS_LOGIN_RATE_BURST", a.LoginRateBurst)

	r := &c.Redis
	r.URL = getEnv("NPS_REDIS_URL", r.URL)
	r.PoolSize = getEnvInt("NPS_REDIS_POOL_SIZE", r.PoolSize)

	o := &c.Observability
	o.LogLevel = getEnv("NPS_LOG_LEVEL", o.LogLevel)
	o.MetricsEnabled = getEnvBool("NPS_METRICS_ENABLED", o.MetricsEnabled)
	o.MaintenanceSchedule = getEnv("NPS_MAINTENANCE_SCHEDULE", o.MaintenanceSchedule)
	o.OTelEnabled = getEnvBool("NPS_OTEL_ENABLED", o.OTelEnabled)
	o.OTelEndpoint = getEnv("NPS_OTEL_ENDPOINT", o.OTelEndpoint)
	o.OTelServiceName = getEnv("NPS_OTEL_SERVICE_NAME", o.OTelServiceName)
	o.OTelServiceVersion = getEnv("NPS_OTEL_SERVICE_VERSION", o.OTelServiceVersion)
	o.OTelInsecure = getEnvBool("NPS_OTEL_INSECURE", o.OTelInsecure)
	o.OTelSampleRatio = getEnvFloat("NPS_OTEL_SAMPLE_RATIO", o.OTelSampleRatio)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is required"))
	}
	if c.Server.HealthPort == "" {
		errs = append(errs, errors.New("health port is required"))
	}
	if c.Server.Port != "" && c.Server.Port == c.Server.HealthPort {
		errs = append(errs, errors.New("server port and health port must be different"))
	}

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database URL is required (NPS_DATABASE_URL)"))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, errors.New("database max conns must be positive"))
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, errors.New("database min conns must be between 0 and max conns"))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT secret is required (NPS_JWT_SECRET)"))
	}
	if c.Auth.APIToken == "" {
		errs = append(errs, errors.New("API token is required (NPS_API_TOKEN)"))
	}
	if c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("token TTL must not be negative"))
	}
	if c.Auth.LoginRateLimit <= 0 || c.Auth.LoginRateWindow <= 0 {
		errs = append(errs, errors.New("login rate limit and window must be positive"))
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			errs = append(errs, errors.New("OpenTelemetry endpoint is required when OTel is enabled"))
		}
		if c.Observability.OTelServiceName == "" {
			errs = append(errs, errors.New("OpenTelemetry service name is required when OTel is enabled"))
		}
	}

	return errors.Join(errs...)
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
