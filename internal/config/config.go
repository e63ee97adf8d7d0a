package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultBaseURL = "https://service.zohal.io/api/v0/services"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Audit     AuditConfig     `mapstructure:"audit"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug / release / test
	// Proxies whose X-Forwarded-For is believed. Empty means use the socket address.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// UpstreamConfig describes the partner inquiry API every method is relayed to.
type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryAttempts  int    `mapstructure:"retry_attempts"`
	RetryDelayMs   int    `mapstructure:"retry_delay_ms"`
}

func (u UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

func (u UpstreamConfig) RetryDelay() time.Duration {
	if u.RetryDelayMs < 0 {
		return 0
	}
	return time.Duration(u.RetryDelayMs) * time.Millisecond
}

type AuthConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	APIKeys   []string `mapstructure:"api_keys"`
	JWTSecret string   `mapstructure:"jwt_secret"`
	AdminKey  string   `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver"` // postgres or sqlite
	DSN                    string `mapstructure:"dsn"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	AuditListKey string `mapstructure:"audit_list_key"`
	AuditListMax int    `mapstructure:"audit_list_max"`
}

type AuditConfig struct {
	WriteTimeoutMs int `mapstructure:"write_timeout_ms"`
	BufferSize     int `mapstructure:"buffer_size"`
}

func (a AuditConfig) WriteTimeout() time.Duration {
	if a.WriteTimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(a.WriteTimeoutMs) * time.Millisecond
}

type RateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"` // <= 0 disables the limiter
	Burst int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// legacyEnv maps the variable names used by the original package deployments.
var legacyEnv = map[string]string{
	"upstream.base_url":        "ZOHAL_BASE_URL",
	"upstream.token":           "ZOHAL_TOKEN",
	"upstream.timeout_seconds": "ZOHAL_TIMEOUT",
	"upstream.retry_attempts":  "ZOHAL_RETRY_ATTEMPTS",
	"upstream.retry_delay_ms":  "ZOHAL_RETRY_DELAY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("log.level", "info")

	v.SetDefault("upstream.base_url", DefaultBaseURL)
	v.SetDefault("upstream.token", "")
	v.SetDefault("upstream.timeout_seconds", 30)
	v.SetDefault("upstream.retry_attempts", 3)
	v.SetDefault("upstream.retry_delay_ms", 1000)

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.api_keys", []string{})
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_key", "")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime_minutes", 60)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.audit_list_key", "inquiry_logs")
	v.SetDefault("redis.audit_list_max", 10000)

	v.SetDefault("audit.write_timeout_ms", 5000)
	v.SetDefault("audit.buffer_size", 1000)

	v.SetDefault("rate_limit.qps", 0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads .env (if any), config.yaml (if any) and the environment.
// e.g. INQUIRYGATE_UPSTREAM_TOKEN or the legacy ZOHAL_TOKEN
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Println("No config file found, using defaults and env vars")
	}
	return FromViper(v)
}

// FromViper binds env vars and defaults onto v and decodes the result.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("inquirygate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range legacyEnv {
		prefixed := "INQUIRYGATE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Auth.APIKeys = splitKeys(cfg.Auth.APIKeys)
	cfg.Server.TrustedProxies = splitKeys(cfg.Server.TrustedProxies)
	return &cfg, nil
}

// splitKeys accepts both list values and a single comma separated env value.
func splitKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, raw := range keys {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}
