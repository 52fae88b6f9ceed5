package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the API and the worker.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Tables  TablesConfig  `mapstructure:"tables"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Winthor WinthorConfig `mapstructure:"winthor"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	// Timezone drives the "daily" dashboard window (local midnight).
	Timezone string `mapstructure:"timezone"`
	RunLocal bool   `mapstructure:"run_local"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type TablesConfig struct {
	Orders           string `mapstructure:"orders"`
	OrdersMovtoIndex string `mapstructure:"orders_movto_index"`
	OrdersKeyIndex   string `mapstructure:"orders_key_index"`
	Tenants          string `mapstructure:"tenants"`
	Audit            string `mapstructure:"audit"`
}

type QueueConfig struct {
	// EventsURL is optional; audit events are skipped when empty.
	EventsURL string `mapstructure:"events_url"`
}

type MetricsConfig struct {
	// Namespace is optional; CloudWatch metrics are disabled when empty.
	Namespace string `mapstructure:"namespace"`
}

// RedisConfig enables the shared token cache when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WinthorConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type AuthConfig struct {
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
}

// env names used by the deployment templates
var envBindings = map[string]string{
	"app.log_level":             "LOG_LEVEL",
	"app.timezone":              "TZ_NAME",
	"app.run_local":             "RUN_LOCAL",
	"http.addr":                 "HTTP_ADDR",
	"tables.orders":             "ORDERS_TABLE",
	"tables.orders_movto_index": "ORDERS_MOVTO_INDEX",
	"tables.orders_key_index":   "ORDERS_KEY_INDEX",
	"tables.tenants":            "TENANTS_TABLE",
	"tables.audit":              "AUDIT_TABLE",
	"queue.events_url":          "ORDERS_QUEUE_URL",
	"metrics.namespace":         "METRICS_NAMESPACE",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"winthor.timeout":           "WINTHOR_TIMEOUT",
	"winthor.token_ttl":         "WINTHOR_TOKEN_TTL",
	"auth.secret":               "NEXT_AUTH_SECRET",
	"auth.cookie_name":          "SESSION_COOKIE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "wta-connect")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.timezone", "America/Sao_Paulo")
	v.SetDefault("app.run_local", false)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("tables.orders", "order")
	v.SetDefault("tables.orders_movto_index", "idtenant-dt_movto-index")
	v.SetDefault("tables.orders_key_index", "chave_acesso-index")
	v.SetDefault("tables.tenants", "tenant")
	v.SetDefault("tables.audit", "order_audit")
	v.SetDefault("redis.db", 0)
	v.SetDefault("winthor.timeout", 15*time.Second)
	v.SetDefault("winthor.token_ttl", 6*time.Hour)
	v.SetDefault("auth.cookie_name", "session")
}

// Load reads the optional YAML file at path and overlays environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields every deployment needs.
func (c *Config) Validate() error {
	if c.Tables.Orders == "" {
		return fmt.Errorf("tables.orders is required")
	}
	if c.Tables.Tenants == "" {
		return fmt.Errorf("tables.tenants is required")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	if c.Winthor.Timeout <= 0 {
		return fmt.Errorf("winthor.timeout must be > 0")
	}
	if c.Winthor.TokenTTL <= 0 {
		return fmt.Errorf("winthor.token_ttl must be > 0")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid app.timezone %q: %w", c.App.Timezone, err)
	}
	return nil
}

// Location returns the configured reporting timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
