package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Overpass  OverpassConfig  `mapstructure:"overpass"`
	Search    SearchConfig    `mapstructure:"search"`
	Wage      WageConfig      `mapstructure:"wage"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

// OverpassConfig controls the external POI gateway. When Enabled is false the
// gateway short-circuits to empty results without touching the network.
type OverpassConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (o OverpassConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// SearchConfig carries the ranking knobs. The 60/40 split encodes product
// judgment, not mathematical necessity, so it is configurable.
type SearchConfig struct {
	DefaultRadiusKm float64 `mapstructure:"default_radius_km"`
	MaxRadiusKm     float64 `mapstructure:"max_radius_km"`
	TextWeight      float64 `mapstructure:"text_weight"`
	ProximityWeight float64 `mapstructure:"proximity_weight"`
}

// WageConfig carries the hourly plausibility band in minor units.
type WageConfig struct {
	MinHourlyCents int64 `mapstructure:"min_hourly_cents"`
	MaxHourlyCents int64 `mapstructure:"max_hourly_cents"`
}

type StatsConfig struct {
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes"`
}

func (s StatsConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLMinutes) * time.Minute
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fairwage")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "fairwage")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("overpass.enabled", true)
	v.SetDefault("overpass.endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_seconds", 10)
	v.SetDefault("search.default_radius_km", 10.0)
	v.SetDefault("search.max_radius_km", 50.0)
	v.SetDefault("search.text_weight", 0.6)
	v.SetDefault("search.proximity_weight", 0.4)
	v.SetDefault("wage.min_hourly_cents", 200)
	v.SetDefault("wage.max_hourly_cents", 20000)
	v.SetDefault("stats.cache_ttl_minutes", 15)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: FAIRWAGE_DATABASE_HOST -> database.host
	v.SetEnvPrefix("FAIRWAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Overpass.Enabled && c.Overpass.Endpoint == "" {
		errs = append(errs, "overpass.endpoint is required when overpass is enabled")
	}
	if c.Overpass.TimeoutSeconds <= 0 {
		errs = append(errs, "overpass.timeout_seconds must be positive")
	}
	if c.Search.DefaultRadiusKm <= 0 || c.Search.DefaultRadiusKm > c.Search.MaxRadiusKm {
		errs = append(errs, "search.default_radius_km must be positive and <= max_radius_km")
	}
	if w := c.Search.TextWeight + c.Search.ProximityWeight; w < 0.99 || w > 1.01 {
		errs = append(errs, fmt.Sprintf("search weights must sum to 1.0, got %.2f", w))
	}
	if c.Wage.MinHourlyCents <= 0 || c.Wage.MaxHourlyCents <= c.Wage.MinHourlyCents {
		errs = append(errs, "wage.min_hourly_cents must be positive and below max_hourly_cents")
	}
	if c.Stats.CacheTTLMinutes <= 0 {
		errs = append(errs, "stats.cache_ttl_minutes must be positive")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
