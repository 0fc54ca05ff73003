package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete auction backend configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Realtime    RealtimeConfig    `mapstructure:"realtime"`
	AutoAdvance AutoAdvanceConfig `mapstructure:"auto_advance"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	// Port is the listen port; the PORT environment variable overrides it
	Port int `mapstructure:"port"`
	// FrontendURL is the origin allowed by CORS
	FrontendURL string `mapstructure:"frontend_url"`
	// ReconcileOnStart runs the orphaned-reference repair before serving
	ReconcileOnStart bool `mapstructure:"reconcile_on_start"`
}

// DatabaseConfig controls the MySQL connection and pool
type DatabaseConfig struct {
	DSN                    string `mapstructure:"dsn"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

// RedisConfig controls the optional Redis connection used for cross-instance
// broadcast and short-lived caches. Leave Addr empty to run without Redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// RealtimeConfig controls viewer fan-out
type RealtimeConfig struct {
	// Channel is the Redis pub/sub channel carrying events between instances
	Channel string `mapstructure:"channel"`
	// SendBuffer is the per-viewer queue length before a slow viewer is dropped
	SendBuffer int `mapstructure:"send_buffer"`
}

// AutoAdvanceConfig controls the pool auto-advance timers
type AutoAdvanceConfig struct {
	// LegacyTimers keeps fire-and-forget timers that are never cancelled
	LegacyTimers bool `mapstructure:"legacy_timers"`
}

// LogConfig controls structured logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format is "text" or "json"
	Format string `mapstructure:"format"`
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// ConnMaxLifetime returns the connection lifetime as a time.Duration
func (c *DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             5000,
			FrontendURL:      "http://localhost:5173",
			ReconcileOnStart: true,
		},
		Database: DatabaseConfig{
			DSN:                    "root:123456@tcp(localhost:3306)/auction?charset=utf8mb4&parseTime=True&loc=Local",
			MaxIdleConns:           10,
			MaxOpenConns:           100,
			ConnMaxLifetimeMinutes: 60,
			AutoMigrate:            true,
		},
		Redis: RedisConfig{
			PoolSize: 100,
		},
		Realtime: RealtimeConfig{
			Channel:    "auction:events",
			SendBuffer: 64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.frontend_url", d.Server.FrontendURL)
	v.SetDefault("server.reconcile_on_start", d.Server.ReconcileOnStart)

	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime_minutes", d.Database.ConnMaxLifetimeMinutes)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)

	v.SetDefault("realtime.channel", d.Realtime.Channel)
	v.SetDefault("realtime.send_buffer", d.Realtime.SendBuffer)

	v.SetDefault("auto_advance.legacy_timers", d.AutoAdvance.LegacyTimers)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration from an optional file and the environment.
// Environment variables use the AUCTION_ prefix with dots replaced by
// underscores, e.g. AUCTION_DATABASE_DSN. PORT and FRONTEND_URL are honored
// without prefix.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("auction")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/auction")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	v.SetEnvPrefix("AUCTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "AUCTION_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.frontend_url", "AUCTION_SERVER_FRONTEND_URL", "FRONTEND_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
