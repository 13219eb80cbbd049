package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends selectable via CASINO_STORE_BACKEND.
const (
	BackendJSON   = "json"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
		Env  string
	}
	Store struct {
		Backend string
		Path    string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Session struct {
		CookieName    string
		TTLHours      int
		RememberDays  int
		SecureCookies bool
	}
}

// Load reads configuration from environment variables and an optional
// config file in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load() // optional .env

	v := viper.New()
	v.SetEnvPrefix("CASINO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("store.backend", BackendJSON)
	v.SetDefault("store.path", "data/store.json")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.cookiename", "casino_session")
	v.SetDefault("session.ttlhours", 24)
	v.SetDefault("session.rememberdays", 30)
	v.SetDefault("session.securecookies", false)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendJSON, BackendRedis, BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in release mode.
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}
