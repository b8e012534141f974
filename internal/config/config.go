package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Store modes
const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Local     LocalConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port       string
	Env        string
	LogLevel   string
	TrustProxy bool // honor X-Forwarded-For / X-Real-IP
}

type StoreConfig struct {
	// Mode is "remote" (database with local fallback) or "local" (local mirror only)
	Mode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

type LocalConfig struct {
	Driver string // file, sqlite or memory
	Path   string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
	SessionTTL   int // in hours
}

type RateLimitConfig struct {
	ClickRequests int
	ClickWindow   int // in seconds
}

type CORSConfig struct {
	AllowedOrigins []string
}

// IsDevelopment reports whether the server runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("TRUST_PROXY", false)
	viper.SetDefault("STORE_MODE", ModeRemote)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOCAL_DRIVER", "file")
	viper.SetDefault("LOCAL_PATH", "data")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 60)
	viper.SetDefault("SESSION_TTL", 24)
	viper.SetDefault("CLICK_RATE_LIMIT", 60)
	viper.SetDefault("CLICK_RATE_WINDOW", 60)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:       viper.GetString("SERVER_PORT"),
			Env:        viper.GetString("SERVER_ENV"),
			LogLevel:   viper.GetString("LOG_LEVEL"),
			TrustProxy: viper.GetBool("TRUST_PROXY"),
		},
		Store: StoreConfig{
			Mode: strings.ToLower(viper.GetString("STORE_MODE")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Local: LocalConfig{
			Driver: strings.ToLower(viper.GetString("LOCAL_DRIVER")),
			Path:   viper.GetString("LOCAL_PATH"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
			SessionTTL:   viper.GetInt("SESSION_TTL"),
		},
		RateLimit: RateLimitConfig{
			ClickRequests: viper.GetInt("CLICK_RATE_LIMIT"),
			ClickWindow:   viper.GetInt("CLICK_RATE_WINDOW"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
