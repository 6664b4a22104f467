package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Search      SearchConfig     `mapstructure:"search"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig application settings
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig LLM provider settings
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SearchConfig similarity search settings. Backend selects the index
// implementation once at startup: "local" for the in-process vector index,
// "remote" for Postgres/pgvector.
type SearchConfig struct {
	Backend             string  `mapstructure:"backend"`
	ModelPath           string  `mapstructure:"model_path"`
	CorpusPath          string  `mapstructure:"corpus_path"`
	PostgresDSN         string  `mapstructure:"postgres_dsn"`
	TopK                int     `mapstructure:"top_k"`
	EscalationThreshold float64 `mapstructure:"escalation_threshold"`
	ExactThreshold      float64 `mapstructure:"exact_threshold"`
	MatchThreshold      float64 `mapstructure:"match_threshold"`
	AppendRawQuery      bool    `mapstructure:"append_raw_query"`
	DefaultUnit         string  `mapstructure:"default_unit"`
}

// CacheConfig candidate cache settings
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig LLM request queue settings
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig rate limit settings
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig loads configuration from .env and environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional in deployed environments
		fmt.Println("Warning: .env file not found")
	}

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("search.backend", "SEARCH_BACKEND")
	viper.BindEnv("search.model_path", "SEARCH_MODEL_PATH")
	viper.BindEnv("search.corpus_path", "SEARCH_CORPUS_PATH")
	viper.BindEnv("search.postgres_dsn", "SEARCH_POSTGRES_DSN")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis_addr", "CACHE_REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Logger is not initialized yet, use fmt
	fmt.Println("Loading configuration",
		"search_backend:", viper.GetString("search.backend"),
		"openrouter_api_key:", maskAPIKey(viper.GetString("openrouter.api_key")),
		"openrouter_model:", viper.GetString("openrouter.model"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey masks an API key, leaving the first and last 4 characters
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	// Application
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "nutrimori-ai")

	// Server
	viper.SetDefault("server.port", 5050)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// OpenRouter
	viper.SetDefault("openrouter.enabled", true)
	viper.SetDefault("openrouter.model", "google/gemini-2.0-flash-001")
	viper.SetDefault("openrouter.max_tokens", 512)
	viper.SetDefault("openrouter.timeout", "30s")

	// Search
	viper.SetDefault("search.backend", "local")
	viper.SetDefault("search.model_path", "models/all-MiniLM-L6-v2")
	viper.SetDefault("search.corpus_path", "data/food_corpus.json")
	viper.SetDefault("search.top_k", 5)
	viper.SetDefault("search.escalation_threshold", 0.5)
	viper.SetDefault("search.exact_threshold", 0.90)
	viper.SetDefault("search.match_threshold", 0.3)
	viper.SetDefault("search.append_raw_query", false)
	viper.SetDefault("search.default_unit", "porsi")

	// Cache
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// Queue
	viper.SetDefault("queue.workers", 5)
	viper.SetDefault("queue.max_size", 100)

	// Rate limit
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("dedup_window", "1s")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Search.Backend {
	case "local":
		if config.Search.CorpusPath == "" {
			return fmt.Errorf("search corpus path is required for local backend")
		}
	case "remote":
		if config.Search.PostgresDSN == "" {
			return fmt.Errorf("postgres dsn is required for remote backend")
		}
	default:
		return fmt.Errorf("unknown search backend: %s", config.Search.Backend)
	}

	if config.Search.TopK <= 0 {
		return fmt.Errorf("invalid search top_k")
	}
	if config.Search.EscalationThreshold < 0 || config.Search.EscalationThreshold > 1 {
		return fmt.Errorf("invalid escalation threshold")
	}
	if config.Search.ExactThreshold < 0 || config.Search.ExactThreshold > 1 {
		return fmt.Errorf("invalid exact threshold")
	}

	if config.Cache.Enabled {
		if config.Cache.Backend != "memory" && config.Cache.Backend != "redis" {
			return fmt.Errorf("unknown cache backend: %s", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	return nil
}
