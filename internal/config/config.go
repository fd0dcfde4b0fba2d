package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// Config holds all configuration for the image organizer.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	LogLevel        slog.Level
	APIKeyHash      string
	RateLimitPerMin int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// DatabaseConfig configures the placement ledger. An empty URL disables it.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the description cache and rate limiter. An empty URL disables both.
type RedisConfig struct {
	URL            string
	DescriptionTTL time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Ollama           OllamaConfig
	VLLM             VLLMConfig
	OpenAI           OpenAIConfig
}

type OllamaConfig struct {
	BaseURL    string
	Model      string
	EmbedModel string
}

type VLLMConfig struct {
	BaseURL    string
	Model      string
	EmbedModel string
}

type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	EmbedModel string
}

// JobsConfig sizes the worker pool and supplies defaults for job settings.
type JobsConfig struct {
	Workers   int
	QueueSize int
	Defaults  models.Settings
}

// DefaultModel returns the captioning model of the selected provider.
func (c AIConfig) DefaultModel() string {
	switch c.Provider {
	case "openai":
		return c.OpenAI.Model
	case "vllm":
		return c.VLLM.Model
	default:
		return c.Ollama.Model
	}
}

var validProviders = map[string]bool{
	"ollama": true,
	"vllm":   true,
	"openai": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any value is invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("ORGANIZER_PORT", 8080),
			Env:             envString("ORGANIZER_ENV", "development"),
			LogLevel:        envLogLevel("LOG_LEVEL", slog.LevelInfo),
			APIKeyHash:      os.Getenv("ORGANIZER_API_KEY_HASH"),
			RateLimitPerMin: envInt("ORGANIZER_RATE_LIMIT_PER_MIN", 60),
			ReadTimeout:     envDuration("ORGANIZER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    envDuration("ORGANIZER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:            os.Getenv("REDIS_URL"),
			DescriptionTTL: envDuration("DESCRIPTION_CACHE_TTL", 720*time.Hour),
		},
		AI: AIConfig{
			Provider:         envString("AI_PROVIDER", "ollama"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 120*time.Second),
			Ollama: OllamaConfig{
				BaseURL:    envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:      envString("OLLAMA_MODEL", models.DefaultModel),
				EmbedModel: envString("OLLAMA_EMBED_MODEL", "all-minilm"),
			},
			VLLM: VLLMConfig{
				BaseURL:    envString("VLLM_BASE_URL", "http://localhost:8000/v1"),
				Model:      envString("VLLM_MODEL", ""),
				EmbedModel: envString("VLLM_EMBED_MODEL", ""),
			},
			OpenAI: OpenAIConfig{
				BaseURL:    envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				APIKey:     os.Getenv("OPENAI_API_KEY"),
				Model:      envString("OPENAI_MODEL", "gpt-4o-mini"),
				EmbedModel: envString("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
			},
		},
		Jobs: JobsConfig{
			Workers:   envInt("JOBS_WORKERS", 2),
			QueueSize: envInt("JOBS_QUEUE_SIZE", 32),
		},
	}

	defaults := models.DefaultSettings()
	cfg.Jobs.Defaults = models.Settings{
		Model:               cfg.AI.DefaultModel(),
		SimilarityThreshold: envFloat("DEFAULT_SIMILARITY_THRESHOLD", defaults.SimilarityThreshold),
		MinGroupSize:        envInt("DEFAULT_MIN_GROUP_SIZE", defaults.MinGroupSize),
		CopyFiles:           envBool("DEFAULT_COPY_FILES", defaults.CopyFiles),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("ORGANIZER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}
	if c.Database.URL != "" && !strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, vllm, openai; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "vllm" && (c.AI.VLLM.Model == "" || c.AI.VLLM.EmbedModel == "") {
		return fmt.Errorf("VLLM_MODEL and VLLM_EMBED_MODEL are required when AI_PROVIDER is vllm")
	}
	for key, u := range map[string]string{
		"OLLAMA_BASE_URL": c.AI.Ollama.BaseURL,
		"VLLM_BASE_URL":   c.AI.VLLM.BaseURL,
		"OPENAI_BASE_URL": c.AI.OpenAI.BaseURL,
	} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must start with http:// or https://, got %q", key, u)
		}
	}

	if c.Jobs.Workers < 1 {
		return fmt.Errorf("JOBS_WORKERS must be >= 1, got %d", c.Jobs.Workers)
	}
	if c.Jobs.QueueSize < 1 {
		return fmt.Errorf("JOBS_QUEUE_SIZE must be >= 1, got %d", c.Jobs.QueueSize)
	}
	if err := c.Jobs.Defaults.Validate(); err != nil {
		return fmt.Errorf("invalid job defaults: %w", err)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func envLogLevel(key string, defaultVal slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}
