package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the memory service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	RedisURL    string
	DatabaseURL string

	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingDim      int

	CompletionProvider string
	CompletionModel    string
	SummaryModel       string

	UpstreamTimeout time.Duration
	RetryAttempts   int
	RetryBackoff    time.Duration

	// Memory window sizes. The product history alternated between several
	// values; these defaults are the most recent complete configuration.
	BufferCap    int
	SummaryEvery int
	SummaryInput int
	RecentWindow int
	VectorCap    int
	ContextSize  int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "amorine"),
		RedisURL:           stringsTrimSpace("REDIS_URL"),
		DatabaseURL:        stringsTrimSpace("DATABASE_URL"),
		OpenAIAPIKey:       stringsTrimSpace("OPENAI_API_KEY"),
		AnthropicAPIKey:    stringsTrimSpace("ANTHROPIC_API_KEY"),
		GeminiAPIKey:       stringsTrimSpace("GEMINI_API_KEY"),
		EmbeddingProvider:  envOrDefault("MEMORY_EMBEDDING_PROVIDER", "auto"),
		EmbeddingModel:     envOrDefault("MEMORY_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:       1536,
		CompletionProvider: envOrDefault("MEMORY_COMPLETION_PROVIDER", "auto"),
		CompletionModel:    envOrDefault("MEMORY_COMPLETION_MODEL", "gpt-4o-mini"),
		SummaryModel:       envOrDefault("MEMORY_SUMMARY_MODEL", "gemini-1.5-flash-8b"),
		UpstreamTimeout:    10 * time.Second,
		RetryAttempts:      2,
		RetryBackoff:       200 * time.Millisecond,
		ShutdownTimeout:    15 * time.Second,
		BufferCap:          100,
		SummaryEvery:       5,
		SummaryInput:       10,
		RecentWindow:       5,
		VectorCap:          20,
		ContextSize:        3,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.UpstreamTimeout, err = durationFromEnv("MEMORY_UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RetryBackoff, err = durationFromEnv("MEMORY_RETRY_BACKOFF", cfg.RetryBackoff)
	if err != nil {
		return Config{}, err
	}
	cfg.RetryAttempts, err = intFromEnv("MEMORY_RETRY_ATTEMPTS", cfg.RetryAttempts)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingDim, err = intFromEnv("MEMORY_EMBEDDING_DIM", cfg.EmbeddingDim)
	if err != nil {
		return Config{}, err
	}
	cfg.BufferCap, err = intFromEnv("MEMORY_BUFFER_CAP", cfg.BufferCap)
	if err != nil {
		return Config{}, err
	}
	cfg.SummaryEvery, err = intFromEnv("MEMORY_SUMMARY_EVERY", cfg.SummaryEvery)
	if err != nil {
		return Config{}, err
	}
	cfg.SummaryInput, err = intFromEnv("MEMORY_SUMMARY_INPUT", cfg.SummaryInput)
	if err != nil {
		return Config{}, err
	}
	cfg.RecentWindow, err = intFromEnv("MEMORY_RECENT_WINDOW", cfg.RecentWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.VectorCap, err = intFromEnv("MEMORY_VECTOR_CAP", cfg.VectorCap)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextSize, err = intFromEnv("MEMORY_CONTEXT_SIZE", cfg.ContextSize)
	if err != nil {
		return Config{}, err
	}

	if cfg.UpstreamTimeout < 100*time.Millisecond {
		return Config{}, fmt.Errorf("MEMORY_UPSTREAM_TIMEOUT must be at least 100ms")
	}
	if cfg.RetryAttempts < 0 {
		return Config{}, fmt.Errorf("MEMORY_RETRY_ATTEMPTS must be >= 0")
	}
	if cfg.EmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("MEMORY_EMBEDDING_DIM must be positive")
	}
	if cfg.BufferCap <= 0 {
		return Config{}, fmt.Errorf("MEMORY_BUFFER_CAP must be positive")
	}
	if cfg.SummaryEvery <= 0 {
		return Config{}, fmt.Errorf("MEMORY_SUMMARY_EVERY must be positive")
	}
	if cfg.SummaryInput <= 0 || cfg.SummaryInput > cfg.BufferCap {
		return Config{}, fmt.Errorf("MEMORY_SUMMARY_INPUT must be in 1..MEMORY_BUFFER_CAP")
	}
	if cfg.RecentWindow <= 0 || cfg.RecentWindow > cfg.BufferCap {
		return Config{}, fmt.Errorf("MEMORY_RECENT_WINDOW must be in 1..MEMORY_BUFFER_CAP")
	}
	if cfg.VectorCap <= 0 {
		return Config{}, fmt.Errorf("MEMORY_VECTOR_CAP must be positive")
	}
	if cfg.ContextSize <= 0 || cfg.ContextSize > cfg.VectorCap {
		return Config{}, fmt.Errorf("MEMORY_CONTEXT_SIZE must be in 1..MEMORY_VECTOR_CAP")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
