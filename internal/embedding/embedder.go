package embedding

import (
	"context"
	"log"
	"strings"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Config selects and parameterizes an embedding provider.
type Config struct {
	Provider     string // auto|openai|gemini|local
	Model        string
	Dim          int
	OpenAIAPIKey string
	GeminiAPIKey string
}

// New resolves the configured provider, falling back to the local
// deterministic embedder when no usable key exists.
func New(cfg Config) Embedder {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			log.Printf("embedding provider: openai (%s)", cfg.Model)
			return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.Dim)
		}
		log.Printf("embedding provider: local (openai requested but OPENAI_API_KEY is not set)")
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			log.Printf("embedding provider: gemini (%s)", cfg.Model)
			if e, err := NewGemini(cfg.GeminiAPIKey, cfg.Model, cfg.Dim); err == nil {
				return e
			} else {
				log.Printf("embedding provider: gemini init failed: %v", err)
			}
		} else {
			log.Printf("embedding provider: local (gemini requested but GEMINI_API_KEY is not set)")
		}
	case "local":
		log.Printf("embedding provider: local")
	case "", "auto":
		if cfg.OpenAIAPIKey != "" {
			log.Printf("embedding provider: openai (%s)", cfg.Model)
			return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.Dim)
		}
		if cfg.GeminiAPIKey != "" {
			if e, err := NewGemini(cfg.GeminiAPIKey, cfg.Model, cfg.Dim); err == nil {
				log.Printf("embedding provider: gemini (%s)", cfg.Model)
				return e
			}
		}
		log.Printf("embedding provider: local (no embedding key configured)")
	default:
		log.Printf("embedding provider: local (unknown provider %q)", cfg.Provider)
	}
	return NewLocal(cfg.Dim)
}
