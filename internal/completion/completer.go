package completion

import (
	"context"
	"log"
	"strings"
)

// Completer generates text from a system instruction and a user prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config selects and parameterizes a completion provider.
type Config struct {
	Provider        string // auto|openai|anthropic|gemini|scripted
	Model           string
	GeminiModel     string // Gemini keeps its own model name; empty falls back to Model
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
}

func (c Config) geminiModel() string {
	if strings.TrimSpace(c.GeminiModel) != "" {
		return c.GeminiModel
	}
	return c.Model
}

// New resolves the configured provider, falling back to the scripted
// completer when no usable key exists.
func New(cfg Config) Completer {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "auto"
	}

	switch provider {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			log.Printf("completion provider: openai (%s)", cfg.Model)
			return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model)
		}
	case "anthropic":
		if cfg.AnthropicAPIKey != "" {
			log.Printf("completion provider: anthropic (%s)", cfg.Model)
			return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model)
		}
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			if c, err := NewGemini(cfg.GeminiAPIKey, cfg.geminiModel()); err == nil {
				log.Printf("completion provider: gemini (%s)", cfg.geminiModel())
				return c
			} else {
				log.Printf("completion provider: gemini init failed: %v", err)
			}
		}
	case "scripted":
		log.Printf("completion provider: scripted")
		return NewScripted(nil)
	case "auto":
		if cfg.OpenAIAPIKey != "" {
			log.Printf("completion provider: openai (%s)", cfg.Model)
			return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model)
		}
		if cfg.AnthropicAPIKey != "" {
			log.Printf("completion provider: anthropic (%s)", cfg.Model)
			return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model)
		}
		if cfg.GeminiAPIKey != "" {
			if c, err := NewGemini(cfg.GeminiAPIKey, cfg.geminiModel()); err == nil {
				log.Printf("completion provider: gemini (%s)", cfg.geminiModel())
				return c
			}
		}
	default:
		log.Printf("completion provider: scripted (unknown provider %q)", cfg.Provider)
		return NewScripted(nil)
	}

	log.Printf("completion provider: scripted (no completion key configured)")
	return NewScripted(nil)
}
