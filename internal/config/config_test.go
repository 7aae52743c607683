package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BufferCap != 100 || cfg.SummaryEvery != 5 || cfg.VectorCap != 20 || cfg.ContextSize != 3 {
		t.Fatalf("unexpected window defaults: %+v", cfg)
	}
	if cfg.EmbeddingDim != 1536 {
		t.Fatalf("EmbeddingDim = %d, want 1536", cfg.EmbeddingDim)
	}
	if cfg.EmbeddingProvider != "auto" || cfg.CompletionProvider != "auto" {
		t.Fatalf("provider defaults = %q/%q, want auto/auto", cfg.EmbeddingProvider, cfg.CompletionProvider)
	}
}

func TestLoadOverridesWindows(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("MEMORY_BUFFER_CAP", "15")
	t.Setenv("MEMORY_SUMMARY_EVERY", "3")
	t.Setenv("MEMORY_SUMMARY_INPUT", "6")
	t.Setenv("MEMORY_VECTOR_CAP", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BufferCap != 15 || cfg.SummaryEvery != 3 || cfg.SummaryInput != 6 || cfg.VectorCap != 10 {
		t.Fatalf("unexpected overridden windows: %+v", cfg)
	}
}

func TestLoadRejectsContextLargerThanVectorCap(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("MEMORY_VECTOR_CAP", "2")
	t.Setenv("MEMORY_CONTEXT_SIZE", "3")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() should reject context size above vector cap")
	}
}

func TestLoadRejectsSummaryInputAboveBufferCap(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("MEMORY_BUFFER_CAP", "5")
	t.Setenv("MEMORY_SUMMARY_INPUT", "10")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() should reject summary input above buffer cap")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"REDIS_URL",
		"DATABASE_URL",
		"OPENAI_API_KEY",
		"ANTHROPIC_API_KEY",
		"GEMINI_API_KEY",
		"MEMORY_EMBEDDING_PROVIDER",
		"MEMORY_EMBEDDING_MODEL",
		"MEMORY_EMBEDDING_DIM",
		"MEMORY_COMPLETION_PROVIDER",
		"MEMORY_COMPLETION_MODEL",
		"MEMORY_SUMMARY_MODEL",
		"MEMORY_UPSTREAM_TIMEOUT",
		"MEMORY_RETRY_ATTEMPTS",
		"MEMORY_RETRY_BACKOFF",
		"MEMORY_BUFFER_CAP",
		"MEMORY_SUMMARY_EVERY",
		"MEMORY_SUMMARY_INPUT",
		"MEMORY_RECENT_WINDOW",
		"MEMORY_VECTOR_CAP",
		"MEMORY_CONTEXT_SIZE",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
