package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ent0n29/amorine/internal/cache"
	"github.com/ent0n29/amorine/internal/completion"
	"github.com/ent0n29/amorine/internal/config"
	"github.com/ent0n29/amorine/internal/embedding"
	"github.com/ent0n29/amorine/internal/httpapi"
	"github.com/ent0n29/amorine/internal/memory"
	"github.com/ent0n29/amorine/internal/observability"
	"github.com/ent0n29/amorine/internal/vector"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("cache store init failed: %v", err)
	}
	defer store.Close()
	storeMode := "inmemory"
	if cfg.RedisURL != "" {
		storeMode = "redis"
	}
	log.Printf("cache store: %s", storeMode)

	index, err := vector.New(ctx, cfg.DatabaseURL, cfg.EmbeddingDim)
	if err != nil {
		log.Fatalf("vector index init failed: %v", err)
	}
	defer index.Close()
	indexMode := "chromem"
	if cfg.DatabaseURL != "" {
		indexMode = "pgvector"
	}
	log.Printf("vector index: %s (dim %d)", indexMode, cfg.EmbeddingDim)

	embedder := embedding.New(embedding.Config{
		Provider:     cfg.EmbeddingProvider,
		Model:        cfg.EmbeddingModel,
		Dim:          cfg.EmbeddingDim,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
	})

	completer := completion.New(completion.Config{
		Provider:        cfg.CompletionProvider,
		Model:           cfg.CompletionModel,
		GeminiModel:     cfg.SummaryModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
	})

	manager := memory.NewManager(store, index, embedder, completer, metrics, memory.Options{
		BufferCap:       cfg.BufferCap,
		SummaryEvery:    cfg.SummaryEvery,
		SummaryInput:    cfg.SummaryInput,
		RecentWindow:    cfg.RecentWindow,
		VectorCap:       cfg.VectorCap,
		ContextSize:     cfg.ContextSize,
		UpstreamTimeout: cfg.UpstreamTimeout,
		RetryAttempts:   cfg.RetryAttempts,
		RetryBackoff:    cfg.RetryBackoff,
	})

	api := httpapi.New(cfg, manager, metrics, storeMode, indexMode)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
