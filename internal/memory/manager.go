package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ent0n29/amorine/internal/cache"
	"github.com/ent0n29/amorine/internal/completion"
	"github.com/ent0n29/amorine/internal/embedding"
	"github.com/ent0n29/amorine/internal/observability"
	"github.com/ent0n29/amorine/internal/vector"
)

// Options sizes the memory windows and bounds upstream calls.
type Options struct {
	BufferCap    int
	SummaryEvery int
	SummaryInput int
	RecentWindow int
	VectorCap    int
	ContextSize  int

	UpstreamTimeout time.Duration
	RetryAttempts   int
	RetryBackoff    time.Duration
}

// Manager orchestrates the recency buffer, turn counter, summarizer,
// semantic index and context cache behind two operations: record a turn and
// build context for the next reply. A degraded upstream never fails the
// chat loop; the worst case is a reply generated with less context.
type Manager struct {
	buffer       *Buffer
	counter      *Counter
	summarizer   *Summarizer
	semantic     *SemanticIndexer
	contextCache *ContextCache
	metrics      *observability.Metrics
	opts         Options
	now          func() time.Time
}

func NewManager(store cache.Store, index vector.Index, embedder embedding.Embedder, completer completion.Completer, metrics *observability.Metrics, opts Options) *Manager {
	buffer := NewBuffer(store, opts.BufferCap)
	return &Manager{
		buffer:       buffer,
		counter:      NewCounter(store, opts.SummaryEvery),
		summarizer:   NewSummarizer(store, buffer, completer, opts.SummaryInput, opts.RetryAttempts, opts.RetryBackoff),
		semantic:     NewSemanticIndexer(index, embedder, opts.VectorCap, opts.ContextSize, opts.RetryAttempts, opts.RetryBackoff),
		contextCache: NewContextCache(store),
		metrics:      metrics,
		opts:         opts,
		now:          time.Now,
	}
}

// RecordTurn appends the turn to the recency buffer and, for user turns,
// drives the counter, summarizer, semantic index and context cache. Only a
// validation failure or a buffer write failure fails the call; every other
// sub-step degrades.
func (m *Manager) RecordTurn(ctx context.Context, userID string, turn Turn) (RecordResult, error) {
	if strings.TrimSpace(userID) == "" {
		return RecordResult{}, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	if err := turn.Validate(); err != nil {
		return RecordResult{}, err
	}
	if turn.Timestamp == 0 {
		turn.Timestamp = m.now().UnixMilli()
	}

	start := m.now()
	err := m.withTimeout(ctx, func(ctx context.Context) error {
		return m.buffer.Append(ctx, userID, turn)
	})
	m.observeStage("buffer_append", start)
	if err != nil {
		m.countOp("record_turn", "error")
		m.countUpstreamError("cache", "buffer_append")
		return RecordResult{}, err
	}

	var result RecordResult
	if turn.Role == RoleUser {
		m.recordUserTurn(ctx, userID, turn, &result)
	}

	m.countOp("record_turn", "ok")
	return result, nil
}

func (m *Manager) recordUserTurn(ctx context.Context, userID string, turn Turn, result *RecordResult) {
	var triggered bool
	err := m.withTimeout(ctx, func(ctx context.Context) error {
		var iErr error
		_, triggered, iErr = m.counter.Increment(ctx, userID)
		return iErr
	})
	if err != nil {
		m.degrade(result, "turn_counter", userID, err)
	}

	if triggered {
		result.SummaryTriggered = true
		if m.metrics != nil {
			m.metrics.SummarizeTriggers.Inc()
			m.metrics.ObserveIndicator("summary_triggered")
		}
		start := m.now()
		err := m.withTimeout(ctx, func(ctx context.Context) error {
			return m.summarizer.Summarize(ctx, userID)
		})
		m.observeStage("summarize", start)
		if err != nil && !errors.Is(err, ErrInsufficientData) {
			m.degrade(result, "summarize", userID, err)
		}
	}

	var items []ContextItem
	start := m.now()
	err = m.withTimeout(ctx, func(ctx context.Context) error {
		var sErr error
		items, sErr = m.semantic.Store(ctx, userID, turn.Content, turn.Timestamp)
		return sErr
	})
	m.observeStage("vector_store", start)
	if err != nil {
		m.degrade(result, "semantic_store", userID, err)
		return
	}

	start = m.now()
	err = m.withTimeout(ctx, func(ctx context.Context) error {
		return m.contextCache.Refresh(ctx, userID, items)
	})
	m.observeStage("context_refresh", start)
	if err != nil {
		m.degrade(result, "context_refresh", userID, err)
	}
}

// BuildContext assembles the summary, the recent turns and the semantic
// snapshot. Missing or unparseable pieces degrade to their empty or
// unavailable placeholders; the call fails only on a missing user id.
func (m *Manager) BuildContext(ctx context.Context, userID string) (ContextBundle, error) {
	if strings.TrimSpace(userID) == "" {
		return ContextBundle{}, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	start := m.now()
	bundle := ContextBundle{
		RecentTurns:     []Turn{},
		SemanticContext: []ContextItem{},
	}

	_ = m.withTimeout(ctx, func(ctx context.Context) error {
		if summary, ok := m.summarizer.LoadSummary(ctx, userID); ok {
			bundle.Summary = SummaryView{Available: true, Summary: &summary}
		}
		return nil
	})

	err := m.withTimeout(ctx, func(ctx context.Context) error {
		recent, rErr := m.buffer.Recent(ctx, userID, m.opts.RecentWindow)
		if rErr != nil {
			return rErr
		}
		bundle.RecentTurns = recent
		return nil
	})
	if err != nil {
		log.Printf("memory: recent turns unavailable for user %s: %v", userID, err)
	}

	_ = m.withTimeout(ctx, func(ctx context.Context) error {
		if items := m.contextCache.Read(ctx, userID); items != nil {
			bundle.SemanticContext = items
		}
		return nil
	})

	m.observeStage("context_build", start)
	if m.metrics != nil {
		m.metrics.BuildLatency.Observe(float64(m.now().Sub(start).Nanoseconds()) / 1e6)
	}
	m.countOp("build_context", "ok")
	return bundle, nil
}

// RecentTurns returns up to limit raw turns, newest first, capped at the
// buffer capacity. Malformed entries are dropped.
func (m *Manager) RecentTurns(ctx context.Context, userID string, limit int) ([]Turn, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	if limit <= 0 || limit > m.opts.BufferCap {
		limit = m.opts.BufferCap
	}
	var turns []Turn
	err := m.withTimeout(ctx, func(ctx context.Context) error {
		var rErr error
		turns, rErr = m.buffer.Read(ctx, userID, 0, int64(limit-1))
		return rErr
	})
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// RefreshContext re-queries the semantic index against the neutral vector
// and republishes the snapshot, without recording a turn.
func (m *Manager) RefreshContext(ctx context.Context, userID string) ([]ContextItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	var items []ContextItem
	start := m.now()
	err := m.withTimeout(ctx, func(ctx context.Context) error {
		var cErr error
		items, cErr = m.semantic.Candidates(ctx, userID)
		return cErr
	})
	m.observeStage("vector_query", start)
	if err != nil {
		return nil, err
	}
	err = m.withTimeout(ctx, func(ctx context.Context) error {
		return m.contextCache.Refresh(ctx, userID, items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (m *Manager) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.opts.UpstreamTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, m.opts.UpstreamTimeout)
	defer cancel()
	return fn(ctx)
}

func (m *Manager) degrade(result *RecordResult, step, userID string, err error) {
	result.Degraded = append(result.Degraded, step)
	log.Printf("memory: %s degraded for user %s: %v", step, userID, err)
	if m.metrics != nil {
		m.metrics.DegradedSteps.WithLabelValues(step).Inc()
	}
	m.countUpstreamError(stepProvider(step, err), step)
}

// stepProvider maps a degraded sub-step to the upstream that failed. The
// semantic store step spans two upstreams, so the error decides.
func stepProvider(step string, err error) string {
	switch step {
	case "turn_counter", "context_refresh":
		return "cache"
	case "summarize":
		return "completion"
	case "semantic_store":
		if errors.Is(err, ErrEmbeddingFailed) {
			return "embedding"
		}
		return "vector"
	default:
		return "unknown"
	}
}

func (m *Manager) countUpstreamError(provider, kind string) {
	if m.metrics != nil {
		m.metrics.UpstreamErrors.WithLabelValues(provider, kind).Inc()
	}
}

func (m *Manager) countOp(operation, outcome string) {
	if m.metrics != nil {
		m.metrics.Operations.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Manager) observeStage(stage string, start time.Time) {
	if m.metrics != nil {
		m.metrics.ObserveStage(stage, m.now().Sub(start))
	}
}
