package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ent0n29/amorine/internal/cache"
	"github.com/ent0n29/amorine/internal/completion"
	"github.com/ent0n29/amorine/internal/reliability"
)

const summarySystemPrompt = `You are a specialized summarizer for a conversation between a user and their AI companion. You will receive the most recent messages between them. Analyze them thoroughly and return a concise JSON object that captures:

1. A 1-2 sentence summary of the main topic and tone.
2. Emotional state analysis of the overall primary/secondary emotion, intensity (1-5), and a sentiment trend (rising, steady, or declining).
3. User needs (emotional or practical such as advice, attention, etc).
4. Key details or facts mentioned.
5. Conversation dynamics (initiator, tone, relationship context, vulnerability, etc).

Output only valid JSON in the structure below, with no additional commentary:

{
  "summary": "",
  "emotional_state": {
    "primary_emotion": "",
    "secondary_emotion": "",
    "intensity": "",
    "sentiment_trend": ""
  },
  "user_needs": [],
  "key_details": [],
  "conversation_dynamics": ""
}`

// Summarizer compresses the recent buffer into one structured summary per
// user, overwritten on every run.
type Summarizer struct {
	store     cache.Store
	buffer    *Buffer
	completer completion.Completer
	input     int
	retries   int
	backoff   time.Duration
}

func NewSummarizer(store cache.Store, buffer *Buffer, completer completion.Completer, input, retries int, backoff time.Duration) *Summarizer {
	return &Summarizer{
		store:     store,
		buffer:    buffer,
		completer: completer,
		input:     input,
		retries:   retries,
		backoff:   backoff,
	}
}

// Summarize reads the most recent turns, renders them chronologically, asks
// the completion service for the structured summary, and overwrites the
// stored value. A completion failure leaves the prior summary untouched.
func (s *Summarizer) Summarize(ctx context.Context, userID string) error {
	turns, err := s.buffer.Recent(ctx, userID, s.input)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return fmt.Errorf("%w: no turns to summarize for user %s", ErrInsufficientData, userID)
	}

	var b strings.Builder
	for _, t := range turns {
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	userPrompt := "Here are the messages to analyze:\n" + b.String()

	var out string
	err = reliability.Do(ctx, s.retries, s.backoff, 8*s.backoff, func(ctx context.Context) error {
		var cErr error
		out, cErr = s.completer.Complete(ctx, summarySystemPrompt, userPrompt)
		return cErr
	})
	if err != nil {
		return fmt.Errorf("%w: generate summary: %v", ErrUpstreamUnavailable, err)
	}

	if err := s.store.Set(ctx, summaryKey(userID), out); err != nil {
		return fmt.Errorf("%w: store summary: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// LoadSummary returns the parsed summary for the user, or ok=false when none
// exists or the stored payload does not parse. Consumers degrade to "no
// context" rather than failing.
func (s *Summarizer) LoadSummary(ctx context.Context, userID string) (Summary, bool) {
	raw, ok, err := s.store.Get(ctx, summaryKey(userID))
	if err != nil {
		log.Printf("memory: summary read failed for user %s: %v", userID, err)
		return Summary{}, false
	}
	if !ok {
		return Summary{}, false
	}
	summary, err := ParseSummary(raw)
	if err != nil {
		log.Printf("memory: dropping malformed summary for user %s: %v", userID, err)
		return Summary{}, false
	}
	return summary, true
}

// ParseSummary decodes a stored summary payload. Models wrap JSON in code
// fences often enough that the parser strips them first.
func ParseSummary(raw string) (Summary, error) {
	trimmed := strings.TrimSpace(raw)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}

	var summary Summary
	if err := json.Unmarshal([]byte(trimmed), &summary); err != nil {
		return Summary{}, fmt.Errorf("%w: decode summary: %v", ErrMalformedData, err)
	}
	return summary, nil
}
