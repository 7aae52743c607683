package completion

import (
	"context"
	"sync"
)

// Scripted returns canned replies in order, then repeats the last one.
// It backs the keyless dev path and the tests.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	next    int

	// Calls records every prompt pair for assertions.
	Calls []ScriptedCall
}

type ScriptedCall struct {
	SystemPrompt string
	UserPrompt   string
}

func NewScripted(replies []string) *Scripted {
	if len(replies) == 0 {
		replies = []string{`{"summary":"","emotional_state":{"primary_emotion":"","secondary_emotion":"","intensity":"","sentiment_trend":""},"user_needs":[],"key_details":[],"conversation_dynamics":""}`}
	}
	return &Scripted{replies: replies}
}

func (c *Scripted) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, ScriptedCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	reply := c.replies[c.next]
	if c.next < len(c.replies)-1 {
		c.next++
	}
	return reply, nil
}
