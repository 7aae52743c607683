package memory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role tags a turn as spoken by the user or the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Immutable once stored; duplicates
// are permitted, ordering follows Timestamp (unix milliseconds).
type Turn struct {
	Content   string `json:"content"`
	Role      Role   `json:"role"`
	Timestamp int64  `json:"timestamp"`
}

// Validate checks the fields a caller must supply.
func (t Turn) Validate() error {
	if strings.TrimSpace(t.Content) == "" {
		return fmt.Errorf("%w: turn content is empty", ErrInvalidArgument)
	}
	if t.Role != RoleUser && t.Role != RoleAssistant {
		return fmt.Errorf("%w: role must be %q or %q", ErrInvalidArgument, RoleUser, RoleAssistant)
	}
	return nil
}

// Summary is the rolling structured compression of recent turns.
type Summary struct {
	Summary              string         `json:"summary"`
	EmotionalState       EmotionalState `json:"emotional_state"`
	UserNeeds            []string       `json:"user_needs"`
	KeyDetails           []string       `json:"key_details"`
	ConversationDynamics string         `json:"conversation_dynamics"`
}

type EmotionalState struct {
	PrimaryEmotion   string    `json:"primary_emotion"`
	SecondaryEmotion string    `json:"secondary_emotion"`
	Intensity        Intensity `json:"intensity"`
	SentimentTrend   string    `json:"sentiment_trend"`
}

// Intensity is a 1..5 scale. Models emit it as either a number or a quoted
// string, so decoding accepts both.
type Intensity int

func (i *Intensity) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("intensity %q is not a number", raw)
	}
	*i = Intensity(n)
	return nil
}

func (i Intensity) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(i))
}

// SummaryView is a summary plus an explicit availability flag; readers get
// the placeholder, never an error, when no parseable summary exists.
type SummaryView struct {
	Available bool     `json:"available"`
	Summary   *Summary `json:"summary,omitempty"`
}

// ContextItem is one semantically relevant past turn.
type ContextItem struct {
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// ContextBundle is everything BuildContext hands to the prompt builder.
type ContextBundle struct {
	Summary         SummaryView   `json:"summary"`
	RecentTurns     []Turn        `json:"recent_turns"`
	SemanticContext []ContextItem `json:"semantic_context"`
}

// RecordResult reports a completed RecordTurn, listing any sub-steps that
// were skipped after upstream failures.
type RecordResult struct {
	Degraded         []string `json:"degraded,omitempty"`
	SummaryTriggered bool     `json:"summary_triggered,omitempty"`
}

// Cache key layout, shared with the original deployment's data.
func messagesKey(userID string) string { return "chat:" + userID + ":messages" }
func counterKey(userID string) string  { return "user:" + userID + ":message_counter" }
func summaryKey(userID string) string  { return "chat:" + userID + ":summary" }
func contextKey(userID string) string  { return "user:" + userID + ":context" }
