package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RaoAkif/BotFusion/internal/backend"
)

// Fallback shown when a request fails without a usable error message.
const genericFailure = "An error occurred while fetching the response."

// Completer issues a chat completion for a flattened transcript query.
// [backend.Client] is the production implementation.
type Completer interface {
	Complete(ctx context.Context, query, model string) (string, error)
}

// SessionStore is the slice of the session store the controller needs:
// persisting completed turns and recalling stored sessions.
type SessionStore interface {
	Save(rec Record) error
	LoadOne(timestamp string) (*Record, error)
}

// Conversation drives one live chat session. It owns the transcript,
// maintains the placeholder for in-flight responses, and persists a
// session record once a turn completes successfully.
//
// Overlapping SendMessage calls are not serialized here: the supported
// usage is one in-flight request per conversation, enforced by the
// caller (the UI disables its send control while loading). Concurrent
// calls would race on resolving the trailing placeholder.
type Conversation struct {
	completer Completer
	store     SessionStore
	logger    *slog.Logger
	model     string
	now       func() time.Time

	messages []Message
	loading  bool
}

// NewConversation creates an empty conversation that sends completions
// through completer and persists finished turns to store. The model
// identifier is passed through to the backend opaquely.
func NewConversation(completer Completer, store SessionStore, model string, logger *slog.Logger) *Conversation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conversation{
		completer: completer,
		store:     store,
		logger:    logger,
		model:     model,
		now:       time.Now,
	}
}

// SetModel switches the model used for subsequent turns.
func (c *Conversation) SetModel(model string) {
	c.model = model
}

// Model returns the currently selected model identifier.
func (c *Conversation) Model() string {
	return c.model
}

// Messages returns a copy of the current transcript.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// IsLoading reports whether a request is outstanding.
func (c *Conversation) IsLoading() bool {
	return c.loading
}

// SendMessage runs one conversation turn and returns the final AI text.
//
// Empty or whitespace-only content is a silent no-op. Otherwise the
// user message and an AI placeholder are appended, the flattened
// transcript is sent to the backend, and the placeholder is resolved
// exactly once with the response text, a rate-limit notice, or the
// error message. Only the success path persists a session record; the
// loading flag is cleared on every path.
func (c *Conversation) SendMessage(ctx context.Context, content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	previous := make([]Message, len(c.messages))
	copy(previous, c.messages)

	userMessage := Message{Role: RoleUser, Content: content}
	c.messages = append(c.messages, userMessage)

	c.loading = true
	defer func() { c.loading = false }()

	c.messages = append(c.messages, Message{Role: RoleAI, Pending: true})

	history := FlattenTranscript(append(previous, userMessage))
	query := history + "\nuser: " + content

	text, err := c.completer.Complete(ctx, query, c.model)
	if err != nil {
		var limited *backend.RateLimitError
		if errors.As(err, &limited) {
			c.resolvePending(fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", limited.RemainingTime))
			return ""
		}
		msg := err.Error()
		if msg == "" {
			msg = genericFailure
		}
		c.resolvePending(msg)
		return ""
	}

	c.resolvePending(text)

	rec := NewRecord(c.now(), c.Messages())
	if err := c.store.Save(rec); err != nil {
		// The in-memory transcript stays authoritative for the active
		// session; a failed write only loses the history entry.
		c.logger.Error("session save failed", "timestamp", rec.Timestamp, "error", err)
	}

	return text
}

// resolvePending overwrites the trailing placeholder with final
// content. The placeholder is resolved exactly once per turn.
func (c *Conversation) resolvePending(content string) {
	last := len(c.messages) - 1
	if last < 0 || !c.messages[last].Pending {
		return
	}
	c.messages[last].Content = content
	c.messages[last].Pending = false
}

// LoadFromStorage replaces the live transcript with the session stored
// under the given timestamp. A missing or unparseable record leaves the
// transcript untouched. Refused while a request is pending.
func (c *Conversation) LoadFromStorage(timestamp string) error {
	if c.loading {
		return fmt.Errorf("request in flight")
	}

	rec, err := c.store.LoadOne(timestamp)
	if err != nil {
		return fmt.Errorf("load session %s: %w", timestamp, err)
	}
	if rec == nil {
		return nil
	}

	c.messages = make([]Message, len(rec.Messages))
	copy(c.messages, rec.Messages)
	return nil
}

// Reset begins a new empty session. Refused while a request is pending.
func (c *Conversation) Reset() error {
	if c.loading {
		return fmt.Errorf("request in flight")
	}
	c.messages = nil
	return nil
}
