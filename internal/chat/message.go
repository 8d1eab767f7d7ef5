// Package chat owns the live conversation state: the transcript, the
// in-flight placeholder lifecycle, and the sending protocol against the
// completion backend. Durable copies of finished turns live in the
// session store; the transcript here is authoritative for the active
// session.
package chat

import (
	"fmt"
	"strings"
	"time"
)

// Message roles. The backend prompt format and the storage contract both
// use these literal strings, so they are fixed.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Message is a single entry in a transcript. A message with Pending set
// is the placeholder for an outstanding request; it is resolved in place
// exactly once when the backend call settles. Pending is a transcript
// state flag, not part of the stored record, and never serializes.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	Pending bool `json:"-"`
}

// Record is a persisted session: a timestamp that doubles as the storage
// key and sort key, plus the full transcript at the moment the turn
// completed. Records are written only after the AI response resolved,
// never while a placeholder is pending.
type Record struct {
	Timestamp string    `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// NewRecord stamps a record with the current instant in RFC 3339 form
// with sub-second precision, matching the key format the history
// bucketer parses.
func NewRecord(now time.Time, messages []Message) Record {
	return Record{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Messages:  messages,
	}
}

// FlattenTranscript serializes messages into the newline-joined
// "role: content" form the completion backend parses. This is a stable
// wire contract shared with the gateway, not an internal formatting
// detail.
func FlattenTranscript(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}
