package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a session or message does not exist. For new
// sessions this is a normal condition, not a failure.
var ErrNotFound = errors.New("not found")

// ErrUnavailable is returned when the backing document store cannot be
// reached. Callers are expected to continue without persistence.
var ErrUnavailable = errors.New("session store unavailable")

// ErrNotAssistantMessage is returned when feedback targets a user message.
var ErrNotAssistantMessage = errors.New("feedback is only recorded against assistant messages")

// SessionDocument is the single mutable document that owns a session: its
// full message log and the derived feedback statistics. Every mutation is a
// full read, an in-memory modification, and a full-document upsert; the
// document is the unit of consistency.
type SessionDocument struct {
	ID                 string              `json:"id" bson:"_id"`
	SessionID          string              `json:"session_id" bson:"session_id"`
	Messages           []Message           `json:"messages" bson:"messages"`
	MessageCount       int                 `json:"message_count" bson:"message_count"`
	FeedbackStatistics *FeedbackStatistics `json:"feedback_statistics,omitempty" bson:"feedback_statistics,omitempty"`
}

// NewSessionDocument creates an empty document for a session id.
func NewSessionDocument(sessionID string) *SessionDocument {
	return &SessionDocument{
		ID:        sessionID,
		SessionID: sessionID,
		Messages:  []Message{},
	}
}

// Append adds a message to the log and keeps the count in sync.
func (d *SessionDocument) Append(m Message) {
	d.Messages = append(d.Messages, m)
	d.MessageCount = len(d.Messages)
}

// SetFeedback locates a message by id and records a rating on it. It fails
// with ErrNotFound if the id is unknown and with ErrNotAssistantMessage if
// the target is a user message; in both cases the document is not modified.
func (d *SessionDocument) SetFeedback(messageID string, rating Rating) error {
	for i := range d.Messages {
		if d.Messages[i].ID != messageID {
			continue
		}
		if d.Messages[i].Role != RoleAssistant {
			return ErrNotAssistantMessage
		}
		r := rating
		d.Messages[i].Feedback = &r
		return nil
	}
	return ErrNotFound
}

// SessionStore owns per-session documents keyed by session id.
type SessionStore interface {
	// SaveMessage appends a message to the session document, creating the
	// document on first use, and returns the generated message id. For
	// assistant messages the feedback statistics are recomputed as part of
	// the same logical update.
	SaveMessage(ctx context.Context, sessionID string, role MessageRole, text string) (string, error)

	// GetSessionMessages returns up to limit most recent messages in
	// chronological order. A missing session yields an empty slice.
	GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)

	// UpdateMessageFeedback records a rating against an assistant message
	// and persists recomputed statistics in the same update.
	UpdateMessageFeedback(ctx context.Context, sessionID, messageID string, rating Rating) error

	// GetFeedbackStatistics returns the cached statistics snapshot.
	GetFeedbackStatistics(ctx context.Context, sessionID string) (*FeedbackStatistics, error)

	// RecalculateStatistics recomputes statistics from the message list and
	// persists them, returning the fresh values.
	RecalculateStatistics(ctx context.Context, sessionID string) (*FeedbackStatistics, error)
}
