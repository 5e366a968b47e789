package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hfakhoury/majalla-chat/internal/domain"
)

// sessionCollection is the slice of the driver collection API the store
// depends on.
type sessionCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

// SessionStore implements domain.SessionStore on a document-per-session
// collection. Every mutation is a full read of the session document, an
// in-memory modification, and a full-document upsert; concurrent writers
// to the same session race at document-write granularity (last write wins).
type SessionStore struct {
	sessions sessionCollection
}

// NewSessionStore creates a session store over the given collection name
func NewSessionStore(client *Client, collection string) *SessionStore {
	return &SessionStore{sessions: client.Collection(collection)}
}

func (s *SessionStore) load(ctx context.Context, sessionID string) (*domain.SessionDocument, error) {
	var doc domain.SessionDocument
	err := s.sessions.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return &doc, nil
}

func (s *SessionStore) persist(ctx context.Context, doc *domain.SessionDocument) error {
	_, err := s.sessions.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return nil
}

// SaveMessage appends a message to the session document, creating the
// document on first use. Assistant messages trigger a statistics
// recomputation persisted as part of the same logical update.
func (s *SessionStore) SaveMessage(ctx context.Context, sessionID string, role domain.MessageRole, text string) (string, error) {
	doc, err := s.load(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		doc = domain.NewSessionDocument(sessionID)
	} else if err != nil {
		return "", err
	}

	messageID := uuid.NewString()
	doc.Append(domain.Message{
		ID:   messageID,
		Role: role,
		Text: text,
	})

	if role == domain.RoleAssistant {
		stats := domain.ComputeFeedbackStatistics(doc.Messages)
		doc.FeedbackStatistics = &stats
	}

	if err := s.persist(ctx, doc); err != nil {
		return "", err
	}

	log.Debug().Str("session_id", sessionID).Str("message_id", messageID).Str("role", string(role)).Msg("saved message")
	return messageID, nil
}

// GetSessionMessages returns up to limit most recent messages in
// chronological order. A missing session is a normal condition and yields
// an empty slice.
func (s *SessionStore) GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	doc, err := s.load(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Message{}, nil
	} else if err != nil {
		return nil, err
	}

	messages := doc.Messages
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// UpdateMessageFeedback records a rating against an assistant message and
// persists recomputed statistics in the same update. Fails with
// domain.ErrNotFound when the session or message does not exist and with
// domain.ErrNotAssistantMessage when the target is a user message.
func (s *SessionStore) UpdateMessageFeedback(ctx context.Context, sessionID, messageID string, rating domain.Rating) error {
	doc, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := doc.SetFeedback(messageID, rating); err != nil {
		return err
	}

	stats := domain.ComputeFeedbackStatistics(doc.Messages)
	doc.FeedbackStatistics = &stats

	return s.persist(ctx, doc)
}

// GetFeedbackStatistics returns the cached statistics snapshot, which may
// be nil when no assistant message has been saved yet.
func (s *SessionStore) GetFeedbackStatistics(ctx context.Context, sessionID string) (*domain.FeedbackStatistics, error) {
	doc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return doc.FeedbackStatistics, nil
}

// RecalculateStatistics recomputes statistics from the full message list
// and persists them. By construction it reproduces what the incremental
// path stores, since both go through domain.ComputeFeedbackStatistics.
func (s *SessionStore) RecalculateStatistics(ctx context.Context, sessionID string) (*domain.FeedbackStatistics, error) {
	doc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	stats := domain.ComputeFeedbackStatistics(doc.Messages)
	doc.FeedbackStatistics = &stats

	if err := s.persist(ctx, doc); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Compile-time check that SessionStore implements domain.SessionStore.
var _ domain.SessionStore = (*SessionStore)(nil)
