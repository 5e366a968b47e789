package memory

import (
	"context"
	"strings"

	"github.com/hfakhoury/majalla-chat/internal/domain"
	"github.com/hfakhoury/majalla-chat/internal/nlp"
)

const (
	// shortQueryTokens: queries below this token count likely lean on
	// earlier turns for their meaning.
	shortQueryTokens = 5

	// maxEnhancedLen caps the context-enhanced query in runes.
	maxEnhancedLen = 500
)

// Memory reconstructs recent turns for a session and rewrites follow-up
// queries so retrieval sees enough context.
type Memory struct {
	store domain.SessionStore
	rules *nlp.RuleSet
}

// New creates a conversation memory over the session store.
func New(store domain.SessionStore, rules *nlp.RuleSet) *Memory {
	return &Memory{store: store, rules: rules}
}

// Load returns the most recent maxTurns logical turns for a session,
// oldest first. A missing session yields an empty history.
func (m *Memory) Load(ctx context.Context, sessionID string, maxTurns int) ([]domain.Message, error) {
	messages, err := m.store.GetSessionMessages(ctx, sessionID, maxTurns*2)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Enhance rewrites the current query with conversation context when it
// looks like a follow-up. Histories shorter than two entries return the
// query unchanged so brand-new sessions skip the heavy transforms. The
// current query's own text is always preserved in full; only the prepended
// context is truncated to fit the length cap.
func (m *Memory) Enhance(query string, history []domain.Message) string {
	if len(history) < 2 {
		return query
	}

	if !m.isFollowUp(query) {
		return query
	}

	last := lastUserUtterance(history)
	if last == "" {
		return query
	}

	budget := maxEnhancedLen - len([]rune(query)) - 1
	if budget <= 0 {
		return query
	}
	if runes := []rune(last); len(runes) > budget {
		last = string(runes[:budget])
	}

	return last + " " + query
}

// isFollowUp detects referential language: pronouns, demonstratives,
// continuation markers, or a query too short to stand on its own.
func (m *Memory) isFollowUp(query string) bool {
	q := strings.ToLower(query)
	for _, word := range m.rules.ReferenceWords {
		if strings.Contains(q, word) {
			return true
		}
	}
	return len(strings.Fields(query)) < shortQueryTokens
}

func lastUserUtterance(history []domain.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleUser {
			return history[i].Text
		}
	}
	return ""
}
