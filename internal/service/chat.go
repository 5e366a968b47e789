package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hfakhoury/majalla-chat/internal/config"
	"github.com/hfakhoury/majalla-chat/internal/domain"
	"github.com/hfakhoury/majalla-chat/internal/memory"
	"github.com/hfakhoury/majalla-chat/internal/nlp"
	"github.com/hfakhoury/majalla-chat/internal/retrieval"
	"github.com/hfakhoury/majalla-chat/internal/unanswered"
)

// ChatResult is the outcome of one conversational turn.
type ChatResult struct {
	Answer    string          `json:"answer"`
	Sources   []domain.Source `json:"sources"`
	SessionID string          `json:"session_id"`
	MessageID string          `json:"message_id"`
}

// ChatService orchestrates the full answer pipeline: conversation memory,
// query normalization, scope classification, retrieval, synthesis, source
// attribution and unanswered-question detection.
type ChatService struct {
	store        domain.SessionStore
	gateway      *retrieval.Gateway
	memory       *memory.Memory
	normalizer   *nlp.Normalizer
	classifier   *nlp.Classifier
	synthesizer  *Synthesizer
	detector     *unanswered.Detector
	retrievalCfg config.RetrievalConfig
	convCfg      config.ConversationConfig
}

// NewChatService creates a new chat service
func NewChatService(
	store domain.SessionStore,
	gateway *retrieval.Gateway,
	mem *memory.Memory,
	normalizer *nlp.Normalizer,
	classifier *nlp.Classifier,
	synthesizer *Synthesizer,
	detector *unanswered.Detector,
	retrievalCfg config.RetrievalConfig,
	convCfg config.ConversationConfig,
) *ChatService {
	return &ChatService{
		store:        store,
		gateway:      gateway,
		memory:       mem,
		normalizer:   normalizer,
		classifier:   classifier,
		synthesizer:  synthesizer,
		detector:     detector,
		retrievalCfg: retrievalCfg,
		convCfg:      convCfg,
	}
}

// GenerateChatResponse handles one user message end to end. Store and
// retrieval failures degrade the answer rather than abort the request; the
// returned error is reserved for conditions with no sensible fallback.
func (s *ChatService) GenerateChatResponse(ctx context.Context, message, sessionID string) (*ChatResult, error) {
	isNewSession := false
	if sessionID == "" {
		sessionID = uuid.New().String()
		isNewSession = true
	}

	// 1. Conversation memory. New sessions have nothing to load.
	var history []domain.Message
	if !isNewSession {
		var err error
		history, err = s.memory.Load(ctx, sessionID, s.convCfg.MemoryTurns)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load history")
			history = nil
		}
	}

	// 2. Query enhancement and normalization for retrieval. The raw
	// message is what gets classified, stored and shown to the model.
	enhanced := s.memory.Enhance(message, history)
	normalized := s.normalizer.Normalize(enhanced)

	// 3. Language gate. Non-Arabic input gets a fixed redirect with no
	// retrieval, no persistence of the user turn and no unanswered log.
	if !s.classifier.IsArabicText(message) {
		messageID := s.saveAssistant(ctx, sessionID, languageRedirectMessage)
		return &ChatResult{
			Answer:    languageRedirectMessage,
			Sources:   []domain.Source{},
			SessionID: sessionID,
			MessageID: messageID,
		}, nil
	}

	// 4. Retrieval. Greetings bypass it entirely and are in scope by
	// policy; otherwise upstream failure is a soft condition and the
	// pipeline continues with zero candidates.
	isGreeting := s.classifier.IsGreeting(message)

	var results []retrieval.Document
	var searchErr error
	if !isGreeting {
		results, searchErr = s.gateway.Search(ctx, normalized, s.retrievalCfg.TopK)
		if searchErr != nil {
			log.Warn().Err(searchErr).Str("session_id", sessionID).Msg("retrieval failed, continuing without candidates")
		}
	}

	// 5. Scope. Any retrieved candidate is positive evidence of
	// relevance; decline only when the heuristics and the index agree
	// the message is out of scope.
	related := isGreeting || s.classifier.IsDomainRelated(enhanced, toSources(results))
	if !related && len(results) > 0 {
		messageID := s.saveAssistant(ctx, sessionID, declineMessage)
		return &ChatResult{
			Answer:    declineMessage,
			Sources:   []domain.Source{},
			SessionID: sessionID,
			MessageID: messageID,
		}, nil
	}

	// 6. Persist the user turn. Store unavailability must not block the
	// answer.
	if _, err := s.store.SaveMessage(ctx, sessionID, domain.RoleUser, message); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save user message")
	}

	// 7. Synthesis.
	contextBlock := retrieval.FormatContext(results, s.retrievalCfg.MaxContextTokens)
	answer := s.synthesizer.Answer(ctx, message, contextBlock, history, s.convCfg.TurnCharLimit)
	sources := ExtractSources(results)

	// 8. Unanswered detection, best effort.
	s.detector.Evaluate(unanswered.Exchange{
		SessionID:     sessionID,
		Question:      message,
		EnhancedQuery: enhanced,
		Answer:        answer,
		DomainRelated: related,
		Greeting:      isGreeting,
		SourceCount:   len(sources),
		ResultCount:   len(results),
		AvgScore:      averageScore(results),
		SearchErr:     searchErr,
	})

	messageID := s.saveAssistant(ctx, sessionID, answer)

	return &ChatResult{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
		MessageID: messageID,
	}, nil
}

// SubmitFeedback records a rating against an assistant message and returns
// the feedback id, which is the id of the rated message.
func (s *ChatService) SubmitFeedback(ctx context.Context, sessionID, messageID string, rating domain.Rating) (string, error) {
	if err := s.store.UpdateMessageFeedback(ctx, sessionID, messageID, rating); err != nil {
		return "", err
	}
	return messageID, nil
}

// GetSessionMessages returns up to limit most recent messages in
// chronological order.
func (s *ChatService) GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = s.convCfg.HistoryLimit
	}
	return s.store.GetSessionMessages(ctx, sessionID, limit)
}

// GetFeedbackStatistics returns the session's statistics snapshot,
// recomputing it when no snapshot has been persisted yet. A session with no
// stored document is a normal condition and yields an empty snapshot.
func (s *ChatService) GetFeedbackStatistics(ctx context.Context, sessionID string) (*domain.FeedbackStatistics, error) {
	stats, err := s.store.GetFeedbackStatistics(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		empty := domain.ComputeFeedbackStatistics(nil)
		return &empty, nil
	}
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return s.store.RecalculateStatistics(ctx, sessionID)
	}
	return stats, nil
}

// RecalculateStatistics recomputes statistics from scratch and persists
// them.
func (s *ChatService) RecalculateStatistics(ctx context.Context, sessionID string) (*domain.FeedbackStatistics, error) {
	return s.store.RecalculateStatistics(ctx, sessionID)
}

// saveAssistant persists an assistant turn, returning an empty message id
// when the store is unavailable.
func (s *ChatService) saveAssistant(ctx context.Context, sessionID, text string) string {
	messageID, err := s.store.SaveMessage(ctx, sessionID, domain.RoleAssistant, text)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save assistant message")
		return ""
	}
	return messageID
}

func toSources(results []retrieval.Document) []domain.Source {
	sources := make([]domain.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, domain.Source{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return sources
}

func averageScore(results []retrieval.Document) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results))
}
