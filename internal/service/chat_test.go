package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hfakhoury/majalla-chat/internal/config"
	"github.com/hfakhoury/majalla-chat/internal/domain"
	"github.com/hfakhoury/majalla-chat/internal/llm"
	"github.com/hfakhoury/majalla-chat/internal/memory"
	"github.com/hfakhoury/majalla-chat/internal/nlp"
	"github.com/hfakhoury/majalla-chat/internal/retrieval"
	"github.com/hfakhoury/majalla-chat/internal/unanswered"
)

type chatFixture struct {
	store    *MockSessionStore
	embedder *MockEmbedder
	index    *MockIndex
	provider *MockProvider
	sinkBuf  *bytes.Buffer
	svc      *ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		store:    new(MockSessionStore),
		embedder: new(MockEmbedder),
		index:    new(MockIndex),
		provider: new(MockProvider),
		sinkBuf:  &bytes.Buffer{},
	}

	rules := nlp.DefaultRules()
	router := llm.NewRouter("mock")
	router.RegisterProvider(f.provider)

	f.svc = NewChatService(
		f.store,
		retrieval.NewGateway(f.embedder, f.index, nil),
		memory.New(f.store, rules),
		nlp.NewNormalizer(rules),
		nlp.NewClassifier(rules),
		NewSynthesizer(router, testGenConfig()),
		unanswered.NewDetector(unanswered.NewWriterSink(f.sinkBuf), rules.CannotAnswerPhrases),
		config.RetrievalConfig{TopK: 8, MaxContextTokens: 1200, EmbedMaxRetries: 3},
		config.ConversationConfig{HistoryLimit: 10, MemoryTurns: 5, TurnCharLimit: 500},
	)
	return f
}

func TestChatService_GenerateChatResponse(t *testing.T) {
	ctx := context.Background()
	vector := []float32{0.1}
	docs := []retrieval.Document{
		{ID: "1", Title: "مقال عن الشعر", URL: "https://example.com/1", Content: "نص المقال", Score: 0.9},
		{ID: "2", Title: "مقال آخر", URL: "https://example.com/2", Content: "نص آخر", Score: 0.8},
	}

	t.Run("english message gets redirect without retrieval", func(t *testing.T) {
		f := newChatFixture()
		f.store.On("SaveMessage", ctx, mock.AnythingOfType("string"), domain.RoleAssistant, languageRedirectMessage).
			Return("m1", nil)

		result, err := f.svc.GenerateChatResponse(ctx, "What are the latest articles?", "")

		assert.NoError(t, err)
		assert.Equal(t, languageRedirectMessage, result.Answer)
		assert.Empty(t, result.Sources)
		assert.NotEmpty(t, result.SessionID)
		assert.Equal(t, "m1", result.MessageID)
		f.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
		f.provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.sinkBuf.String(), "redirects are never logged as unanswered")
	})

	t.Run("greeting bypasses retrieval", func(t *testing.T) {
		f := newChatFixture()
		f.store.On("SaveMessage", ctx, mock.Anything, domain.RoleUser, "مرحبا").Return("u1", nil)
		f.store.On("SaveMessage", ctx, mock.Anything, domain.RoleAssistant, mock.Anything).Return("a1", nil)
		f.provider.On("Complete", ctx, mock.Anything, "mock-model").
			Return(&llm.Response{Text: "أهلاً بك في مجلة الدوحة!"}, nil)

		result, err := f.svc.GenerateChatResponse(ctx, "مرحبا", "")

		assert.NoError(t, err)
		assert.Equal(t, "أهلاً بك في مجلة الدوحة!", result.Answer)
		assert.Empty(t, result.Sources)
		f.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
		assert.Empty(t, f.sinkBuf.String(), "greetings are never logged as unanswered")
	})

	t.Run("content question runs the full pipeline", func(t *testing.T) {
		f := newChatFixture()
		f.embedder.On("Embed", ctx, mock.Anything).Return([][]float32{vector}, nil)
		f.index.On("Search", ctx, mock.Anything, vector, 8).Return(docs, nil)
		f.store.On("SaveMessage", ctx, "s1", domain.RoleUser, "ما هي أحدث المقالات عن الشعر؟").Return("u1", nil)
		f.store.On("SaveMessage", ctx, "s1", domain.RoleAssistant, mock.Anything).Return("a1", nil)
		f.store.On("GetSessionMessages", ctx, "s1", 10).Return([]domain.Message{}, nil)
		f.provider.On("Complete", ctx, mock.Anything, "mock-model").
			Return(&llm.Response{Text: "أحدث المقالات تتناول قصائد معاصرة."}, nil)

		result, err := f.svc.GenerateChatResponse(ctx, "ما هي أحدث المقالات عن الشعر؟", "s1")

		assert.NoError(t, err)
		assert.Equal(t, "أحدث المقالات تتناول قصائد معاصرة.", result.Answer)
		assert.Equal(t, "s1", result.SessionID)
		assert.Equal(t, "a1", result.MessageID)
		assert.Len(t, result.Sources, 2)
		assert.Equal(t, "https://example.com/1", result.Sources[0].URL)
		assert.Empty(t, f.sinkBuf.String())
		f.store.AssertExpectations(t)
	})

	t.Run("retrieval failure degrades to zero candidates", func(t *testing.T) {
		f := newChatFixture()
		f.embedder.On("Embed", ctx, mock.Anything).Return(nil, errors.New("embedding unavailable"))
		f.store.On("SaveMessage", ctx, mock.Anything, domain.RoleUser, mock.Anything).Return("u1", nil)
		f.store.On("SaveMessage", ctx, mock.Anything, domain.RoleAssistant, mock.Anything).Return("a1", nil)
		f.provider.On("Complete", ctx, mock.Anything, "mock-model").
			Return(&llm.Response{Text: "عذراً، لا أجد معلومات كافية في محتوى مجلة الدوحة للإجابة على هذا السؤال"}, nil)

		result, err := f.svc.GenerateChatResponse(ctx, "ما هي أحدث المقالات في المجلة؟", "")

		assert.NoError(t, err)
		assert.Empty(t, result.Sources)
		assert.Contains(t, f.sinkBuf.String(), string(unanswered.ReasonSearchError),
			"retrieval error takes priority as the logged reason")
	})

	t.Run("cannot-answer reply with no candidates is logged as no_results", func(t *testing.T) {
		f := newChatFixture()
		f.embedder.On("Embed", ctx, mock.Anything).Return([][]float32{vector}, nil)
		f.index.On("Search", ctx, mock.Anything, vector, 8).Return([]retrieval.Document{}, nil)
		f.store.On("SaveMessage", ctx, mock.Anything, domain.RoleUser, mock.Anything).Return("u1", nil)
		f.store.On("SaveMessage", ctx, mock.Anything, domain.RoleAssistant, mock.Anything).Return("a1", nil)
		f.provider.On("Complete", ctx, mock.Anything, "mock-model").
			Return(&llm.Response{Text: "عذراً، لا أجد معلومات كافية في محتوى مجلة الدوحة للإجابة على هذا السؤال"}, nil)

		_, err := f.svc.GenerateChatResponse(ctx, "ما هي أحدث المقالات في المجلة؟", "")

		assert.NoError(t, err)
		assert.Contains(t, f.sinkBuf.String(), string(unanswered.ReasonNoResults))
	})

	t.Run("store unavailability never blocks the answer", func(t *testing.T) {
		f := newChatFixture()
		f.embedder.On("Embed", ctx, mock.Anything).Return([][]float32{vector}, nil)
		f.index.On("Search", ctx, mock.Anything, vector, 8).Return(docs, nil)
		f.store.On("SaveMessage", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return("", domain.ErrUnavailable)
		f.provider.On("Complete", ctx, mock.Anything, "mock-model").
			Return(&llm.Response{Text: "جواب رغم تعطل التخزين."}, nil)

		result, err := f.svc.GenerateChatResponse(ctx, "ما هي أحدث المقالات عن الشعر؟", "")

		assert.NoError(t, err)
		assert.Equal(t, "جواب رغم تعطل التخزين.", result.Answer)
		assert.Empty(t, result.MessageID)
	})

	t.Run("existing session loads history", func(t *testing.T) {
		f := newChatFixture()
		history := []domain.Message{
			{Role: domain.RoleUser, Text: "من هو محمود درويش؟"},
			{Role: domain.RoleAssistant, Text: "شاعر فلسطيني."},
		}
		f.store.On("GetSessionMessages", ctx, "s1", 10).Return(history, nil)
		f.embedder.On("Embed", ctx, mock.Anything).Return([][]float32{vector}, nil)
		f.index.On("Search", ctx, mock.Anything, vector, 8).Return(docs, nil)
		f.store.On("SaveMessage", ctx, "s1", domain.RoleUser, mock.Anything).Return("u1", nil)
		f.store.On("SaveMessage", ctx, "s1", domain.RoleAssistant, mock.Anything).Return("a1", nil)

		var captured llm.Request
		f.provider.On("Complete", ctx, mock.Anything, "mock-model").
			Run(func(args mock.Arguments) { captured = args.Get(1).(llm.Request) }).
			Return(&llm.Response{Text: "كتب دواوين عديدة."}, nil)

		_, err := f.svc.GenerateChatResponse(ctx, "ماذا كتب هو؟", "s1")

		assert.NoError(t, err)
		assert.Contains(t, captured.Messages[0].Content, "من هو محمود درويش؟")
	})
}

func TestChatService_Feedback(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the message id as feedback id", func(t *testing.T) {
		f := newChatFixture()
		f.store.On("UpdateMessageFeedback", ctx, "s1", "m1", domain.RatingUp).Return(nil)

		feedbackID, err := f.svc.SubmitFeedback(ctx, "s1", "m1", domain.RatingUp)
		assert.NoError(t, err)
		assert.Equal(t, "m1", feedbackID)
		f.store.AssertExpectations(t)
	})

	t.Run("user message target fails", func(t *testing.T) {
		f := newChatFixture()
		f.store.On("UpdateMessageFeedback", ctx, "s1", "u1", domain.RatingDown).
			Return(domain.ErrNotAssistantMessage)

		feedbackID, err := f.svc.SubmitFeedback(ctx, "s1", "u1", domain.RatingDown)
		assert.ErrorIs(t, err, domain.ErrNotAssistantMessage)
		assert.Empty(t, feedbackID)
	})
}

func TestChatService_GetFeedbackStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("returns cached snapshot", func(t *testing.T) {
		f := newChatFixture()
		cached := &domain.FeedbackStatistics{Positive: 2, TotalAssistantMessages: 3}
		f.store.On("GetFeedbackStatistics", ctx, "s1").Return(cached, nil)

		got, err := f.svc.GetFeedbackStatistics(ctx, "s1")
		assert.NoError(t, err)
		assert.Equal(t, cached, got)
		f.store.AssertNotCalled(t, "RecalculateStatistics", mock.Anything, mock.Anything)
	})

	t.Run("recomputes when no snapshot exists", func(t *testing.T) {
		f := newChatFixture()
		fresh := &domain.FeedbackStatistics{Overall: domain.SentimentNoFeedback}
		f.store.On("GetFeedbackStatistics", ctx, "s1").Return(nil, nil)
		f.store.On("RecalculateStatistics", ctx, "s1").Return(fresh, nil)

		got, err := f.svc.GetFeedbackStatistics(ctx, "s1")
		assert.NoError(t, err)
		assert.Equal(t, fresh, got)
	})

	t.Run("unknown session yields an empty snapshot", func(t *testing.T) {
		f := newChatFixture()
		f.store.On("GetFeedbackStatistics", ctx, "missing").Return(nil, domain.ErrNotFound)

		got, err := f.svc.GetFeedbackStatistics(ctx, "missing")
		assert.NoError(t, err)
		assert.Equal(t, domain.SentimentNoFeedback, got.Overall)
		assert.Zero(t, got.TotalAssistantMessages)
		f.store.AssertNotCalled(t, "RecalculateStatistics", mock.Anything, mock.Anything)
	})
}
