package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hfakhoury/majalla-chat/internal/domain"
	"github.com/hfakhoury/majalla-chat/internal/llm"
	"github.com/hfakhoury/majalla-chat/internal/retrieval"
)

// MockSessionStore mocks domain.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SaveMessage(ctx context.Context, sessionID string, role domain.MessageRole, text string) (string, error) {
	args := m.Called(ctx, sessionID, role, text)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockSessionStore) UpdateMessageFeedback(ctx context.Context, sessionID, messageID string, rating domain.Rating) error {
	args := m.Called(ctx, sessionID, messageID, rating)
	return args.Error(0)
}

func (m *MockSessionStore) GetFeedbackStatistics(ctx context.Context, sessionID string) (*domain.FeedbackStatistics, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedbackStatistics), args.Error(1)
}

func (m *MockSessionStore) RecalculateStatistics(ctx context.Context, sessionID string) (*domain.FeedbackStatistics, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedbackStatistics), args.Error(1)
}

// MockEmbedder mocks embedding.Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockIndex mocks retrieval.Index
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Search(ctx context.Context, queryText string, queryVector []float32, topK int) ([]retrieval.Document, error) {
	args := m.Called(ctx, queryText, queryVector, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.Document), args.Error(1)
}

// MockProvider mocks llm.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) AvailableModels() []string {
	return []string{"mock-model"}
}

func (m *MockProvider) DefaultModel() string {
	return "mock-model"
}

func (m *MockProvider) IsConfigured() bool {
	return true
}

func (m *MockProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}
