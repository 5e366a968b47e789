package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hfakhoury/majalla-chat/internal/domain"
	"github.com/hfakhoury/majalla-chat/internal/nlp"
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

func TestMemory_Load(t *testing.T) {
	store := new(MockSessionStore)
	mem := New(store, nlp.DefaultRules())
	ctx := context.Background()

	expected := []domain.Message{
		{ID: "1", Role: domain.RoleUser, Text: "سؤال"},
		{ID: "2", Role: domain.RoleAssistant, Text: "جواب"},
	}
	store.On("GetSessionMessages", ctx, "s1", 10).Return(expected, nil)

	got, err := mem.Load(ctx, "s1", 5)
	assert.NoError(t, err)
	assert.Equal(t, expected, got)
	store.AssertExpectations(t)
}

func TestMemory_Enhance(t *testing.T) {
	mem := New(nil, nlp.DefaultRules())

	history := []domain.Message{
		{Role: domain.RoleUser, Text: "من هو محمود درويش؟"},
		{Role: domain.RoleAssistant, Text: "شاعر فلسطيني معروف."},
	}

	t.Run("empty history returns query unchanged", func(t *testing.T) {
		query := "ماذا كتب؟"
		assert.Equal(t, query, mem.Enhance(query, nil))
	})

	t.Run("single entry history returns query unchanged", func(t *testing.T) {
		query := "ماذا كتب؟"
		assert.Equal(t, query, mem.Enhance(query, history[:1]))
	})

	t.Run("reference word triggers enhancement", func(t *testing.T) {
		got := mem.Enhance("ماذا كتب هو في المنفى البعيد؟", history)
		assert.Equal(t, "من هو محمود درويش؟ ماذا كتب هو في المنفى البعيد؟", got)
	})

	t.Run("short query triggers enhancement", func(t *testing.T) {
		got := mem.Enhance("وماذا بعد؟", history)
		assert.True(t, strings.HasPrefix(got, "من هو محمود درويش؟ "))
		assert.True(t, strings.HasSuffix(got, "وماذا بعد؟"))
	})

	t.Run("standalone query passes through", func(t *testing.T) {
		query := "ما رأي النقاد العرب في تجربة الرواية التاريخية الحديثة عموماً"
		assert.Equal(t, query, mem.Enhance(query, history))
	})

	t.Run("current query text is never truncated", func(t *testing.T) {
		long := strings.Repeat("سؤال طويل ", 60)
		got := mem.Enhance(long, history)
		assert.Contains(t, got, long)
	})

	t.Run("prepended context respects length cap", func(t *testing.T) {
		longHistory := []domain.Message{
			{Role: domain.RoleUser, Text: strings.Repeat("كلمة ", 200)},
			{Role: domain.RoleAssistant, Text: "جواب"},
		}
		got := mem.Enhance("وماذا عنه؟", longHistory)
		assert.LessOrEqual(t, len([]rune(got)), 500)
		assert.True(t, strings.HasSuffix(got, "وماذا عنه؟"))
	})
}
