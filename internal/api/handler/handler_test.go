package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hfakhoury/majalla-chat/internal/api/handler"
	"github.com/hfakhoury/majalla-chat/internal/llm"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

type stubProvider struct {
	name       string
	configured bool
}

func (p *stubProvider) Name() string              { return p.name }
func (p *stubProvider) AvailableModels() []string { return []string{p.name + "-model"} }
func (p *stubProvider) DefaultModel() string      { return p.name + "-model" }
func (p *stubProvider) IsConfigured() bool        { return p.configured }
func (p *stubProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	return &llm.Response{Text: "ok"}, nil
}

func TestListProviders(t *testing.T) {
	router := llm.NewRouter("openai")
	router.RegisterProvider(&stubProvider{name: "openai", configured: true})
	router.RegisterProvider(&stubProvider{name: "gemini", configured: false})

	req := httptest.NewRequest(http.MethodGet, "/api/llm-providers", nil)
	rec := httptest.NewRecorder()

	handler.ListProviders(router)(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["default_provider"] != "openai" {
		t.Errorf("expected default provider 'openai', got %v", data["default_provider"])
	}

	providers, ok := data["providers"].([]any)
	if !ok {
		t.Fatal("expected providers to be a list")
	}

	if len(providers) != 1 || providers[0] != "openai" {
		t.Errorf("expected only the configured provider, got %v", providers)
	}
}

func TestChatHandler_Validation(t *testing.T) {
	// Validation failures never reach the service layer.
	h := handler.NewChatHandler(nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing message", `{"session_id": "s1"}`},
		{"message too short", `{"message": "م"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()

			h.Chat(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestFeedbackHandler_Validation(t *testing.T) {
	h := handler.NewChatHandler(nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing message id", `{"session_id": "s1", "rating": "up"}`},
		{"invalid rating", `{"session_id": "s1", "message_id": "m1", "rating": "sideways"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()

			h.Feedback(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestHistoryHandler_MissingSessionID(t *testing.T) {
	h := handler.NewChatHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	rec := httptest.NewRecorder()

	h.History(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
