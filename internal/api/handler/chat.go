package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hfakhoury/majalla-chat/internal/api/response"
	"github.com/hfakhoury/majalla-chat/internal/domain"
	"github.com/hfakhoury/majalla-chat/internal/service"
)

var validate = validator.New()

// ChatRequest is the inbound payload for a conversational turn
type ChatRequest struct {
	Message   string `json:"message" validate:"required,min=2,max=2000"`
	SessionID string `json:"session_id"`
}

// FeedbackRequest records a rating against an assistant message
type FeedbackRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	MessageID string `json:"message_id" validate:"required"`
	Rating    string `json:"rating" validate:"required,oneof=up down"`
}

// ChatHandler handles chat and feedback endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat handles one conversational turn
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.chatService.GenerateChatResponse(r.Context(), req.Message, req.SessionID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, result)
}

// Feedback records a thumbs up/down rating on an assistant message
func (h *ChatHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	feedbackID, err := h.chatService.SubmitFeedback(r.Context(), req.SessionID, req.MessageID, domain.Rating(req.Rating))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			response.NotFound(w, "session or message not found")
		case errors.Is(err, domain.ErrNotAssistantMessage):
			response.BadRequest(w, "feedback can only be recorded against assistant messages")
		default:
			response.InternalError(w, err.Error())
		}
		return
	}

	response.OK(w, map[string]string{"feedback_id": feedbackID})
}

// History returns the most recent messages of a session
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		response.BadRequest(w, "missing session_id")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BadRequest(w, "invalid limit")
			return
		}
		limit = parsed
	}

	messages, err := h.chatService.GetSessionMessages(r.Context(), sessionID, limit)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, map[string]any{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// Statistics returns the feedback statistics snapshot for a session. An
// unknown session is not an error; it reports as an empty snapshot.
func (h *ChatHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	stats, err := h.chatService.GetFeedbackStatistics(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, map[string]any{
		"session_id": sessionID,
		"statistics": stats,
	})
}

// RecalculateStatistics recomputes the statistics from the message list
func (h *ChatHandler) RecalculateStatistics(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	stats, err := h.chatService.RecalculateStatistics(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, map[string]any{
		"session_id": sessionID,
		"statistics": stats,
	})
}
