// internal/server/handlers/chat.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
)

// FallbackChatReply is returned whenever the language model cannot answer
const FallbackChatReply = "I'm having trouble reaching my knowledge base right now. Please try again in a moment."

// maxChatMessageLength bounds the accepted question size
const maxChatMessageLength = 2000

// Chatter answers chat questions
type Chatter interface {
	Chat(ctx context.Context, message string, position *tracking.Coordinate) (string, error)
}

// ChatRecorder receives chat metrics
type ChatRecorder interface {
	ObserveChat(outcome string)
}

// ChatHandler handles chat requests
type ChatHandler struct {
	chatter  Chatter
	tracker  tracking.Reader
	recorder ChatRecorder
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatter Chatter, tracker tracking.Reader, recorder ChatRecorder, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		chatter:  chatter,
		tracker:  tracker,
		recorder: recorder,
		logger:   logger,
	}
}

type chatRequest struct {
	Message     string               `json:"message"`
	ISSPosition *tracking.Coordinate `json:"issPosition"`
}

type chatResponse struct {
	ID       string `json:"id"`
	Response string `json:"response"`
	Fallback bool   `json:"fallback"`
}

// PostMessage answers a chat message. Model failures and missing credentials
// produce the fallback reply rather than an error status.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondWithError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if len(message) > maxChatMessageLength {
		respondWithError(w, http.StatusBadRequest, "Message is too long")
		return
	}

	position := req.ISSPosition
	if position == nil {
		if pos, ok := h.tracker.Current(); ok {
			position = &pos
		}
	}

	resp := chatResponse{ID: uuid.New().String()}

	reply, err := h.chatter.Chat(r.Context(), message, position)
	switch {
	case err == nil:
		resp.Response = reply
		h.observe("answered")
	case errors.Is(err, fact.ErrNotConfigured):
		resp.Response = FallbackChatReply
		resp.Fallback = true
		h.observe("not_configured")
	default:
		h.logger.Warn("Chat request failed", zap.Error(err))
		resp.Response = FallbackChatReply
		resp.Fallback = true
		h.observe("failed")
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) observe(outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveChat(outcome)
	}
}
