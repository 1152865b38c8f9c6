package api

import (
	"net/http"
	"strconv"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

type answerRequest struct {
	Text           string `json:"text"`
	Prompt         string `json:"prompt"` // legacy alias for text
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}

func (req *answerRequest) text() string {
	if req.Text != "" {
		return req.Text
	}
	return req.Prompt
}

// handleGlobalAIAnswer is the direct query entry point every channel shares
func (s *Server) handleGlobalAIAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := req.text()
	if text == "" {
		s.respondError(w, http.StatusBadRequest, "text required")
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = "anon"
	}

	answer := s.responder.Answer(r.Context(), text, userID)
	s.memories.Append(userID, "Asked: "+clip(text, 48), "note", map[string]any{
		"conversationId": req.ConversationID,
		"lastText":       text,
		"sources":        answer.Sources,
	})

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reply":   answer.Reply,
		"text":    answer.Reply,
		"sources": answer.Sources,
	})
}

func (s *Server) handleGlobalAIAnswerUsage(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusMethodNotAllowed, map[string]any{
		"success": false,
		"error":   "method_not_allowed",
		"usage": map[string]any{
			"method": "POST",
			"path":   "/api/global-ai/answer",
			"body":   map[string]string{"text": "your question", "userId": "optional", "conversationId": "optional"},
		},
	})
}

func (s *Server) handleAITest(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := req.text()
	if text == "" {
		s.respondJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"pong":            true,
			"globalAiEnabled": s.cfg.AI.GlobalAIEnabled,
		})
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = "assistant"
	}

	answer := s.responder.Answer(r.Context(), text, userID)
	s.memories.Append(userID, "Assistant asked: "+clip(text, 48), "note", map[string]any{
		"conversationId": req.ConversationID,
		"lastText":       text,
		"sources":        answer.Sources,
		"channel":        "assistant",
	})

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reply":   answer.Reply,
		"text":    answer.Reply,
		"sources": answer.Sources,
	})
}

func (s *Server) handleAITestUsage(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"pong":            true,
		"globalAiEnabled": s.cfg.AI.GlobalAIEnabled,
		"usage": map[string]any{
			"method": "POST",
			"path":   "/api/ai/test",
			"body":   map[string]string{"text": "your prompt"},
		},
	})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.respondError(w, http.StatusBadRequest, "userId required")
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 5
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   s.memories.Recent(userID, limit),
	})
}

func (s *Server) aiConfigPayload() map[string]any {
	return map[string]any{
		"globalAiEnabled": s.cfg.AI.GlobalAIEnabled,
		"globalAiMode":    s.cfg.AI.GlobalAIMode,
		"memoryEnabled":   s.memories.Enabled(),
	}
}

func (s *Server) handleGetAIConfig(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "config": s.aiConfigPayload()})
}

type aiConfigRequest struct {
	GlobalAIEnabled *bool   `json:"globalAiEnabled"`
	GlobalAIMode    *string `json:"globalAiMode"`
	MemoryEnabled   *bool   `json:"memoryEnabled"`
}

func (s *Server) handleSetAIConfig(w http.ResponseWriter, r *http.Request) {
	var req aiConfigRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GlobalAIEnabled != nil {
		s.cfg.AI.GlobalAIEnabled = *req.GlobalAIEnabled
	}
	if req.GlobalAIMode != nil && (*req.GlobalAIMode == "replace" || *req.GlobalAIMode == "hybrid") {
		s.cfg.AI.GlobalAIMode = *req.GlobalAIMode
	}
	if req.MemoryEnabled != nil {
		s.cfg.AI.MemoryEnabled = *req.MemoryEnabled
		s.memories.SetEnabled(*req.MemoryEnabled)
	}
	s.builder.Refresh()
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "config": s.aiConfigPayload()})
}

func clip(s string, n int) string {
	return core.TruncateBytes(s, n)
}
