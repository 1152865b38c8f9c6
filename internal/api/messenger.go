package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/surya9634/Work-Flow-zen/internal/core"
	"github.com/surya9634/Work-Flow-zen/internal/logging"
)

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	ownerUserID := r.URL.Query().Get("ownerUserId")
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"conversations": s.conversations.List(ownerUserID),
	})
}

type createConversationRequest struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Pending *core.Pending `json:"pending"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		s.respondError(w, http.StatusBadRequest, "id required")
		return
	}

	conv, err := s.conversations.Ensure(req.ID, req.Name)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "conversation save failed")
		return
	}
	if req.Pending != nil {
		if conv, err = s.conversations.SetPending(req.ID, *req.Pending); err != nil {
			s.respondError(w, http.StatusInternalServerError, "conversation save failed")
			return
		}
	}
	s.Broadcast(EventConversationCreated, conv)
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "conversation": conv})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		s.respondError(w, http.StatusBadRequest, "conversationId required")
		return
	}
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "messages": conv.Messages})
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
	Sender         string `json:"sender"`
}

// handleSendMessage appends a dashboard message, bridges agent messages to
// Facebook, and auto-replies to customer messages when Global AI is on.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" {
		s.respondError(w, http.StatusBadRequest, "conversationId required")
		return
	}
	if req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "text required")
		return
	}
	sender := core.Sender(req.Sender)
	if sender != core.SenderCustomer {
		sender = core.SenderAgent
	}

	msg, err := s.conversations.Append(req.ConversationID, sender, req.Text)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "send failed")
		return
	}
	s.Broadcast(EventMessageCreated, map[string]any{"conversationId": req.ConversationID, "message": msg})

	if sender == core.SenderAgent {
		if messenger := s.messengerSender(); messenger.IsConfigured() {
			if err := messenger.Send(r.Context(), req.ConversationID, req.Text); err != nil {
				logging.Warn("fb send failed: %v", err)
			} else {
				s.analytics.Bump(core.ChannelMessenger, core.DirectionSent)
			}
		}
	}

	if sender == core.SenderCustomer && s.cfg.AI.GlobalAIEnabled {
		s.autoReply(r, req.ConversationID, req.Text)
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

// autoReply answers a customer message and appends the reply locally
func (s *Server) autoReply(r *http.Request, conversationID, text string) {
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return
	}
	contextUserID := conv.OwnerUserID
	if contextUserID == "" {
		contextUserID = conversationID
	}
	answer := s.responder.Answer(r.Context(), text, contextUserID)
	msg, err := s.conversations.Append(conversationID, core.SenderAgent, answer.Reply)
	if err != nil {
		logging.Warn("auto-reply append failed: %v", err)
		return
	}
	s.Broadcast(EventMessageCreated, map[string]any{"conversationId": conversationID, "message": msg})
}

type aiModeRequest struct {
	ConversationID string `json:"conversationId"`
	Enabled        bool   `json:"enabled"`
}

func (s *Server) handleSetAIMode(w http.ResponseWriter, r *http.Request) {
	var req aiModeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" {
		s.respondError(w, http.StatusBadRequest, "conversationId required")
		return
	}
	conv, err := s.conversations.SetAIMode(req.ConversationID, req.Enabled)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "conversation": conv})
}

type aiReplyRequest struct {
	ConversationID  string  `json:"conversationId"`
	LastUserMessage string  `json:"lastUserMessage"`
	SystemPrompt    *string `json:"systemPrompt"`
}

func (s *Server) handleAIReply(w http.ResponseWriter, r *http.Request) {
	var req aiReplyRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" {
		s.respondError(w, http.StatusBadRequest, "conversationId required")
		return
	}
	conv, err := s.conversations.Get(req.ConversationID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if req.SystemPrompt != nil {
		s.conversations.SetSystemPrompt(req.ConversationID, *req.SystemPrompt)
	}

	contextUserID := conv.OwnerUserID
	if contextUserID == "" {
		contextUserID = req.ConversationID
	}
	answer := s.responder.Answer(r.Context(), req.LastUserMessage, contextUserID)
	msg, err := s.conversations.Append(req.ConversationID, core.SenderAgent, answer.Reply)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "ai reply failed")
		return
	}
	s.Broadcast(EventMessageCreated, map[string]any{"conversationId": req.ConversationID, "message": msg})
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

type systemPromptRequest struct {
	ConversationID string  `json:"conversationId"`
	SystemPrompt   *string `json:"systemPrompt"`
}

func (s *Server) handleSetSystemPrompt(w http.ResponseWriter, r *http.Request) {
	var req systemPromptRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" {
		s.respondError(w, http.StatusBadRequest, "conversationId required")
		return
	}
	if req.SystemPrompt == nil {
		s.respondError(w, http.StatusBadRequest, "systemPrompt required")
		return
	}
	if _, err := s.conversations.Ensure(req.ConversationID, ""); err != nil {
		s.respondError(w, http.StatusInternalServerError, "system prompt save failed")
		return
	}
	if err := s.conversations.SetSystemPrompt(req.ConversationID, *req.SystemPrompt); err != nil {
		s.respondError(w, http.StatusInternalServerError, "system prompt save failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGetConversationOwner(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		s.respondError(w, http.StatusBadRequest, "conversationId required")
		return
	}
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"conversationId": conv.ID,
		"ownerUserId":    conv.OwnerUserID,
	})
}

type conversationOwnerRequest struct {
	ConversationID string `json:"conversationId"`
	OwnerUserID    string `json:"ownerUserId"`
}

func (s *Server) handleSetConversationOwner(w http.ResponseWriter, r *http.Request) {
	var req conversationOwnerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" || req.OwnerUserID == "" {
		s.respondError(w, http.StatusBadRequest, "conversationId and ownerUserId required")
		return
	}
	conv, err := s.conversations.SetOwner(req.ConversationID, req.OwnerUserID)
	if err != nil {
		if errors.Is(err, core.ErrConversationNotFound) {
			s.respondError(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "owner save failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "conversation": conv})
}

// handleSyncConversations pulls the page's conversations from Facebook and
// merges them into the local store.
func (s *Server) handleSyncConversations(w http.ResponseWriter, r *http.Request) {
	messenger := s.messengerSender()
	if !messenger.IsConfigured() {
		s.respondError(w, http.StatusBadRequest, "facebook not configured")
		return
	}
	synced, err := messenger.SyncConversations(r.Context())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "sync failed")
		return
	}
	if err := s.conversations.MergeSynced(synced); err != nil {
		s.respondError(w, http.StatusInternalServerError, "sync save failed")
		return
	}
	s.Broadcast(EventConversationsSynced, map[string]any{"count": len(synced)})
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "synced": len(synced)})
}

// --- Page owners & analytics ---

func (s *Server) handleListPageOwners(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "pages": s.pageOwners.All()})
}

func (s *Server) handleGetPageOwner(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if pageID == "" {
		s.respondError(w, http.StatusBadRequest, "pageId required")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"pageId":      pageID,
		"ownerUserId": s.pageOwners.Get(pageID),
	})
}

type pageOwnerRequest struct {
	PageID      string `json:"pageId"`
	OwnerUserID string `json:"ownerUserId"`
}

func (s *Server) handleSetPageOwner(w http.ResponseWriter, r *http.Request) {
	var req pageOwnerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PageID == "" || req.OwnerUserID == "" {
		s.respondError(w, http.StatusBadRequest, "pageId and ownerUserId required")
		return
	}
	if err := s.pageOwners.Set(req.PageID, req.OwnerUserID); err != nil {
		s.respondError(w, http.StatusInternalServerError, "save failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"pageId":      req.PageID,
		"ownerUserId": req.OwnerUserID,
	})
}

func (s *Server) handleGetAnalytics(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "analytics": s.analytics.Snapshot()})
}
