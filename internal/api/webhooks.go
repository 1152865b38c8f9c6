package api

import (
	"net/http"

	"github.com/surya9634/Work-Flow-zen/internal/core"
	"github.com/surya9634/Work-Flow-zen/internal/logging"
)

// handleWebhookVerify answers the Meta webhook subscription challenge shared
// by the WhatsApp and Messenger endpoints.
func (s *Server) handleWebhookVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	expected := s.cfg.Webhook.VerifyToken
	if s.cfg.WhatsApp.VerifyToken != "" && token == s.cfg.WhatsApp.VerifyToken {
		expected = s.cfg.WhatsApp.VerifyToken
	}
	if mode == "subscribe" && token == expected && challenge != "" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}
	http.Error(w, "forbidden", http.StatusForbidden)
}

type waWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Messages []struct {
					ID   string `json:"id"`
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// handleWhatsAppWebhook processes inbound WhatsApp messages. Always responds
// 200: Meta retries aggressively on anything else.
func (s *Server) handleWhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	var payload waWebhookPayload
	if err := s.decodeJSON(r, &payload); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.From == "" || msg.Type != "text" || msg.Text.Body == "" {
					continue
				}
				text := msg.Text.Body
				s.analytics.Bump(core.ChannelWhatsApp, core.DirectionReceived)

				if !s.cfg.AI.GlobalAIEnabled {
					continue
				}
				answer := s.responder.Answer(r.Context(), text, msg.From)
				s.memories.Append(msg.From, "WA: "+clip(text, 48), "note", map[string]any{
					"conversationId": msg.ID,
					"channel":        "whatsapp",
					"sources":        answer.Sources,
				})

				sender := s.whatsappSender("")
				if !sender.IsConfigured() {
					logging.Warn("whatsapp reply skipped: not configured")
					continue
				}
				if err := sender.Send(r.Context(), msg.From, answer.Reply); err != nil {
					logging.Warn("whatsapp reply failed: %v", err)
					continue
				}
				s.analytics.Bump(core.ChannelWhatsApp, core.DirectionSent)
			}
		}
	}
	w.WriteHeader(http.StatusOK)
}

type fbWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID        string `json:"id"`
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Message struct {
				MID  string `json:"mid"`
				Text string `json:"text"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

// handleMessengerWebhook processes inbound Messenger messages: append to the
// PSID-keyed conversation, resolve the page owner, and auto-reply when Global
// AI is enabled. Always responds 200.
func (s *Server) handleMessengerWebhook(w http.ResponseWriter, r *http.Request) {
	var payload fbWebhookPayload
	if err := s.decodeJSON(r, &payload); err != nil || payload.Object != "page" {
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		pageOwner := s.resolver.EnsurePageOwner(entry.ID)
		for _, event := range entry.Messaging {
			psid := event.Sender.ID
			text := event.Message.Text
			if psid == "" || text == "" {
				continue
			}

			msg, err := s.conversations.Append(psid, core.SenderCustomer, text)
			if err != nil {
				logging.Warn("webhook append failed: %v", err)
				continue
			}
			s.Broadcast(EventMessageCreated, map[string]any{"conversationId": psid, "message": msg})
			s.analytics.Bump(core.ChannelMessenger, core.DirectionReceived)

			conv, err := s.conversations.Get(psid)
			if err != nil {
				continue
			}
			if pageOwner != "" && conv.OwnerUserID == "" {
				if updated, err := s.conversations.SetOwner(psid, pageOwner); err == nil {
					conv = updated
				}
			}
			if conv.ProfilePic == "" {
				if messenger := s.messengerSender(); messenger.IsConfigured() {
					if pic := messenger.ProfilePic(r.Context(), psid); pic != "" {
						if updated, err := s.conversations.SetProfile(psid, "", "", pic); err == nil {
							conv = updated
							s.Broadcast(EventConversationCreated, conv)
						}
					}
				}
			}

			if !s.cfg.AI.GlobalAIEnabled {
				continue
			}

			contextUserID := conv.OwnerUserID
			if contextUserID == "" {
				contextUserID = pageOwner
			}
			if contextUserID == "" {
				contextUserID = psid
			}
			answer := s.responder.Answer(r.Context(), text, contextUserID)
			s.memories.Append(psid, "FB: "+clip(text, 48), "note", map[string]any{
				"conversationId": event.Message.MID,
				"channel":        "messenger",
				"sources":        answer.Sources,
			})

			reply, err := s.conversations.Append(psid, core.SenderAgent, answer.Reply)
			if err != nil {
				logging.Warn("webhook reply append failed: %v", err)
				continue
			}
			s.Broadcast(EventMessageCreated, map[string]any{"conversationId": psid, "message": reply})

			messenger := s.messengerSender()
			if !messenger.IsConfigured() {
				logging.Warn("fb page token not configured, reply stored locally only")
				continue
			}
			if err := messenger.Send(r.Context(), psid, answer.Reply); err != nil {
				logging.Warn("fb reply failed: %v", err)
				continue
			}
			s.analytics.Bump(core.ChannelMessenger, core.DirectionSent)
		}
	}
	w.WriteHeader(http.StatusOK)
}

// --- WhatsApp utility endpoints ---

type whatsappSendRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
	Mode        string `json:"mode"`
}

func (s *Server) handleWhatsAppSend(w http.ResponseWriter, r *http.Request) {
	var req whatsappSendRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" || req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "phoneNumber and message required")
		return
	}
	sender := s.whatsappSender(req.Mode)
	if !sender.IsConfigured() {
		s.respondError(w, http.StatusBadRequest, "whatsapp not configured")
		return
	}
	if err := sender.Send(r.Context(), req.PhoneNumber, req.Message); err != nil {
		logging.Warn("whatsapp send failed: %v", err)
		s.respondError(w, http.StatusBadGateway, "whatsapp send failed")
		return
	}
	s.analytics.Bump(core.ChannelWhatsApp, core.DirectionSent)
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "mode": sender.Mode()})
}

func (s *Server) handleWhatsAppDiagnose(w http.ResponseWriter, _ *http.Request) {
	if !s.whatsappSender("").IsConfigured() {
		s.respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"issues":  []string{"whatsapp_not_configured"},
		})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGetWhatsAppConfig(w http.ResponseWriter, _ *http.Request) {
	token := s.cfg.WhatsApp.Token
	var tokenMasked any
	if len(token) > 10 {
		tokenMasked = token[:6] + "..." + token[len(token)-4:]
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"whatsapp": map[string]any{
			"connected":      s.whatsappSender("").IsConfigured(),
			"phoneNumberId":  s.cfg.WhatsApp.PhoneNumberID,
			"verifyTokenSet": s.cfg.WhatsApp.VerifyToken != "",
			"tokenMasked":    tokenMasked,
			"mode":           s.cfg.WhatsApp.Mode,
		},
	})
}

type whatsappConfigRequest struct {
	Token         string `json:"token"`
	PhoneNumberID string `json:"phoneNumberId"`
	VerifyToken   string `json:"verifyToken"`
	Mode          string `json:"mode"`
}

func (s *Server) handleSetWhatsAppConfig(w http.ResponseWriter, r *http.Request) {
	var req whatsappConfigRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" || req.PhoneNumberID == "" {
		s.respondError(w, http.StatusBadRequest, "token and phoneNumberId required")
		return
	}
	s.cfg.WhatsApp.Token = req.Token
	s.cfg.WhatsApp.PhoneNumberID = req.PhoneNumberID
	if req.VerifyToken != "" {
		s.cfg.WhatsApp.VerifyToken = req.VerifyToken
	}
	if req.Mode == "test" || req.Mode == "production" {
		s.cfg.WhatsApp.Mode = req.Mode
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"whatsapp": map[string]any{
			"connected":      true,
			"phoneNumberId":  s.cfg.WhatsApp.PhoneNumberID,
			"verifyTokenSet": s.cfg.WhatsApp.VerifyToken != "",
			"mode":           s.cfg.WhatsApp.Mode,
		},
	})
}
