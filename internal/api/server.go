// Package api provides the HTTP API server for Work-Flow-zen.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/surya9634/Work-Flow-zen/internal/ai"
	"github.com/surya9634/Work-Flow-zen/internal/channels"
	"github.com/surya9634/Work-Flow-zen/internal/config"
	"github.com/surya9634/Work-Flow-zen/internal/kb"
	"github.com/surya9634/Work-Flow-zen/internal/owner"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        *config.Config

	// Stores
	auth          *store.AuthStore
	campaigns     *store.CampaignStore
	conversations *store.ConversationStore
	memories      *store.MemoryStore
	analytics     *store.AnalyticsStore
	pageOwners    *store.PageOwnerStore
	defaultOwner  *store.DefaultOwnerStore
	profile       *store.BusinessProfileStore
	prompts       *store.PromptStore
	motherAI      *store.MotherAIStore
	integrations  *store.IntegrationStore

	// Components
	builder   *kb.Builder
	responder *ai.Responder
	resolver  *owner.Resolver
	wsHub     *EventHub
}

// Config for the server
type Config struct {
	AppConfig *config.Config

	Auth          *store.AuthStore
	Campaigns     *store.CampaignStore
	Conversations *store.ConversationStore
	Memories      *store.MemoryStore
	Analytics     *store.AnalyticsStore
	PageOwners    *store.PageOwnerStore
	DefaultOwner  *store.DefaultOwnerStore
	Profile       *store.BusinessProfileStore
	Prompts       *store.PromptStore
	MotherAI      *store.MotherAIStore
	Integrations  *store.IntegrationStore

	Builder   *kb.Builder
	Responder *ai.Responder
	Resolver  *owner.Resolver
}

// New creates a new API server
func New(cfg Config) *Server {
	s := &Server{
		cfg:           cfg.AppConfig,
		auth:          cfg.Auth,
		campaigns:     cfg.Campaigns,
		conversations: cfg.Conversations,
		memories:      cfg.Memories,
		analytics:     cfg.Analytics,
		pageOwners:    cfg.PageOwners,
		defaultOwner:  cfg.DefaultOwner,
		profile:       cfg.Profile,
		prompts:       cfg.Prompts,
		motherAI:      cfg.MotherAI,
		integrations:  cfg.Integrations,
		builder:       cfg.Builder,
		responder:     cfg.Responder,
		resolver:      cfg.Resolver,
		wsHub:         NewEventHub(),
	}

	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.AppConfig.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Request timeout stays off the webhook and socket routes: Meta
		// deliveries and the event stream manage their own lifetimes.
		r.Use(middleware.Timeout(60 * time.Second))

		// Auth
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/signin", s.handleSignin)
		r.Post("/auth/logout", s.handleLogout)
		r.With(s.requireAuth).Post("/onboarding", s.handleOnboarding)

		// Campaigns
		r.Get("/campaigns", s.handleListCampaigns)
		r.Post("/campaigns", s.handleUpsertCampaign)
		r.Patch("/campaigns/{id}", s.handlePatchCampaign)
		r.Post("/campaigns/{id}/specs", s.handleSetCampaignSpecs)
		r.Post("/campaigns/{id}/start", s.handleStartCampaign)
		r.Post("/campaigns/{id}/stop", s.handleStopCampaign)
		r.Delete("/campaigns/{id}", s.handleDeleteCampaign)

		// Mother AI flow configs
		r.Get("/mother-ai", s.handleListMotherAI)
		r.Post("/mother-ai", s.handleSaveMotherAI)
		r.Post("/mother-ai/activate/{id}", s.handleActivateMotherAI)

		// Analytics
		r.Get("/analytics", s.handleGetAnalytics)

		// Page owners
		r.Get("/page-owners", s.handleListPageOwners)
		r.Get("/page-owners/{pageID}", s.handleGetPageOwner)
		r.Post("/page-owners", s.handleSetPageOwner)

		// Messenger dashboard
		r.Get("/messenger/conversations", s.handleListConversations)
		r.Post("/messenger/conversations", s.handleCreateConversation)
		r.Get("/messenger/messages", s.handleGetMessages)
		r.Post("/messenger/send-message", s.handleSendMessage)
		r.Post("/messenger/ai-mode", s.handleSetAIMode)
		r.Post("/messenger/ai-reply", s.handleAIReply)
		r.Post("/messenger/system-prompt", s.handleSetSystemPrompt)
		r.Get("/messenger/conversation-owner", s.handleGetConversationOwner)
		r.Post("/messenger/conversation-owner", s.handleSetConversationOwner)
		r.Post("/messenger/sync", s.handleSyncConversations)

		// Global AI
		r.Post("/global-ai/answer", s.handleGlobalAIAnswer)
		r.Get("/global-ai/answer", s.handleGlobalAIAnswerUsage)
		r.Post("/ai/test", s.handleAITest)
		r.Get("/ai/test", s.handleAITestUsage)
		r.Get("/ai/memory", s.handleGetMemory)
		r.Get("/ai/config", s.handleGetAIConfig)
		r.Post("/ai/config", s.handleSetAIConfig)

		// WhatsApp
		r.Post("/whatsapp/send-message", s.handleWhatsAppSend)
		r.Get("/whatsapp/diagnose", s.handleWhatsAppDiagnose)
		r.Get("/integrations/whatsapp/config", s.handleGetWhatsAppConfig)
		r.Post("/integrations/whatsapp/config", s.handleSetWhatsAppConfig)

		// Integrations
		r.Get("/integrations/status", s.handleIntegrationsStatus)
		r.Get("/facebook/app", s.handleFacebookAppInfo)
	})

	// Platform webhooks
	r.Get("/webhook", s.handleWebhookVerify)
	r.Post("/webhook", s.handleWhatsAppWebhook)
	r.Get("/messenger/webhook", s.handleWebhookVerify)
	r.Post("/messenger/webhook", s.handleMessengerWebhook)

	// OAuth
	r.Get("/auth/facebook", s.handleFacebookAuth)
	r.Get("/auth/facebook/callback", s.handleFacebookCallback)
	r.Get("/auth/instagram", s.handleInstagramAuth)
	r.Get("/auth/instagram/callback", s.handleInstagramCallback)

	// Dashboard event stream
	r.Get("/socket", s.handleWebSocket)

	s.router = r
}

// Router exposes the configured router (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.wsHub.Run()
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Broadcast sends an event to all connected dashboard clients
func (s *Server) Broadcast(event string, data any) {
	s.wsHub.Broadcast(Event{Type: event, Data: data, Timestamp: time.Now().UTC()})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{"success": false, "error": message})
}

func (s *Server) decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

// requireAuth rejects requests without a resolvable bearer token
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.respondError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if _, err := s.auth.ResolveToken(token); err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// messengerSender builds a Messenger sender from the live config, falling
// back to OAuth-connected page credentials.
func (s *Server) messengerSender() *channels.Messenger {
	token := s.cfg.Facebook.PageToken
	pageID := s.cfg.Facebook.PageID
	if token == "" {
		if fb := s.integrations.Facebook(); fb != nil {
			token = fb.PageToken
			if pageID == "" {
				pageID = fb.PageID
			}
		}
	}
	return channels.NewMessenger(token, pageID, s.cfg.Facebook.MessageTag)
}

// whatsappSender builds a WhatsApp sender honoring test-mode credentials
func (s *Server) whatsappSender(preferredMode string) *channels.WhatsApp {
	mode, token, phoneNumberID := s.cfg.WhatsAppCreds(preferredMode)
	return channels.NewWhatsApp(token, phoneNumberID, mode)
}
