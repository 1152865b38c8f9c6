package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/surya9634/Work-Flow-zen/internal/ai"
	"github.com/surya9634/Work-Flow-zen/internal/config"
	"github.com/surya9634/Work-Flow-zen/internal/kb"
	"github.com/surya9634/Work-Flow-zen/internal/owner"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

// testServer wires a full server over a temp data dir. The AI client carries
// no API key, so replies come from the deterministic fallback.
func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Server.Port = 0
	cfg.AI.GlobalAIEnabled = false
	cfg.AI.GroqAPIKey = ""
	cfg.Webhook.VerifyToken = "test-verify"
	cfg.WhatsApp.VerifyToken = ""
	cfg.WhatsApp.Token = ""
	cfg.Facebook.PageToken = ""

	auth := store.NewAuthStore(dir)
	pageOwners := store.NewPageOwnerStore(dir)
	defaultOwner := store.NewDefaultOwnerStore(dir)
	resolver := owner.NewResolver(auth, pageOwners, defaultOwner)
	if _, err := resolver.Bootstrap(); err != nil {
		t.Fatal(err)
	}

	campaigns := store.NewCampaignStore(dir)
	conversations := store.NewConversationStore(dir, resolver.DefaultOwner)
	memories := store.NewMemoryStore(dir, true)
	analytics := store.NewAnalyticsStore(dir)
	profile := store.NewBusinessProfileStore(dir)
	prompts := store.NewPromptStore(dir)
	motherAI := store.NewMotherAIStore(dir)
	integrations := store.NewIntegrationStore(dir)

	builder := kb.NewBuilder(profile, auth, campaigns, motherAI)
	client := ai.NewClient(ai.ClientConfig{})
	backfiller := ai.NewBackfiller(campaigns, builder)
	responder := ai.NewResponder(builder, client, memories, analytics, prompts, auth, backfiller)

	return New(Config{
		AppConfig:     cfg,
		Auth:          auth,
		Campaigns:     campaigns,
		Conversations: conversations,
		Memories:      memories,
		Analytics:     analytics,
		PageOwners:    pageOwners,
		DefaultOwner:  defaultOwner,
		Profile:       profile,
		Prompts:       prompts,
		MotherAI:      motherAI,
		Integrations:  integrations,
		Builder:       builder,
		Responder:     responder,
		Resolver:      resolver,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var parsed map[string]any
	json.Unmarshal(rec.Body.Bytes(), &parsed)
	return rec, parsed
}

func TestAPI_Health(t *testing.T) {
	s := testServer(t)
	rec, body := doJSON(t, s, "GET", "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestAPI_SignupSigninLogout(t *testing.T) {
	s := testServer(t)

	rec, body := doJSON(t, s, "POST", "/api/auth/signup", map[string]string{
		"email": "ravi@example.com", "password": "secret", "name": "Ravi",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body %v", rec.Code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("signup returned no token")
	}

	rec, _ = doJSON(t, s, "POST", "/api/auth/signup", map[string]string{
		"email": "ravi@example.com", "password": "other",
	}, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", rec.Code)
	}

	rec, _ = doJSON(t, s, "POST", "/api/auth/signin", map[string]string{
		"email": "ravi@example.com", "password": "wrong",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad signin status = %d, want 401", rec.Code)
	}

	rec, body = doJSON(t, s, "POST", "/api/auth/signin", map[string]string{
		"email": "ravi@example.com", "password": "secret",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d", rec.Code)
	}

	rec, _ = doJSON(t, s, "POST", "/api/auth/logout", nil, token)
	if rec.Code != http.StatusOK {
		t.Errorf("logout status = %d", rec.Code)
	}
}

func TestAPI_OnboardingRequiresAuth(t *testing.T) {
	s := testServer(t)

	rec, _ := doJSON(t, s, "POST", "/api/onboarding", map[string]any{"userId": "x"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated onboarding status = %d, want 401", rec.Code)
	}

	_, signup := doJSON(t, s, "POST", "/api/auth/signup", map[string]string{
		"email": "ob@example.com", "password": "pw",
	}, "")
	token := signup["token"].(string)
	user := signup["user"].(map[string]any)
	userID := user["id"].(string)

	rec, body := doJSON(t, s, "POST", "/api/onboarding", map[string]any{
		"userId":        userID,
		"businessName":  "Acme",
		"businessAbout": "We sell widgets",
		"tone":          "friendly",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("onboarding status = %d, body %v", rec.Code, body)
	}
}

func TestAPI_CampaignLifecycle(t *testing.T) {
	s := testServer(t)

	rec, body := doJSON(t, s, "POST", "/api/campaigns", map[string]any{
		"name":        "Earbuds",
		"ownerUserId": "u1",
		"brief":       map[string]any{"description": "Noise cancelling. Rs. 1,299"},
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %v", rec.Code, body)
	}
	campaign := body["campaign"].(map[string]any)
	id := campaign["id"].(string)
	if id == "" {
		t.Fatal("no campaign id")
	}
	if campaign["price"] != "₹1,299" {
		t.Errorf("price = %v, want ₹1,299", campaign["price"])
	}

	// Owner-filtered list
	req := httptest.NewRequest("GET", "/api/campaigns?ownerUserId=u1", nil)
	rec2 := httptest.NewRecorder()
	s.Router().ServeHTTP(rec2, req)
	var list []map[string]any
	if err := json.Unmarshal(rec2.Body.Bytes(), &list); err != nil {
		t.Fatalf("list decode: %v", err)
	}
	if len(list) != 1 || list[0]["id"] != id {
		t.Errorf("list = %v", list)
	}

	rec, body = doJSON(t, s, "POST", fmt.Sprintf("/api/campaigns/%s/specs", id), map[string]any{
		"specs": []string{"ANC", "30h battery", "ANC"},
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("specs status = %d", rec.Code)
	}
	specs := body["campaign"].(map[string]any)["specs"].([]any)
	if len(specs) != 2 {
		t.Errorf("specs should dedup, got %v", specs)
	}

	rec, body = doJSON(t, s, "POST", fmt.Sprintf("/api/campaigns/%s/start", id), nil, "")
	if rec.Code != http.StatusOK || body["campaign"].(map[string]any)["active"] != true {
		t.Errorf("start failed: %d %v", rec.Code, body)
	}
	rec, body = doJSON(t, s, "POST", fmt.Sprintf("/api/campaigns/%s/stop", id), nil, "")
	if rec.Code != http.StatusOK || body["campaign"].(map[string]any)["active"] != false {
		t.Errorf("stop failed: %d %v", rec.Code, body)
	}

	rec, _ = doJSON(t, s, "DELETE", "/api/campaigns/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec, _ = doJSON(t, s, "DELETE", "/api/campaigns/"+id, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestAPI_PatchCampaign(t *testing.T) {
	s := testServer(t)

	rec, body := doJSON(t, s, "POST", "/api/campaigns", map[string]any{
		"name":        "Earbuds",
		"ownerUserId": "u1",
		"brief":       map[string]any{"description": "Noise cancelling. Rs. 1,299"},
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %v", rec.Code, body)
	}
	id := body["campaign"].(map[string]any)["id"].(string)

	rec, body = doJSON(t, s, "PATCH", "/api/campaigns/"+id, map[string]any{
		"price": "₹999",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %v", rec.Code, body)
	}
	campaign := body["campaign"].(map[string]any)
	if campaign["price"] != "₹999" {
		t.Errorf("price = %v, want ₹999", campaign["price"])
	}
	if campaign["name"] != "Earbuds" {
		t.Errorf("name = %v, partial patch wiped untouched fields", campaign["name"])
	}
	if campaign["brief"].(map[string]any)["description"] == "" {
		t.Error("partial patch wiped the description")
	}

	rec, _ = doJSON(t, s, "PATCH", "/api/campaigns/missing", map[string]any{"price": "₹1"}, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("patch missing status = %d, want 404", rec.Code)
	}
}

func TestAPI_GlobalAIAnswer(t *testing.T) {
	s := testServer(t)

	rec, body := doJSON(t, s, "POST", "/api/global-ai/answer", map[string]any{
		"text":   "what do you sell",
		"userId": "u1",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	reply, _ := body["reply"].(string)
	if reply == "" {
		t.Error("empty reply")
	}

	rec, _ = doJSON(t, s, "POST", "/api/global-ai/answer", map[string]any{}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing text status = %d, want 400", rec.Code)
	}

	rec, _ = doJSON(t, s, "GET", "/api/global-ai/answer", nil, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET usage status = %d, want 405", rec.Code)
	}
}

func TestAPI_WebhookVerify(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=test-verify&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Errorf("challenge echo = %q, want 12345", rec.Body.String())
	}

	req = httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("bad token status = %d, want 403", rec.Code)
	}
}

func TestAPI_MessengerWebhookStoresMessage(t *testing.T) {
	s := testServer(t)

	payload := map[string]any{
		"object": "page",
		"entry": []map[string]any{
			{
				"id": "page-1",
				"messaging": []map[string]any{
					{
						"sender":  map[string]any{"id": "psid-42"},
						"message": map[string]any{"mid": "m1", "text": "hi there"},
					},
				},
			},
		},
	}
	rec, _ := doJSON(t, s, "POST", "/messenger/webhook", payload, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d (must always be 200)", rec.Code)
	}

	conv, err := s.conversations.Get("psid-42")
	if err != nil {
		t.Fatalf("conversation not created: %v", err)
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Text != "hi there" {
		t.Errorf("messages = %+v", conv.Messages)
	}
	if conv.OwnerUserID == "" {
		t.Error("owner not assigned from page mapping")
	}

	// Analytics reflect the inbound message
	rec, body := doJSON(t, s, "GET", "/api/analytics", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatal("analytics endpoint failed")
	}
	counters := body["analytics"].(map[string]any)["counters"].(map[string]any)
	messenger := counters["messenger"].(map[string]any)
	if messenger["received"].(float64) != 1 {
		t.Errorf("messenger.received = %v, want 1", messenger["received"])
	}
}

func TestAPI_SendMessageAndList(t *testing.T) {
	s := testServer(t)

	rec, body := doJSON(t, s, "POST", "/api/messenger/send-message", map[string]any{
		"conversationId": "conv-1",
		"text":           "hello from the dashboard",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("send status = %d, body %v", rec.Code, body)
	}

	rec, body = doJSON(t, s, "GET", "/api/messenger/messages?conversationId=conv-1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("messages status = %d", rec.Code)
	}
	msgs := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Errorf("messages = %v", msgs)
	}

	rec, _ = doJSON(t, s, "GET", "/api/messenger/messages", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing conversationId status = %d, want 400", rec.Code)
	}
}

func TestAPI_AIConfig(t *testing.T) {
	s := testServer(t)

	rec, body := doJSON(t, s, "GET", "/api/ai/config", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get config status = %d", rec.Code)
	}
	cfg := body["config"].(map[string]any)
	if cfg["globalAiEnabled"] != false {
		t.Errorf("globalAiEnabled = %v, want false", cfg["globalAiEnabled"])
	}

	rec, body = doJSON(t, s, "POST", "/api/ai/config", map[string]any{
		"globalAiEnabled": true,
		"globalAiMode":    "hybrid",
		"memoryEnabled":   false,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("set config status = %d", rec.Code)
	}
	cfg = body["config"].(map[string]any)
	if cfg["globalAiEnabled"] != true || cfg["globalAiMode"] != "hybrid" || cfg["memoryEnabled"] != false {
		t.Errorf("config = %v", cfg)
	}

	// Invalid mode is ignored
	_, body = doJSON(t, s, "POST", "/api/ai/config", map[string]any{"globalAiMode": "bogus"}, "")
	if body["config"].(map[string]any)["globalAiMode"] != "hybrid" {
		t.Error("invalid mode should be ignored")
	}
}

func TestAPI_WhatsAppSendUnconfigured(t *testing.T) {
	s := testServer(t)
	rec, _ := doJSON(t, s, "POST", "/api/whatsapp/send-message", map[string]any{
		"phoneNumber": "15550001111",
		"message":     "hi",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unconfigured send status = %d, want 400", rec.Code)
	}
}

func TestAPI_PageOwners(t *testing.T) {
	s := testServer(t)

	rec, _ := doJSON(t, s, "POST", "/api/page-owners", map[string]any{
		"pageId": "page-9", "ownerUserId": "u9",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d", rec.Code)
	}

	rec, body := doJSON(t, s, "GET", "/api/page-owners/page-9", nil, "")
	if rec.Code != http.StatusOK || body["ownerUserId"] != "u9" {
		t.Errorf("get = %d %v", rec.Code, body)
	}

	rec, _ = doJSON(t, s, "POST", "/api/page-owners", map[string]any{"pageId": "page-9"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing owner status = %d, want 400", rec.Code)
	}
}
