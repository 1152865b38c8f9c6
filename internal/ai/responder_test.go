package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/surya9634/Work-Flow-zen/internal/core"
	"github.com/surya9634/Work-Flow-zen/internal/kb"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

// newTestResponder wires a responder around an unconfigured client so every
// answer exercises the deterministic fallback path.
func newTestResponder(t *testing.T) (*Responder, *store.CampaignStore, *kb.Builder) {
	t.Helper()
	dir := t.TempDir()

	profile := store.NewBusinessProfileStore(dir)
	auth := store.NewAuthStore(dir)
	campaigns := store.NewCampaignStore(dir)
	motherAI := store.NewMotherAIStore(dir)
	memories := store.NewMemoryStore(dir, true)
	analytics := store.NewAnalyticsStore(dir)
	prompts := store.NewPromptStore(dir)

	builder := kb.NewBuilder(profile, auth, campaigns, motherAI)
	client := NewClient(ClientConfig{}) // no API key: Complete always fails
	backfiller := NewBackfiller(campaigns, builder)
	r := NewResponder(builder, client, memories, analytics, prompts, auth, backfiller)
	return r, campaigns, builder
}

func TestAnswer_NeverEmpty(t *testing.T) {
	r, _, _ := newTestResponder(t)

	inputs := []string{
		"",
		"hello",
		"नमस्ते, क्या मिलेगा?",
		"!!! ??? ...",
		strings.Repeat("x", 5000),
	}
	for _, in := range inputs {
		ans := r.Answer(context.Background(), in, "u1")
		if strings.TrimSpace(ans.Reply) == "" {
			t.Errorf("Answer(%.20q) returned empty reply", in)
		}
	}
}

func TestAnswer_FallbackTemplate(t *testing.T) {
	r, campaigns, builder := newTestResponder(t)

	if _, err := campaigns.Upsert(&core.Campaign{
		ID:          "watch_pro",
		Name:        "Watch Pro",
		OwnerUserID: "u1",
		Specs:       []string{"AMOLED display", "5ATM water resistance"},
		Price:       "₹4,999",
		Brief:       core.Brief{Description: "Flagship smartwatch"},
	}); err != nil {
		t.Fatal(err)
	}
	builder.Refresh()

	ans := r.Answer(context.Background(), "watch_pro", "u1")
	want := "We offer Watch Pro.\n" +
		"\n" +
		"Specifications:\n" +
		"- AMOLED display\n" +
		"- 5ATM water resistance\n" +
		"\n" +
		"Pricing: ₹4,999\n" +
		"Would you like more information about this product?"
	if ans.Reply != want {
		t.Errorf("fallback reply mismatch:\ngot:  %q\nwant: %q", ans.Reply, want)
	}
	if len(ans.Sources) == 0 || ans.Sources[0] != "watch_pro" {
		t.Errorf("Sources = %v, want [watch_pro ...]", ans.Sources)
	}
}

func TestAnswer_NoKnowledge(t *testing.T) {
	r, _, _ := newTestResponder(t)

	ans := r.Answer(context.Background(), "", "nobody")
	want := "We offer our product.\n" +
		"\n" +
		"Specifications:\n" +
		"- No detailed specifications have been listed yet.\n" +
		"\n" +
		"For pricing information, please contact our sales team.\n" +
		"Would you like more information about this product?"
	if ans.Reply != want {
		t.Errorf("empty-KB reply mismatch:\ngot:  %q\nwant: %q", ans.Reply, want)
	}
}

func TestAnswer_WeakQueryPicksRichestCampaign(t *testing.T) {
	r, campaigns, builder := newTestResponder(t)

	if _, err := campaigns.Upsert(&core.Campaign{
		ID:          "basic",
		Name:        "Basic Band",
		OwnerUserID: "u1",
		Brief:       core.Brief{Description: "A band"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := campaigns.Upsert(&core.Campaign{
		ID:          "premium",
		Name:        "Premium Watch",
		OwnerUserID: "u1",
		Specs:       []string{"AMOLED", "GPS", "Heart-rate sensor"},
		Price:       "₹9,999",
		Brief:       core.Brief{Description: "Our flagship watch with a full sensor suite and week-long battery"},
	}); err != nil {
		t.Fatal(err)
	}
	builder.Refresh()

	ans := r.Answer(context.Background(), "what do you sell", "u1")
	if !strings.Contains(ans.Reply, "Premium Watch") {
		t.Errorf("weak catalog query should surface the richest campaign, got %q", ans.Reply)
	}
	if len(ans.Sources) != 1 || ans.Sources[0] != "premium" {
		t.Errorf("Sources = %v, want [premium]", ans.Sources)
	}
}

func TestAnswer_PriceBackfilledFromQuestion(t *testing.T) {
	r, campaigns, builder := newTestResponder(t)

	if _, err := campaigns.Upsert(&core.Campaign{
		ID:          "gizmo",
		Name:        "Gizmo",
		OwnerUserID: "u1",
		Specs:       []string{"Compact"},
		Brief:       core.Brief{Description: "A compact gizmo"},
	}); err != nil {
		t.Fatal(err)
	}
	builder.Refresh()

	ans := r.Answer(context.Background(), "price for gizmo Rs. 2,500", "u1")
	if !strings.Contains(ans.Reply, "Pricing: ₹2,500") {
		t.Errorf("reply should carry the derived price, got %q", ans.Reply)
	}

	// The derived price is written back to the campaign
	saved, err := campaigns.Get("gizmo")
	if err != nil {
		t.Fatal(err)
	}
	if saved.Price != "₹2,500" {
		t.Errorf("campaign price = %q, want ₹2,500 (backfill)", saved.Price)
	}
}

func TestBuildSystemPrompt_ContainsContextAndRules(t *testing.T) {
	r, campaigns, builder := newTestResponder(t)

	if _, err := campaigns.Upsert(&core.Campaign{
		ID:          "c1",
		Name:        "Gadget",
		OwnerUserID: "u1",
		Price:       "₹999",
		Brief:       core.Brief{Description: "A clever gadget"},
		Persona:     core.Persona{Name: "Asha", Tone: "friendly"},
	}); err != nil {
		t.Fatal(err)
	}
	builder.Refresh()

	rctx := builder.Retrieve("gadget", 3, "u1")
	prompt := r.buildSystemPrompt(rctx, "u1", "gadget")

	for _, want := range []string{
		"Available Products:",
		"Active Campaign Information: A clever gadget | Price: ₹999",
		"Persona\nName: Asha\nTone: friendly",
		"Context:\n",
		"Important: Use the exact Specs and Price from the Context",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestBehaviorRules_CarriesAllSections(t *testing.T) {
	sections := []string{
		"CORE PRINCIPLES:",
		"PERSONA GUIDELINES:",
		"CONVERSATION FLOW:",
		"TARGET AUDIENCE AWARENESS:",
		"PRODUCT INFORMATION:",
		"PRICING STRATEGY:",
		"OBJECTION HANDLING:",
		"RESPONSE STYLE:",
		"CULTURAL FLUENCY:",
		"REMEMBER:",
	}
	last := -1
	for _, sec := range sections {
		idx := strings.Index(behaviorRules, sec)
		if idx < 0 {
			t.Errorf("behavior rules missing section %q", sec)
			continue
		}
		if idx < last {
			t.Errorf("section %q out of order", sec)
		}
		last = idx
	}

	for _, want := range []string{
		"Keep the target audience and their pain points in mind",
		"Reframe objections as opportunities to clarify value",
		"Frame pricing in terms of investment and outcomes",
		"Avoid corporate jargon unless the persona requires it",
		"Use Hinglish, regional expressions, or formal English as appropriate",
	} {
		if !strings.Contains(behaviorRules, want) {
			t.Errorf("behavior rules missing %q", want)
		}
	}
}
