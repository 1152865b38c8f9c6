package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/surya9634/Work-Flow-zen/internal/core"
	"github.com/surya9634/Work-Flow-zen/internal/kb"
	"github.com/surya9634/Work-Flow-zen/internal/logging"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

// Answer is the responder result. Sources lists the retrieved item IDs that
// informed the reply.
type Answer struct {
	Reply   string   `json:"reply"`
	Sources []string `json:"sources"`
}

// weakIntentRe flags generic catalog questions that should bypass keyword
// scoring and use the owner's richest campaign instead.
var weakIntentRe = regexp.MustCompile(`(?i)\b(what|which|sell|product|info|details)\b`)

// Responder answers customer messages with owner-scoped campaign knowledge.
// Answer never returns an error: any LLM failure degrades to a deterministic
// template reply synthesized from stored or derived specs and price.
type Responder struct {
	builder    *kb.Builder
	client     *Client
	memories   *store.MemoryStore
	analytics  *store.AnalyticsStore
	prompts    *store.PromptStore
	auth       *store.AuthStore
	backfiller *Backfiller
}

// NewResponder wires a Responder
func NewResponder(builder *kb.Builder, client *Client, memories *store.MemoryStore, analytics *store.AnalyticsStore, prompts *store.PromptStore, auth *store.AuthStore, backfiller *Backfiller) *Responder {
	return &Responder{
		builder:    builder,
		client:     client,
		memories:   memories,
		analytics:  analytics,
		prompts:    prompts,
		auth:       auth,
		backfiller: backfiller,
	}
}

// Answer produces a reply for userText on behalf of the owner userID
func (r *Responder) Answer(ctx context.Context, userText, userID string) Answer {
	rctx := r.builder.Retrieve(userText, 3, userID)

	// Weak retrieval or a generic catalog question: substitute the owner's
	// most detailed campaign regardless of score.
	if len(rctx.Items) == 0 || weakIntentRe.MatchString(userText) {
		if best := r.builder.RichestOwned(userID); best != nil {
			rctx = kb.Context{Items: []*core.KnowledgeItem{best}, Text: kb.RenderWeakItem(best)}
		}
	}

	sources := make([]string, 0, len(rctx.Items))
	for _, it := range rctx.Items {
		sources = append(sources, it.ID)
	}

	system := r.buildSystemPrompt(rctx, userID, userText)
	reply, err := r.client.Complete(ctx, system, userText)
	if err != nil {
		logging.Warn("ai fallback used: %v", err)
		return Answer{Reply: r.fallbackReply(rctx, userText, userID), Sources: sources}
	}
	return Answer{Reply: strings.TrimSpace(reply), Sources: sources}
}

const behaviorRules = `You are an expert sales and support AI assistant. Your role is to engage customers naturally, build trust, and guide them toward their goals.

CORE PRINCIPLES:
• Be conversational, warm, and human-like in every response
• Listen actively and respond to what the customer actually needs
• Build genuine rapport before discussing products or pricing
• Adapt your communication style to match the customer (formal, casual, Hinglish, etc.)
• Keep responses concise and actionable - avoid walls of text

PERSONA GUIDELINES:
• Use the persona information provided (name, position, tone, campaign type)
• Match the specified tone (friendly, professional, casual, enthusiastic, helpful, confident)
• Embody the role authentically - if you're a support agent, be helpful; if sales, be consultative

CONVERSATION FLOW:
• Follow the conversation steps provided in the Chat Flow section
• Start with the opening strategy, then move through each step naturally
• Use the probing questions to understand customer needs deeply
• Address objections using the strategies provided
• Guide toward the CTA (call-to-action) when appropriate

TARGET AUDIENCE AWARENESS:
• Keep the target audience and their pain points in mind
• Speak directly to their challenges and goals
• Use language and examples that resonate with their context

PRODUCT INFORMATION:
• Use ONLY the specs, features, and details provided in the context
• Never invent or hallucinate product information
• If you don't know something, admit it honestly
• Present value and benefits before discussing price

PRICING STRATEGY:
• Don't mention price unless the customer asks
• When asked, provide the exact price from the context
• Emphasize value, ROI, and benefits to justify the price
• Negotiate only when necessary, offering value-adds instead of discounts
• Frame pricing in terms of investment and outcomes

OBJECTION HANDLING:
• Listen to concerns without being defensive
• Acknowledge the objection genuinely
• Provide specific, relevant responses using context information
• Use social proof, success stories, or guarantees when appropriate
• Reframe objections as opportunities to clarify value

RESPONSE STYLE:
• Keep responses short (2-4 sentences typically)
• Use natural, conversational language
• Ask one clear question at a time
• Use emojis sparingly and only when they fit the tone
• Be authentic - people buy from people they trust
• Avoid corporate jargon unless the persona requires it

CULTURAL FLUENCY:
• Mirror the customer's communication style
• Use Hinglish, regional expressions, or formal English as appropriate
• Understand Indian negotiation culture - it's relationship-driven
• Be patient with back-and-forth - it's part of building trust

REMEMBER: Your goal is to help, not to push. Make the customer feel understood, valued, and empowered to make the right decision for them.`

const formattingRules = `When responding to product inquiries, use this format:
1. Confirm the product name and express enthusiasm
2. Extract and list key specifications or features from the product description; if not detailed, highlight benefits or general features
3. If the user asks for price, provide it from the Context; otherwise, do not mention price
4. End with a strong call to action (e.g., "Would you like to purchase this product or learn more?")
For follow-up questions, provide specific details from the available context and history.`

// buildSystemPrompt assembles the prompt fragments in fixed order, skipping
// empty ones.
func (r *Responder) buildSystemPrompt(rctx kb.Context, userID, userText string) string {
	base := r.builder.KB()

	var fragments []string
	add := func(s string) {
		if s != "" {
			fragments = append(fragments, s)
		}
	}

	if p := r.prompts.Get(userID); p != "" {
		add("Business-specific instructions (scoped):\n" + truncate(p, 2000))
	}
	if ob := r.onboardingSummary(userID); ob != "" {
		add("Onboarding context:\n" + ob)
	}
	add(behaviorRules)

	products := r.builder.AvailableProducts()
	if len(products) > 0 {
		add("Available Products: " + strings.Join(products, ", "))
	} else {
		add("Available Products: No products listed yet")
	}
	if base.Business.About != "" {
		add("About Us: " + base.Business.About)
	}
	if catalog := r.builder.CatalogLines(userID, 8); len(catalog) > 0 {
		add("Owner Catalog:\n" + strings.Join(catalog, "\n"))
	}

	var top *core.KnowledgeItem
	if len(rctx.Items) > 0 {
		top = rctx.Items[0]
	}
	if top != nil {
		desc := top.Description
		if desc == "" {
			desc = "No description available"
		}
		line := "Active Campaign Information: " + desc
		if top.Price != "" {
			line += " | Price: " + top.Price
		}
		add(line)
		add(blockOrEmpty("Persona", personaLines(top.Persona)))
		add(blockOrEmpty("Targeting", targetLines(top.Target)))
		add(blockOrEmpty("Chat Flow", chatFlowLines(top.ChatFlow)))
		if top.Outreach != "" {
			add("Outreach hints: " + top.Outreach)
		}
	}

	if recent := r.recentTitles(userID); recent != "" {
		add("Recent conversation history:\n" + recent)
	}
	add(r.analyticsLine())
	add("Context:\n" + rctx.Text)
	add("Important: Use the exact Specs and Price from the Context for product details. Do not generalize or invent information.")
	add(formattingRules)

	return strings.Join(fragments, "\n")
}

func (r *Responder) onboardingSummary(userID string) string {
	ob := r.auth.GetOnboarding(userID)
	if ob == nil {
		return ""
	}
	var lines []string
	addLine := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	addLine("Business", ob.BusinessName)
	addLine("About", ob.BusinessAbout)
	addLine("Tone", ob.Tone)
	addLine("Industry", ob.Industry)
	addLine("Goals", strings.Join(ob.Goals, ", "))
	addLine("Challenges", strings.Join(ob.Challenges, ", "))
	return strings.Join(lines, "\n")
}

func (r *Responder) recentTitles(userID string) string {
	var lines []string
	for _, m := range r.memories.Recent(userID, 5) {
		lines = append(lines, "- "+m.Title)
	}
	return strings.Join(lines, "\n")
}

func (r *Responder) analyticsLine() string {
	a := r.analytics.Snapshot()
	get := func(key string) core.Counter {
		if c := a.Counters[key]; c != nil {
			return *c
		}
		return core.Counter{}
	}
	t := get("total")
	m := get(string(core.ChannelMessenger))
	w := get(string(core.ChannelWhatsApp))
	return fmt.Sprintf("Analytics — Total(sent:%d, received:%d); Messenger(sent:%d, received:%d); WhatsApp(sent:%d, received:%d).",
		t.Sent, t.Received, m.Sent, m.Received, w.Sent, w.Received)
}

func blockOrEmpty(title string, lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return title + "\n" + strings.Join(lines, "\n")
}

func personaLines(p core.Persona) []string {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Campaign Type", p.CampaignType)
	add("Name", p.Name)
	add("Position", p.Position)
	add("Tone", p.Tone)
	add("Voice", p.Voice)
	add("Notes", p.Notes)
	return lines
}

func targetLines(t core.Target) []string {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Target Audience", t.TargetAudience)
	add("Segment", t.Segment)
	add("Lead Source", t.LeadSource)
	if len(t.Segments) > 0 {
		lines = append(lines, "Segments: ["+`"`+strings.Join(t.Segments, `","`)+`"`+"]")
	}
	add("Pains", t.Pains)
	return lines
}

func chatFlowLines(f core.ChatFlow) []string {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Objective", f.Objective)
	add("Opening", f.Opening)
	add("Probing", f.Probing)
	add("Objections", f.Objections)
	add("CTA", f.CTA)
	if len(f.Steps) > 0 {
		var steps []string
		for i, s := range f.Steps {
			steps = append(steps, fmt.Sprintf("  %d. %s", i+1, s))
		}
		lines = append(lines, "Conversation Steps:\n"+strings.Join(steps, "\n"))
	}
	return lines
}

// fallbackReply synthesizes the deterministic template reply, persisting any
// specs or price it had to derive so the next question hits stored data.
func (r *Responder) fallbackReply(rctx kb.Context, userText, userID string) string {
	var top *core.KnowledgeItem
	if len(rctx.Items) > 0 {
		top = rctx.Items[0]
	}

	productName := "our product"
	topID := ""
	var specs []string
	if top != nil {
		if top.Name != "" {
			productName = top.Name
		}
		topID = top.ID
		specs = top.Specs
	}

	if len(specs) == 0 && top != nil {
		if derived := core.DeriveSpecs(top.Description); len(derived) > 0 {
			specs = derived
			r.backfiller.EnsureSpecs(topID)
		}
	}
	if len(specs) == 0 {
		var inferred []string
		inferred = append(inferred, core.InferFragments(userText)...)
		for _, m := range r.memories.Recent(userID, 5) {
			if t := strings.TrimSpace(m.Title); len(t) > 2 {
				inferred = append(inferred, t)
			}
		}
		inferred = append(inferred, core.InferFragments(r.builder.KB().Business.About)...)
		if deduped := core.DedupSpecs(inferred); len(deduped) > 0 {
			specs = deduped
			r.backfiller.PersistInferredSpecs(topID, productName, userID, deduped)
		}
	}

	specLines := "- No detailed specifications have been listed yet."
	if len(specs) > 0 {
		var lines []string
		for _, s := range specs {
			lines = append(lines, "- "+s)
		}
		specLines = strings.Join(lines, "\n")
	}

	price := ""
	if top != nil {
		price = top.Price
	}
	if price == "" {
		price = core.DerivePrice(userText)
		if price == "" {
			price = core.DerivePrice(r.builder.KB().Business.About)
		}
		if price != "" {
			r.backfiller.PersistPrice(topID, productName, userID, price, userText)
		}
	}
	priceLine := "For pricing information, please contact our sales team."
	if price != "" {
		priceLine = "Pricing: " + price
	}

	return strings.Join([]string{
		"We offer " + productName + ".",
		"",
		"Specifications:",
		specLines,
		"",
		priceLine,
		"Would you like more information about this product?",
	}, "\n")
}
