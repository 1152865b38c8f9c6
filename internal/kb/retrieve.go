package kb

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

// Context is a retrieval result: the selected items plus their rendered
// text block.
type Context struct {
	Items []*core.KnowledgeItem
	Text  string
}

// Retrieve scores every KB item against the query and returns the top k with
// a rendered context block. ownerUserID != "" restricts to that owner before
// scoring. k <= 0 defaults to 3. Zero-score items are dropped; ties keep KB
// order.
func (b *Builder) Retrieve(query string, k int, ownerUserID string) Context {
	if k <= 0 {
		k = 3
	}
	q := strings.ToLower(query)

	items := b.KB().Items
	if ownerUserID != "" {
		var scoped []*core.KnowledgeItem
		for _, it := range items {
			if it.OwnerUserID == ownerUserID {
				scoped = append(scoped, it)
			}
		}
		items = scoped
	}

	type scored struct {
		score int
		item  *core.KnowledgeItem
	}
	var hits []scored
	for _, it := range items {
		hay := haystack(it)
		score := 0
		if strings.Contains(hay, q) {
			score += 5
		}
		if strings.ToLower(it.ID) == q {
			score += 10
		}
		for _, tok := range tokenize(q) {
			if strings.Contains(hay, tok) {
				score += 2
			}
		}
		if score > 0 {
			hits = append(hits, scored{score, it})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > k {
		hits = hits[:k]
	}

	ctx := Context{}
	var lines []string
	for _, h := range hits {
		ctx.Items = append(ctx.Items, h.item)
		lines = append(lines, RenderItem(h.item))
	}
	ctx.Text = strings.Join(lines, "\n")
	return ctx
}

// haystack concatenates every searchable field of an item, lower-cased
func haystack(it *core.KnowledgeItem) string {
	parts := []string{
		it.ID,
		it.Name,
		it.Description,
		strings.Join(it.Specs, " "),
		it.Price,
		strings.Join(it.Keywords, " "),
		it.Persona.Name, it.Persona.Position, it.Persona.Tone, it.Persona.Voice, it.Persona.Notes,
		it.Target.Segment, it.Target.TargetAudience, segmentsJSON(it.Target.Segments), it.Target.Pains, it.Target.LeadSource,
		it.ChatFlow.Opening, it.ChatFlow.Objective, it.ChatFlow.Probing, it.ChatFlow.Objections, it.ChatFlow.CTA,
		it.Outreach,
		it.Message.InitialMessage, it.Message.FollowUpMessage,
		strings.Join(it.Channels, " "),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func segmentsJSON(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	data, err := json.Marshal(segments)
	if err != nil {
		return ""
	}
	return string(data)
}

// tokenize splits a lower-cased query on non-alphanumeric runs. Repeated
// tokens are kept so they score repeatedly.
func tokenize(q string) []string {
	return strings.FieldsFunc(q, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// RenderItem formats one item for a retrieval context block. The description
// is the primary content; the name is bracketed in front only when the
// description does not already contain it.
func RenderItem(it *core.KnowledgeItem) string {
	var b strings.Builder
	switch {
	case it.Description == "" && it.Name != "":
		b.WriteString("- " + it.Name)
	case it.Name != "" && !strings.Contains(strings.ToLower(it.Description), strings.ToLower(it.Name)):
		b.WriteString("- [" + it.Name + "] " + it.Description)
	default:
		b.WriteString("- " + it.Description)
	}
	if len(it.Specs) > 0 {
		b.WriteString(" | Specs: " + strings.Join(it.Specs, ", "))
	}
	if it.Price != "" {
		b.WriteString(" | Price: " + it.Price)
	}
	if len(it.Keywords) > 0 {
		b.WriteString(" (keywords: " + strings.Join(it.Keywords, ", ") + ")")
	}
	return b.String()
}

// RenderWeakItem formats the weak-query fallback item, which uses a flatter
// layout than regular retrieval lines.
func RenderWeakItem(it *core.KnowledgeItem) string {
	var b strings.Builder
	b.WriteString("- " + it.Name + ": " + it.Description)
	if len(it.Specs) > 0 {
		b.WriteString(" Specs: " + strings.Join(it.Specs, ", "))
	}
	if it.Price != "" {
		b.WriteString(" Price: " + it.Price)
	}
	return b.String()
}

// CatalogLines renders up to max owner items as a catalog summary,
// independent of retrieval scores.
func (b *Builder) CatalogLines(ownerUserID string, max int) []string {
	items := b.OwnerItems(ownerUserID)
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	var lines []string
	for _, it := range items {
		line := "* " + it.Description
		if it.Name != "" && !strings.Contains(strings.ToLower(it.Description), strings.ToLower(it.Name)) {
			line = "* [" + it.Name + "] " + it.Description
		}
		if len(it.Specs) > 0 {
			line += " | Specs: " + strings.Join(it.Specs, ", ")
		}
		if it.Price != "" {
			line += " | Price: " + it.Price
		}
		var pbits []string
		if it.Persona.Name != "" {
			pbits = append(pbits, "persona="+it.Persona.Name)
		}
		if it.Persona.Tone != "" {
			pbits = append(pbits, "tone="+it.Persona.Tone)
		}
		if len(pbits) > 0 {
			line += " | " + strings.Join(pbits, ", ")
		}
		lines = append(lines, line)
	}
	return lines
}

// AvailableProducts lists distinct campaign descriptions across all owners,
// truncated to 200 characters for prompt budget.
func (b *Builder) AvailableProducts() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range b.KB().Items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			continue
		}
		desc = core.TruncateBytes(desc, 200)
		if seen[desc] {
			continue
		}
		seen[desc] = true
		out = append(out, desc)
	}
	return out
}
