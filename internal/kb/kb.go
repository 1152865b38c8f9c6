// Package kb builds and queries the denormalized knowledge base used by the
// AI responder. The KB is a pure derived view over the stores: it is rebuilt
// wholesale after any mutation that could affect retrieval and never written
// back except through the owning campaign.
package kb

import (
	"sync"

	"github.com/surya9634/Work-Flow-zen/internal/core"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

// KnowledgeBase is one immutable snapshot of searchable items plus the shared
// business identity.
type KnowledgeBase struct {
	Items    []*core.KnowledgeItem
	Business core.BusinessProfile
}

// Builder rebuilds the KB from store state and caches the latest snapshot
type Builder struct {
	profile   *store.BusinessProfileStore
	auth      *store.AuthStore
	campaigns *store.CampaignStore
	motherAI  *store.MotherAIStore

	mu sync.RWMutex
	kb *KnowledgeBase
}

// NewBuilder constructs a Builder and performs the initial build
func NewBuilder(profile *store.BusinessProfileStore, auth *store.AuthStore, campaigns *store.CampaignStore, motherAI *store.MotherAIStore) *Builder {
	b := &Builder{
		profile:   profile,
		auth:      auth,
		campaigns: campaigns,
		motherAI:  motherAI,
	}
	b.Refresh()
	return b
}

// KB returns the cached snapshot
func (b *Builder) KB() *KnowledgeBase {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.kb
}

// Refresh swaps in a freshly built snapshot. Call after every campaign
// mutation, onboarding save, Mother-AI activation, or backfill.
func (b *Builder) Refresh() {
	kb := b.Build()
	b.mu.Lock()
	b.kb = kb
	b.mu.Unlock()
}

// Build assembles a fresh KB from business profile, onboarding records, the
// legacy name/description campaign view augmented by the active Mother-AI
// flow, and the full structured campaigns. A failure in one source leaves the
// others intact; a partial KB is acceptable.
func (b *Builder) Build() *KnowledgeBase {
	kb := &KnowledgeBase{Business: core.BusinessProfile{Tone: core.DefaultTone}}

	if b.profile != nil {
		p := b.profile.Get()
		if p.Tone == "" {
			p.Tone = core.DefaultTone
		}
		kb.Business = p
	}

	if b.auth != nil {
		for _, uid := range b.auth.OnboardedUserIDs() {
			ob := b.auth.GetOnboarding(uid)
			if ob == nil {
				continue
			}
			keywords := append([]string{}, ob.Goals...)
			keywords = append(keywords, ob.Challenges...)
			if ob.Industry != "" {
				keywords = append(keywords, ob.Industry)
			}
			kb.Items = append(kb.Items, &core.KnowledgeItem{
				ID:          "onboarding_" + uid,
				Name:        ob.BusinessName,
				Description: ob.BusinessAbout,
				OwnerUserID: uid,
				Keywords:    keywords,
				Sources:     []string{"onboarding"},
			})
		}
	}

	if b.campaigns != nil {
		campaigns := b.campaigns.List("")

		// Legacy unscoped view: name/description plus channel and persona
		// keywords, augmented by the active Mother-AI flow.
		legacy := make(map[string]*core.KnowledgeItem, len(campaigns))
		for _, c := range campaigns {
			item := &core.KnowledgeItem{
				ID:          c.ID,
				Name:        c.Name,
				Description: c.Brief.Description,
				Sources:     []string{"campaigns"},
			}
			if item.Name == "" {
				item.Name = c.ID
			}
			item.Keywords = append(item.Keywords, c.Brief.Channels...)
			if c.Persona.Name != "" {
				item.Keywords = append(item.Keywords, c.Persona.Name)
			}
			if c.Persona.Tone != "" {
				item.Keywords = append(item.Keywords, c.Persona.Tone)
			}
			legacy[c.ID] = item
			kb.Items = append(kb.Items, item)
		}
		if b.motherAI != nil {
			if active := b.motherAI.Active(); active != nil {
				for _, el := range active.Elements {
					item := legacy[el.CampaignID]
					if item == nil {
						continue
					}
					if el.Label != "" && item.Name == "" {
						item.Name = el.Label
					}
					item.Keywords = append(item.Keywords, el.Keywords...)
					item.Sources = append(item.Sources, "mother_ai")
				}
			}
		}

		// Structured owner-scoped view carries the full campaign record
		for _, c := range campaigns {
			name := c.Name
			if name == "" {
				name = c.ID
			}
			kb.Items = append(kb.Items, &core.KnowledgeItem{
				ID:          c.ID,
				Name:        name,
				Description: c.Brief.Description,
				Specs:       c.Specs,
				Price:       c.Price,
				OwnerUserID: c.OwnerUserID,
				Persona:     c.Persona,
				Target:      c.Target,
				ChatFlow:    c.ChatFlow,
				Outreach:    c.Outreach,
				Message:     c.Message,
				Channels:    c.Brief.Channels,
				Sources:     []string{"campaigns"},
			})
		}
	}

	return kb
}

// OwnerItems returns the cached items belonging to one owner, in KB order
func (b *Builder) OwnerItems(ownerUserID string) []*core.KnowledgeItem {
	var out []*core.KnowledgeItem
	for _, it := range b.KB().Items {
		if it.OwnerUserID == ownerUserID {
			out = append(out, it)
		}
	}
	return out
}

// RichestOwned returns the owner's item with the largest spec count plus
// description length, or nil. Used by the weak-query fallback.
func (b *Builder) RichestOwned(ownerUserID string) *core.KnowledgeItem {
	var best *core.KnowledgeItem
	bestScore := -1
	for _, it := range b.OwnerItems(ownerUserID) {
		score := len(it.Specs) + len(it.Description)
		if score > bestScore {
			best = it
			bestScore = score
		}
	}
	return best
}
