package ai

import (
	"strings"

	"github.com/surya9634/Work-Flow-zen/internal/kb"
	"github.com/surya9634/Work-Flow-zen/internal/logging"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

// Backfiller persists specs and prices inferred while answering, so the next
// question hits stored data instead of re-deriving. All writes go through the
// campaign store and trigger a KB refresh; every method is best-effort.
type Backfiller struct {
	campaigns *store.CampaignStore
	builder   *kb.Builder
}

// NewBackfiller creates a Backfiller
func NewBackfiller(campaigns *store.CampaignStore, builder *kb.Builder) *Backfiller {
	return &Backfiller{campaigns: campaigns, builder: builder}
}

func (b *Backfiller) refresh() {
	if b.builder != nil {
		b.builder.Refresh()
	}
}

// EnsureSpecs derives and persists specs for a campaign whose specs are empty
func (b *Backfiller) EnsureSpecs(campaignID string) {
	changed, err := b.campaigns.EnsureSpecs(campaignID)
	if err != nil {
		logging.Warn("spec backfill failed for %s: %v", campaignID, err)
		return
	}
	if changed {
		b.refresh()
	}
}

// PersistInferredSpecs writes inferred specs into the campaign with the given
// id when it exists, or else upserts a campaign named productName for the
// owner with the inferred fragments joined as its description.
func (b *Backfiller) PersistInferredSpecs(campaignID, productName, ownerUserID string, specs []string) {
	if len(specs) == 0 {
		return
	}
	if campaignID != "" {
		if c, err := b.campaigns.Get(campaignID); err == nil {
			c.Specs = specs
			if c.Brief.Description == "" {
				c.Brief.Description = strings.Join(specs, ". ") + "."
			}
			if _, err := b.campaigns.Upsert(c); err != nil {
				logging.Warn("inferred spec persist failed for %s: %v", campaignID, err)
				return
			}
			b.refresh()
			return
		}
	}
	if _, err := b.campaigns.UpsertForOwner(productName, ownerUserID, strings.Join(specs, ". ")+"."); err != nil {
		logging.Warn("inferred spec upsert failed: %v", err)
		return
	}
	b.refresh()
}

// PersistPrice writes a derived price into the campaign with the given id, or
// else upserts a campaign for the owner from the source text.
func (b *Backfiller) PersistPrice(campaignID, productName, ownerUserID, price, sourceText string) {
	if price == "" {
		return
	}
	if campaignID != "" {
		if _, err := b.campaigns.Get(campaignID); err == nil {
			if _, err := b.campaigns.SetPrice(campaignID, price); err != nil {
				logging.Warn("price persist failed for %s: %v", campaignID, err)
				return
			}
			b.refresh()
			return
		}
	}
	if _, err := b.campaigns.UpsertForOwner(productName, ownerUserID, sourceText); err != nil {
		logging.Warn("price upsert failed: %v", err)
		return
	}
	b.refresh()
}
