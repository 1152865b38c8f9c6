package store

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

// CampaignStore persists campaigns in campaigns.json. Campaigns keep their
// insertion order; retrieval relies on that order for stable score ties.
type CampaignStore struct {
	path      string
	mu        sync.Mutex
	campaigns []*core.Campaign
}

type campaignsDoc struct {
	Campaigns []*core.Campaign `json:"campaigns"`
}

// NewCampaignStore loads (or initializes) the campaign collection
func NewCampaignStore(dataDir string) *CampaignStore {
	s := &CampaignStore{path: filepath.Join(dataDir, "campaigns.json")}
	var doc campaignsDoc
	readJSONFile(s.path, &doc)
	for _, c := range doc.Campaigns {
		if c == nil || c.ID == "" {
			continue
		}
		s.campaigns = append(s.campaigns, c)
	}
	return s
}

func (s *CampaignStore) save() error {
	return writeJSONFile(s.path, campaignsDoc{Campaigns: s.campaigns})
}

func (s *CampaignStore) find(id string) *core.Campaign {
	for _, c := range s.campaigns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// List returns campaigns, optionally filtered by owner (exact match)
func (s *CampaignStore) List(ownerUserID string) []*core.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*core.Campaign
	for _, c := range s.campaigns {
		if ownerUserID != "" && c.OwnerUserID != ownerUserID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out
}

// Get returns a campaign by ID
func (s *CampaignStore) Get(id string) (*core.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return nil, core.ErrCampaignNotFound
	}
	cp := *c
	return &cp, nil
}

// Upsert inserts or replaces a campaign, backfilling empty specs/price from
// the brief description. Existing non-empty values are never overwritten.
func (s *CampaignStore) Upsert(c *core.Campaign) (*core.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = core.NewCampaignID()
	}
	c.EnsureDerived()
	c.UpdatedAt = now

	if existing := s.find(c.ID); existing != nil {
		c.CreatedAt = existing.CreatedAt
		*existing = *c
	} else {
		c.CreatedAt = now
		cp := *c
		s.campaigns = append(s.campaigns, &cp)
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

// Patch merges the non-zero fields of patch into an existing campaign and
// re-derives empty specs/price from the resulting description. Unlike Upsert
// it never creates: a missing ID is ErrCampaignNotFound.
func (s *CampaignStore) Patch(id string, patch *core.Campaign) (*core.Campaign, error) {
	return s.update(id, func(c *core.Campaign) {
		if patch.Name != "" {
			c.Name = patch.Name
		}
		if patch.OwnerUserID != "" {
			c.OwnerUserID = patch.OwnerUserID
		}
		if patch.Brief.Description != "" {
			c.Brief.Description = patch.Brief.Description
		}
		if len(patch.Brief.Channels) > 0 {
			c.Brief.Channels = patch.Brief.Channels
		}
		if len(patch.Specs) > 0 {
			c.Specs = patch.Specs
		}
		if patch.Price != "" {
			c.Price = patch.Price
		}
		if patch.Persona != (core.Persona{}) {
			c.Persona = patch.Persona
		}
		if patch.Outreach != "" {
			c.Outreach = patch.Outreach
		}
		if patch.Message != (core.OutreachMessage{}) {
			c.Message = patch.Message
		}
		if patch.Target.TargetAudience != "" || patch.Target.Segment != "" || patch.Target.LeadSource != "" || len(patch.Target.Segments) > 0 || patch.Target.Pains != "" {
			c.Target = patch.Target
		}
		if patch.ChatFlow.Objective != "" || patch.ChatFlow.Opening != "" || patch.ChatFlow.Probing != "" || patch.ChatFlow.Objections != "" || patch.ChatFlow.CTA != "" || len(patch.ChatFlow.Steps) > 0 {
			c.ChatFlow = patch.ChatFlow
		}
		c.EnsureDerived()
	})
}

// SetSpecs replaces the structured specs list for a campaign
func (s *CampaignStore) SetSpecs(id string, specs []string) (*core.Campaign, error) {
	return s.update(id, func(c *core.Campaign) {
		c.Specs = specs
	})
}

// SetPrice sets the price for a campaign
func (s *CampaignStore) SetPrice(id, price string) (*core.Campaign, error) {
	return s.update(id, func(c *core.Campaign) {
		c.Price = price
	})
}

// Start marks a campaign active
func (s *CampaignStore) Start(id string) (*core.Campaign, error) {
	return s.update(id, func(c *core.Campaign) {
		now := time.Now().UTC()
		c.Active = true
		c.Status = "active"
		c.StartedAt = &now
	})
}

// Stop pauses a campaign
func (s *CampaignStore) Stop(id string) (*core.Campaign, error) {
	return s.update(id, func(c *core.Campaign) {
		now := time.Now().UTC()
		c.Active = false
		c.Status = "paused"
		c.StoppedAt = &now
	})
}

// Delete removes a campaign. Reports whether it existed.
func (s *CampaignStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.campaigns {
		if c.ID == id {
			s.campaigns = append(s.campaigns[:i], s.campaigns[i+1:]...)
			return true, s.save()
		}
	}
	return false, s.save()
}

// EnsureSpecs derives specs from the brief description when the campaign has
// none. Reports whether anything was persisted.
func (s *CampaignStore) EnsureSpecs(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil || len(c.Specs) > 0 {
		return false, nil
	}
	specs := core.DeriveSpecs(c.Brief.Description)
	if len(specs) == 0 {
		return false, nil
	}
	c.Specs = specs
	c.UpdatedAt = time.Now().UTC()
	return true, s.save()
}

// UpsertForOwner fetches or creates a campaign by owner plus case-insensitive
// name, merging in the description and deriving specs/price from it.
func (s *CampaignStore) UpsertForOwner(name, ownerUserID, description string) (*core.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cname := strings.TrimSpace(name)
	if cname == "" {
		cname = core.NewCampaignID()
	}

	var found *core.Campaign
	for _, c := range s.campaigns {
		if c.OwnerUserID == ownerUserID && strings.EqualFold(c.Name, cname) {
			found = c
			break
		}
	}

	now := time.Now().UTC()
	if found == nil {
		created := &core.Campaign{
			ID:          core.NewCampaignID(),
			Name:        cname,
			OwnerUserID: ownerUserID,
			Brief:       core.Brief{Description: description},
			Specs:       core.DeriveSpecs(description),
			Price:       core.DerivePrice(description),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.campaigns = append(s.campaigns, created)
		if err := s.save(); err != nil {
			return nil, err
		}
		cp := *created
		return &cp, nil
	}

	if description != "" {
		found.Brief.Description = description
	}
	if len(found.Specs) == 0 {
		found.Specs = core.DeriveSpecs(description)
	}
	if found.Price == "" {
		found.Price = core.DerivePrice(description)
	}
	found.UpdatedAt = now
	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *found
	return &cp, nil
}

func (s *CampaignStore) update(id string, fn func(*core.Campaign)) (*core.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return nil, core.ErrCampaignNotFound
	}
	fn(c)
	c.UpdatedAt = time.Now().UTC()
	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}
