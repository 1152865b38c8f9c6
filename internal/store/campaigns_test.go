package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

func TestCampaignStore_UpsertDerivesSpecsAndPrice(t *testing.T) {
	s := NewCampaignStore(t.TempDir())

	saved, err := s.Upsert(&core.Campaign{
		Name:  "Earbuds",
		Brief: core.Brief{Description: "Noise cancelling. 30h battery. Rs. 1,299"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" || !strings.HasPrefix(saved.ID, "c_") {
		t.Errorf("ID = %q, want generated c_ prefix", saved.ID)
	}
	if len(saved.Specs) == 0 {
		t.Error("specs not derived from description")
	}
	if saved.Price != "₹1,299" {
		t.Errorf("Price = %q, want ₹1,299", saved.Price)
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestCampaignStore_UpsertPreservesCreatedAt(t *testing.T) {
	s := NewCampaignStore(t.TempDir())

	first, err := s.Upsert(&core.Campaign{ID: "c1", Name: "One"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Upsert(&core.Campaign{ID: "c1", Name: "One Renamed"})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("CreatedAt changed on update")
	}
	if second.Name != "One Renamed" {
		t.Errorf("Name = %q, want One Renamed", second.Name)
	}
	if len(s.List("")) != 1 {
		t.Error("upsert by ID should not duplicate")
	}
}

func TestCampaignStore_Patch(t *testing.T) {
	s := NewCampaignStore(t.TempDir())
	if _, err := s.Upsert(&core.Campaign{
		ID:    "c1",
		Name:  "Watch Pro",
		Brief: core.Brief{Description: "AMOLED display. 5ATM water resistance"},
		Price: "₹4,999",
	}); err != nil {
		t.Fatal(err)
	}

	// Partial payload: only price changes, everything else survives
	patched, err := s.Patch("c1", &core.Campaign{Price: "₹999"})
	if err != nil {
		t.Fatal(err)
	}
	if patched.Price != "₹999" {
		t.Errorf("Price = %q, want ₹999", patched.Price)
	}
	if patched.Name != "Watch Pro" {
		t.Errorf("Name = %q, patch wiped an untouched field", patched.Name)
	}
	if patched.Brief.Description == "" {
		t.Error("patch wiped the description")
	}
	if len(patched.Specs) == 0 {
		t.Error("patch should derive specs from the surviving description")
	}

	// New description re-derives empty specs, keeps the patched price
	if _, err := s.SetSpecs("c1", nil); err != nil {
		t.Fatal(err)
	}
	patched, err = s.Patch("c1", &core.Campaign{Brief: core.Brief{Description: "Fast charging. Long battery"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(patched.Specs) != 2 {
		t.Errorf("Specs = %v, want 2 fragments derived from the new description", patched.Specs)
	}
	if patched.Price != "₹999" {
		t.Errorf("Price = %q, want patched price kept", patched.Price)
	}

	if _, err := s.Patch("missing", &core.Campaign{Price: "₹1"}); !errors.Is(err, core.ErrCampaignNotFound) {
		t.Errorf("Patch(missing) = %v, want ErrCampaignNotFound", err)
	}
}

func TestCampaignStore_StartStop(t *testing.T) {
	s := NewCampaignStore(t.TempDir())
	if _, err := s.Upsert(&core.Campaign{ID: "c1"}); err != nil {
		t.Fatal(err)
	}

	started, err := s.Start("c1")
	if err != nil {
		t.Fatal(err)
	}
	if !started.Active || started.Status != "active" || started.StartedAt == nil {
		t.Errorf("start state wrong: %+v", started)
	}

	stopped, err := s.Stop("c1")
	if err != nil {
		t.Fatal(err)
	}
	if stopped.Active || stopped.Status != "paused" || stopped.StoppedAt == nil {
		t.Errorf("stop state wrong: %+v", stopped)
	}

	if _, err := s.Start("missing"); !errors.Is(err, core.ErrCampaignNotFound) {
		t.Errorf("Start(missing) = %v, want ErrCampaignNotFound", err)
	}
}

func TestCampaignStore_ListScopedByOwner(t *testing.T) {
	s := NewCampaignStore(t.TempDir())
	s.Upsert(&core.Campaign{ID: "a", OwnerUserID: "alice"})
	s.Upsert(&core.Campaign{ID: "b", OwnerUserID: "bob"})

	got := s.List("alice")
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("List(alice) = %v", got)
	}
	if len(s.List("")) != 2 {
		t.Error("List(\"\") should return all campaigns")
	}
}

func TestCampaignStore_Delete(t *testing.T) {
	s := NewCampaignStore(t.TempDir())
	s.Upsert(&core.Campaign{ID: "c1"})

	existed, err := s.Delete("c1")
	if err != nil || !existed {
		t.Errorf("Delete = (%v, %v), want (true, nil)", existed, err)
	}
	existed, err = s.Delete("c1")
	if err != nil || existed {
		t.Errorf("second Delete = (%v, %v), want (false, nil)", existed, err)
	}
}

func TestCampaignStore_EnsureSpecs(t *testing.T) {
	s := NewCampaignStore(t.TempDir())
	s.Upsert(&core.Campaign{
		ID:    "c1",
		Specs: []string{"already set"},
		Brief: core.Brief{Description: "Fast charging. Long battery"},
	})

	changed, err := s.EnsureSpecs("c1")
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("EnsureSpecs should not touch populated specs")
	}

	// Wipe specs and re-derive
	if _, err := s.SetSpecs("c1", nil); err != nil {
		t.Fatal(err)
	}
	changed, err = s.EnsureSpecs("c1")
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("EnsureSpecs should derive from the description")
	}
	c, _ := s.Get("c1")
	if len(c.Specs) != 2 {
		t.Errorf("Specs = %v, want 2 derived fragments", c.Specs)
	}
}

func TestCampaignStore_UpsertForOwner(t *testing.T) {
	s := NewCampaignStore(t.TempDir())

	created, err := s.UpsertForOwner("Watch Pro", "u1", "AMOLED display. Rs 4,999")
	if err != nil {
		t.Fatal(err)
	}
	if created.Price != "₹4,999" {
		t.Errorf("Price = %q, want ₹4,999", created.Price)
	}

	// Case-insensitive name match merges instead of creating
	merged, err := s.UpsertForOwner("watch pro", "u1", "Updated description with AMOLED display")
	if err != nil {
		t.Fatal(err)
	}
	if merged.ID != created.ID {
		t.Error("UpsertForOwner should match existing campaign case-insensitively")
	}
	if merged.Brief.Description != "Updated description with AMOLED display" {
		t.Errorf("description not merged: %q", merged.Brief.Description)
	}
	if merged.Price != "₹4,999" {
		t.Errorf("existing price overwritten: %q", merged.Price)
	}

	// Different owner gets a separate campaign
	other, err := s.UpsertForOwner("Watch Pro", "u2", "different owner")
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == created.ID {
		t.Error("campaigns must be scoped per owner")
	}
}

func TestCampaignStore_PersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	s := NewCampaignStore(dir)
	s.Upsert(&core.Campaign{ID: "c1", Name: "Gadget", Price: "₹99"})

	reloaded := NewCampaignStore(dir)
	c, err := reloaded.Get("c1")
	if err != nil {
		t.Fatalf("campaign lost on reload: %v", err)
	}
	if c.Name != "Gadget" || c.Price != "₹99" {
		t.Errorf("reloaded campaign = %+v", c)
	}
}
