package core

import (
	"reflect"
	"testing"
)

func TestDeriveSpecs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "mixed delimiters",
			text: "Fast charging. Long battery life; Lightweight - Water resistant",
			want: []string{"Fast charging", "Long battery life", "Lightweight", "Water resistant"},
		},
		{
			name: "bullets and newlines",
			text: "• 8GB RAM\n• 256GB storage\n• OLED display",
			want: []string{"8GB RAM", "256GB storage", "OLED display"},
		},
		{
			name: "short fragments dropped",
			text: "ok. a; good battery",
			want: []string{"good battery"},
		},
		{
			name: "no alphanumerics dropped",
			text: "!!!. ???; solid build",
			want: []string{"solid build"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveSpecs(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeriveSpecs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDedupSpecs(t *testing.T) {
	got := DedupSpecs([]string{"one", "two", "one", "", "three", "two"})
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DedupSpecs = %v, want %v", got, want)
	}
}

func TestDedupSpecs_Cap(t *testing.T) {
	parts := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "a10"}
	got := DedupSpecs(parts)
	if len(got) != 8 {
		t.Errorf("DedupSpecs returned %d specs, want 8", len(got))
	}
	if got[0] != "a1" || got[7] != "a8" {
		t.Errorf("DedupSpecs order wrong: %v", got)
	}
}

func TestInferFragments(t *testing.T) {
	got := InferFragments("fast charging, water/dust proof")
	want := []string{"fast charging", "water", "dust proof"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InferFragments = %v, want %v", got, want)
	}
}

func TestDerivePrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"rupee symbol", "Special offer at ₹999 today", "₹999"},
		{"rs prefix normalized", "Price is Rs. 1,299 only", "₹1,299"},
		{"rs without dot", "costs Rs 500", "₹500"},
		{"dollar", "priced at $1,299.99 shipped", "$1,299.99"},
		{"bare thousands", "grand total 1,29,999 rupees", "1,29,999"},
		{"no price", "contact us for details", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivePrice(tt.text); got != tt.want {
				t.Errorf("DerivePrice(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCampaign_EnsureDerived(t *testing.T) {
	c := &Campaign{
		ID:    "c1",
		Brief: Brief{Description: "Fast charging. Long battery life. Rs. 1,299"},
	}

	if !c.EnsureDerived() {
		t.Fatal("EnsureDerived should report a change on first run")
	}
	if len(c.Specs) == 0 {
		t.Fatal("specs not derived")
	}
	if c.Price != "₹1,299" {
		t.Errorf("Price = %q, want ₹1,299", c.Price)
	}

	specs := append([]string(nil), c.Specs...)
	price := c.Price
	if c.EnsureDerived() {
		t.Error("EnsureDerived should be a no-op on second run")
	}
	if !reflect.DeepEqual(c.Specs, specs) || c.Price != price {
		t.Error("EnsureDerived mutated already-derived fields")
	}
}

func TestCampaign_EnsureDerived_KeepsExisting(t *testing.T) {
	c := &Campaign{
		ID:    "c2",
		Specs: []string{"hand-set spec"},
		Price: "$10",
		Brief: Brief{Description: "Something else entirely. Rs 999"},
	}
	if c.EnsureDerived() {
		t.Error("EnsureDerived should not touch populated fields")
	}
	if c.Specs[0] != "hand-set spec" || c.Price != "$10" {
		t.Errorf("fields overwritten: %v %q", c.Specs, c.Price)
	}
}
