package store

import "testing"

func TestMemoryStore_AppendAndRecent(t *testing.T) {
	s := NewMemoryStore(t.TempDir(), true)

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.Append("u1", title, "note", nil); err != nil {
			t.Fatal(err)
		}
	}

	recent := s.Recent("u1", 2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) = %d items", len(recent))
	}
	// Oldest-first within the window
	if recent[0].Title != "second" || recent[1].Title != "third" {
		t.Errorf("Recent order wrong: %s, %s", recent[0].Title, recent[1].Title)
	}

	all := s.Recent("u1", 0)
	if len(all) != 3 {
		t.Errorf("Recent(0) should return all, got %d", len(all))
	}
}

func TestMemoryStore_Disabled(t *testing.T) {
	s := NewMemoryStore(t.TempDir(), false)

	m, err := s.Append("u1", "ignored", "note", nil)
	if err != nil || m != nil {
		t.Errorf("disabled Append = (%v, %v), want (nil, nil)", m, err)
	}
	if len(s.Recent("u1", 5)) != 0 {
		t.Error("disabled store should stay empty")
	}

	s.SetEnabled(true)
	if _, err := s.Append("u1", "kept", "note", nil); err != nil {
		t.Fatal(err)
	}
	if len(s.Recent("u1", 5)) != 1 {
		t.Error("append after enable should be stored")
	}
}

func TestMemoryStore_EmptyUserIgnored(t *testing.T) {
	s := NewMemoryStore(t.TempDir(), true)
	m, err := s.Append("", "title", "note", nil)
	if err != nil || m != nil {
		t.Errorf("empty user Append = (%v, %v), want (nil, nil)", m, err)
	}
}

func TestMemoryStore_PersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	s := NewMemoryStore(dir, true)
	s.Append("u1", "remember me", "note", map[string]any{"k": "v"})

	reloaded := NewMemoryStore(dir, true)
	items := reloaded.Recent("u1", 5)
	if len(items) != 1 || items[0].Title != "remember me" {
		t.Errorf("memories lost on reload: %+v", items)
	}
}
