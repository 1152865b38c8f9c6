package store

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

// MemoryStore persists append-only per-user memory logs in user-memories.json
type MemoryStore struct {
	path    string
	mu      sync.Mutex
	enabled bool
	users   map[string][]core.Memory
}

type memoriesDoc struct {
	Enabled bool                     `json:"enabled"`
	Users   map[string][]core.Memory `json:"users"`
}

// NewMemoryStore loads the memory collection
func NewMemoryStore(dataDir string, enabled bool) *MemoryStore {
	s := &MemoryStore{
		path:    filepath.Join(dataDir, "user-memories.json"),
		enabled: enabled,
		users:   map[string][]core.Memory{},
	}
	doc := memoriesDoc{Enabled: enabled}
	readJSONFile(s.path, &doc)
	s.enabled = doc.Enabled
	if doc.Users != nil {
		s.users = doc.Users
	}
	return s
}

func (s *MemoryStore) save() error {
	return writeJSONFile(s.path, memoriesDoc{Enabled: s.enabled, Users: s.users})
}

// Enabled reports whether memory capture is on
func (s *MemoryStore) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled toggles memory capture
func (s *MemoryStore) SetEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	return s.save()
}

// Append records a memory entry for a user. A no-op when capture is disabled.
func (s *MemoryStore) Append(userID, title, typ string, data map[string]any) (*core.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || userID == "" {
		return nil, nil
	}
	m := core.Memory{
		ID:        core.NewMemoryID(),
		Title:     title,
		Type:      typ,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	s.users[userID] = append(s.users[userID], m)
	if err := s.save(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Recent returns the last n memories for a user, oldest first
func (s *MemoryStore) Recent(userID string, n int) []core.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.users[userID]
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	out := make([]core.Memory, n)
	copy(out, all[len(all)-n:])
	return out
}

// All returns every memory for a user, oldest first
func (s *MemoryStore) All(userID string) []core.Memory {
	return s.Recent(userID, 0)
}
