package store

import (
	"path/filepath"
	"sync"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

// MotherAIStore persists flow-builder configs in motherAI.json. At most one
// config is active at a time; its labels and keywords augment campaign
// knowledge during retrieval.
type MotherAIStore struct {
	path     string
	mu       sync.Mutex
	configs  []*core.MotherAI
	activeID string
}

type motherAIDoc struct {
	Configs  []*core.MotherAI `json:"configs"`
	ActiveID string           `json:"activeId,omitempty"`
}

// NewMotherAIStore loads the Mother AI collection
func NewMotherAIStore(dataDir string) *MotherAIStore {
	s := &MotherAIStore{path: filepath.Join(dataDir, "motherAI.json")}
	var doc motherAIDoc
	readJSONFile(s.path, &doc)
	for _, c := range doc.Configs {
		if c == nil || c.ID == "" {
			continue
		}
		s.configs = append(s.configs, c)
	}
	s.activeID = doc.ActiveID
	return s
}

func (s *MotherAIStore) save() error {
	return writeJSONFile(s.path, motherAIDoc{Configs: s.configs, ActiveID: s.activeID})
}

func (s *MotherAIStore) find(id string) *core.MotherAI {
	for _, c := range s.configs {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// List returns all configs in insertion order
func (s *MotherAIStore) List() []*core.MotherAI {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*core.MotherAI, 0, len(s.configs))
	for _, c := range s.configs {
		cp := *c
		out = append(out, &cp)
	}
	return out
}

// Save inserts or replaces a config
func (s *MotherAIStore) Save(m *core.MotherAI) (*core.MotherAI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = core.NewMotherAIID()
	}
	if existing := s.find(m.ID); existing != nil {
		*existing = *m
	} else {
		cp := *m
		s.configs = append(s.configs, &cp)
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *m
	return &cp, nil
}

// Activate marks one config as the active flow
func (s *MotherAIStore) Activate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		return core.ErrMotherAINotFound
	}
	s.activeID = id
	return s.save()
}

// Deactivate clears the active flow
func (s *MotherAIStore) Deactivate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
	return s.save()
}

// Active returns the active config, or nil
func (s *MotherAIStore) Active() *core.MotherAI {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(s.activeID)
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Delete removes a config, clearing the active marker if it pointed there
func (s *MotherAIStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.configs {
		if c.ID == id {
			s.configs = append(s.configs[:i], s.configs[i+1:]...)
			if s.activeID == id {
				s.activeID = ""
			}
			return true, s.save()
		}
	}
	return false, nil
}
