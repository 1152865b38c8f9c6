package store

import (
	"path/filepath"
	"sync"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

// BusinessProfileStore persists the shared business identity
// (businessProfile.json)
type BusinessProfileStore struct {
	path    string
	mu      sync.Mutex
	profile core.BusinessProfile
}

type businessProfileDoc struct {
	Business core.BusinessProfile `json:"business"`
}

// NewBusinessProfileStore loads the business profile
func NewBusinessProfileStore(dataDir string) *BusinessProfileStore {
	s := &BusinessProfileStore{path: filepath.Join(dataDir, "businessProfile.json")}
	var doc businessProfileDoc
	readJSONFile(s.path, &doc)
	s.profile = doc.Business
	return s
}

// Get returns the business profile
func (s *BusinessProfileStore) Get() core.BusinessProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Set replaces the business profile
func (s *BusinessProfileStore) Set(p core.BusinessProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return writeJSONFile(s.path, businessProfileDoc{Business: s.profile})
}

// PromptStore persists per-user system prompt overrides (profile-prompts.json)
type PromptStore struct {
	path     string
	mu       sync.Mutex
	profiles map[string]promptEntry
}

type promptEntry struct {
	SystemPrompt string `json:"systemPrompt"`
}

type promptsDoc struct {
	Profiles map[string]promptEntry `json:"profiles"`
}

// NewPromptStore loads the prompt overrides
func NewPromptStore(dataDir string) *PromptStore {
	s := &PromptStore{
		path:     filepath.Join(dataDir, "profile-prompts.json"),
		profiles: map[string]promptEntry{},
	}
	var doc promptsDoc
	readJSONFile(s.path, &doc)
	if doc.Profiles != nil {
		s.profiles = doc.Profiles
	}
	return s
}

// Get returns the stored system prompt for a user, or ""
func (s *PromptStore) Get(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[userID].SystemPrompt
}

// Set stores (or clears) the system prompt for a user
func (s *PromptStore) Set(userID, prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prompt == "" {
		delete(s.profiles, userID)
	} else {
		s.profiles[userID] = promptEntry{SystemPrompt: prompt}
	}
	return writeJSONFile(s.path, promptsDoc{Profiles: s.profiles})
}
