package store

import (
	"path/filepath"
	"sync"
)

// PageOwnerStore maps platform page IDs to owning user IDs (page-owners.json)
type PageOwnerStore struct {
	path   string
	mu     sync.Mutex
	owners map[string]string
}

type pageOwnersDoc struct {
	Owners map[string]string `json:"owners"`
}

// NewPageOwnerStore loads the page-owner mapping
func NewPageOwnerStore(dataDir string) *PageOwnerStore {
	s := &PageOwnerStore{
		path:   filepath.Join(dataDir, "page-owners.json"),
		owners: map[string]string{},
	}
	var doc pageOwnersDoc
	readJSONFile(s.path, &doc)
	if doc.Owners != nil {
		s.owners = doc.Owners
	}
	return s
}

// Get returns the owner for a page ID, or ""
func (s *PageOwnerStore) Get(pageID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[pageID]
}

// Set records the owner for a page ID
func (s *PageOwnerStore) Set(pageID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[pageID] = userID
	return writeJSONFile(s.path, pageOwnersDoc{Owners: s.owners})
}

// All returns a copy of the mapping
func (s *PageOwnerStore) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.owners))
	for k, v := range s.owners {
		out[k] = v
	}
	return out
}

// DefaultOwnerStore persists the single fallback owner user ID
// (default-owner.json)
type DefaultOwnerStore struct {
	path   string
	mu     sync.Mutex
	userID string
}

type defaultOwnerDoc struct {
	UserID string `json:"userId"`
}

// NewDefaultOwnerStore loads the fallback owner
func NewDefaultOwnerStore(dataDir string) *DefaultOwnerStore {
	s := &DefaultOwnerStore{path: filepath.Join(dataDir, "default-owner.json")}
	var doc defaultOwnerDoc
	readJSONFile(s.path, &doc)
	s.userID = doc.UserID
	return s
}

// Get returns the configured fallback owner, or ""
func (s *DefaultOwnerStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Set records the fallback owner
func (s *DefaultOwnerStore) Set(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	return writeJSONFile(s.path, defaultOwnerDoc{UserID: s.userID})
}
