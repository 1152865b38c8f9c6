package store

import (
	"path/filepath"
	"sync"
	"time"
)

// FacebookIntegration is a connected Messenger page credential set
type FacebookIntegration struct {
	PageID      string    `json:"pageId"`
	PageToken   string    `json:"pageToken"`
	UserID      string    `json:"userId,omitempty"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// InstagramIntegration is a connected Instagram business account
type InstagramIntegration struct {
	UserID      string    `json:"userId"`
	IGUserID    string    `json:"igUserId,omitempty"`
	Username    string    `json:"username,omitempty"`
	AccessToken string    `json:"accessToken"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// IntegrationStore persists OAuth-connected platform credentials in
// integrations.json. Tokens here are written by the OAuth callbacks and read
// at send time when the environment carries none.
type IntegrationStore struct {
	path string
	mu   sync.Mutex
	doc  integrationsDoc
}

type integrationsDoc struct {
	Facebook  *FacebookIntegration            `json:"facebook,omitempty"`
	Instagram map[string]InstagramIntegration `json:"instagram,omitempty"`
}

// NewIntegrationStore loads the integrations collection
func NewIntegrationStore(dataDir string) *IntegrationStore {
	s := &IntegrationStore{path: filepath.Join(dataDir, "integrations.json")}
	readJSONFile(s.path, &s.doc)
	if s.doc.Instagram == nil {
		s.doc.Instagram = map[string]InstagramIntegration{}
	}
	return s
}

func (s *IntegrationStore) save() error {
	return writeJSONFile(s.path, s.doc)
}

// SetFacebook records a connected Messenger page
func (s *IntegrationStore) SetFacebook(pageID, pageToken, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Facebook = &FacebookIntegration{
		PageID:      pageID,
		PageToken:   pageToken,
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
	}
	return s.save()
}

// Facebook returns the connected page, or nil
func (s *IntegrationStore) Facebook() *FacebookIntegration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Facebook == nil {
		return nil
	}
	cp := *s.doc.Facebook
	return &cp
}

// SetInstagram records a connected Instagram account for a user
func (s *IntegrationStore) SetInstagram(userID string, ig InstagramIntegration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ig.UserID = userID
	ig.ConnectedAt = time.Now().UTC()
	s.doc.Instagram[userID] = ig
	return s.save()
}

// Instagram returns the connected Instagram account for a user, or nil
func (s *IntegrationStore) Instagram(userID string) *InstagramIntegration {
	s.mu.Lock()
	defer s.mu.Unlock()

	ig, ok := s.doc.Instagram[userID]
	if !ok {
		return nil
	}
	return &ig
}
