package store

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

// AuthStore persists accounts and onboarding answers in users.json. Session
// tokens are held in memory only, so restarting the server logs everyone out.
type AuthStore struct {
	path       string
	mu         sync.Mutex
	users      []*core.User
	onboarding map[string]*core.Onboarding
	tokens     map[string]string // token -> user ID
}

type usersDoc struct {
	Users      []*core.User                `json:"users"`
	Onboarding map[string]*core.Onboarding `json:"onboarding,omitempty"`
}

// NewAuthStore loads the user collection
func NewAuthStore(dataDir string) *AuthStore {
	s := &AuthStore{
		path:       filepath.Join(dataDir, "users.json"),
		onboarding: map[string]*core.Onboarding{},
		tokens:     map[string]string{},
	}
	var doc usersDoc
	readJSONFile(s.path, &doc)
	for _, u := range doc.Users {
		if u == nil || u.ID == "" {
			continue
		}
		s.users = append(s.users, u)
	}
	if doc.Onboarding != nil {
		s.onboarding = doc.Onboarding
	}
	return s
}

func (s *AuthStore) save() error {
	return writeJSONFile(s.path, usersDoc{Users: s.users, Onboarding: s.onboarding})
}

func (s *AuthStore) findByEmail(email string) *core.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *AuthStore) findByID(id string) *core.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// CreateUser registers a new account. The password is stored as given.
func (s *AuthStore) CreateUser(email, password, name string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, core.ErrMissingRequired
	}
	if s.findByEmail(email) != nil {
		return nil, core.ErrEmailRegistered
	}

	u := &core.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  password,
		Role:      "user",
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	s.users = append(s.users, u)
	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

// Authenticate checks email+password and returns the user
func (s *AuthStore) Authenticate(email, password string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByEmail(strings.TrimSpace(strings.ToLower(email)))
	if u == nil || u.Password != password {
		return nil, core.ErrInvalidCredentials
	}
	cp := *u
	return &cp, nil
}

// GetByID returns a user by ID
func (s *AuthStore) GetByID(id string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByID(id)
	if u == nil {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByEmail returns a user by email (case-insensitive)
func (s *AuthStore) GetByEmail(email string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByEmail(strings.TrimSpace(strings.ToLower(email)))
	if u == nil {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// Users returns all accounts in registration order
func (s *AuthStore) Users() []*core.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*core.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out
}

// FirstUserID returns the ID of the first-ever registered account, or ""
func (s *AuthStore) FirstUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) == 0 {
		return ""
	}
	return s.users[0].ID
}

// TouchLogin stamps the user's last login time
func (s *AuthStore) TouchLogin(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByID(id)
	if u == nil {
		return core.ErrUserNotFound
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	return s.save()
}

// IssueToken mints an opaque bearer token for the user
func (s *AuthStore) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// ResolveToken maps a bearer token back to its user
func (s *AuthStore) ResolveToken(token string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.tokens[token]
	if !ok {
		return nil, core.ErrUnauthorized
	}
	u := s.findByID(userID)
	if u == nil {
		return nil, core.ErrUnauthorized
	}
	cp := *u
	return &cp, nil
}

// RevokeToken invalidates a bearer token
func (s *AuthStore) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// SetOnboarding stores a user's questionnaire and marks onboarding complete
func (s *AuthStore) SetOnboarding(userID string, o *core.Onboarding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByID(userID)
	if u == nil {
		return core.ErrUserNotFound
	}
	s.onboarding[userID] = o
	u.OnboardingCompleted = true
	return s.save()
}

// GetOnboarding returns a user's questionnaire, or nil
func (s *AuthStore) GetOnboarding(userID string) *core.Onboarding {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.onboarding[userID]
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}

// OnboardedUserIDs returns IDs of users with stored onboarding, in
// registration order
func (s *AuthStore) OnboardedUserIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, u := range s.users {
		if s.onboarding[u.ID] != nil {
			out = append(out, u.ID)
		}
	}
	return out
}
