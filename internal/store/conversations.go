package store

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

// DefaultOwnerFunc resolves the fallback owner for conversations created
// without an explicit owner (e.g. inbound webhook events).
type DefaultOwnerFunc func() string

// ConversationStore persists conversation threads in conversations.json.
// Conversation IDs are the counterparty identifier (PSID, phone number),
// so webhook deliveries are idempotent per sender.
type ConversationStore struct {
	path          string
	mu            sync.Mutex
	conversations []*core.Conversation
	systemPrompts map[string]string
	defaultOwner  DefaultOwnerFunc
}

type conversationsDoc struct {
	Conversations []*core.Conversation `json:"conversations"`
	SystemPrompts map[string]string    `json:"systemPrompts,omitempty"`
}

// NewConversationStore loads the conversation collection
func NewConversationStore(dataDir string, defaultOwner DefaultOwnerFunc) *ConversationStore {
	s := &ConversationStore{
		path:          filepath.Join(dataDir, "conversations.json"),
		systemPrompts: map[string]string{},
		defaultOwner:  defaultOwner,
	}
	var doc conversationsDoc
	readJSONFile(s.path, &doc)
	for _, c := range doc.Conversations {
		if c == nil || c.ID == "" {
			continue
		}
		s.conversations = append(s.conversations, c)
	}
	if doc.SystemPrompts != nil {
		s.systemPrompts = doc.SystemPrompts
	}
	return s
}

func (s *ConversationStore) save() error {
	return writeJSONFile(s.path, conversationsDoc{
		Conversations: s.conversations,
		SystemPrompts: s.systemPrompts,
	})
}

func (s *ConversationStore) find(id string) *core.Conversation {
	for _, c := range s.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// List returns all conversations, optionally filtered by owner
func (s *ConversationStore) List(ownerUserID string) []*core.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*core.Conversation
	for _, c := range s.conversations {
		if ownerUserID != "" && c.OwnerUserID != ownerUserID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out
}

// Get returns a conversation by ID
func (s *ConversationStore) Get(id string) (*core.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return nil, core.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

// Ensure returns the conversation for id, creating it when missing. New
// conversations start with AI mode on and the resolved default owner.
func (s *ConversationStore) Ensure(id, name string) (*core.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.find(id); c != nil {
		if name != "" && (c.Name == "" || c.Name == c.ID) {
			c.Name = name
			if err := s.save(); err != nil {
				return nil, err
			}
		}
		cp := *c
		return &cp, nil
	}

	if name == "" {
		name = id
	}
	owner := ""
	if s.defaultOwner != nil {
		owner = s.defaultOwner()
	}
	c := &core.Conversation{
		ID:          id,
		Name:        name,
		OwnerUserID: owner,
		AIMode:      true,
		Timestamp:   time.Now().UTC(),
		Messages:    []core.Message{},
	}
	s.conversations = append(s.conversations, c)
	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

// Append adds a message to a conversation, creating the thread if needed.
// LastMessage and Timestamp always mirror the appended message.
func (s *ConversationStore) Append(conversationID string, sender core.Sender, text string) (*core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(conversationID)
	if c == nil {
		owner := ""
		if s.defaultOwner != nil {
			owner = s.defaultOwner()
		}
		c = &core.Conversation{
			ID:          conversationID,
			Name:        conversationID,
			OwnerUserID: owner,
			AIMode:      true,
			Messages:    []core.Message{},
		}
		s.conversations = append(s.conversations, c)
	}

	msg := core.Message{
		ID:        core.NewMessageID(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
		IsRead:    sender == core.SenderAgent,
	}
	c.Messages = append(c.Messages, msg)
	c.LastMessage = msg.Text
	c.Timestamp = msg.Timestamp

	if err := s.save(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead flags every message in the conversation as read
func (s *ConversationStore) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return core.ErrConversationNotFound
	}
	for i := range c.Messages {
		c.Messages[i].IsRead = true
	}
	return s.save()
}

// SetAIMode toggles the auto-responder for one conversation
func (s *ConversationStore) SetAIMode(id string, enabled bool) (*core.Conversation, error) {
	return s.update(id, func(c *core.Conversation) {
		c.AIMode = enabled
	})
}

// SetOwner assigns a conversation to a user
func (s *ConversationStore) SetOwner(id, ownerUserID string) (*core.Conversation, error) {
	return s.update(id, func(c *core.Conversation) {
		c.OwnerUserID = ownerUserID
	})
}

// SetProfile sets display name / username / picture fetched from the platform
func (s *ConversationStore) SetProfile(id, name, username, profilePic string) (*core.Conversation, error) {
	return s.update(id, func(c *core.Conversation) {
		if name != "" {
			c.Name = name
		}
		if username != "" {
			c.Username = username
		}
		if profilePic != "" {
			c.ProfilePic = profilePic
		}
	})
}

// SetPending stores auto-start settings for a conversation
func (s *ConversationStore) SetPending(id string, p core.Pending) (*core.Conversation, error) {
	return s.update(id, func(c *core.Conversation) {
		c.Pending = p
	})
}

// SetSystemPrompt stores a per-conversation system prompt override
func (s *ConversationStore) SetSystemPrompt(id, prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prompt == "" {
		delete(s.systemPrompts, id)
	} else {
		s.systemPrompts[id] = prompt
	}
	return s.save()
}

// SystemPrompt returns the per-conversation system prompt override, if any
func (s *ConversationStore) SystemPrompt(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.systemPrompts[id]
}

// MergeSynced merges platform-synced conversations into the store without
// clobbering locally appended messages. A synced thread only replaces the
// local one when it carries more messages.
func (s *ConversationStore) MergeSynced(synced []*core.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sc := range synced {
		if sc == nil || sc.ID == "" {
			continue
		}
		local := s.find(sc.ID)
		if local == nil {
			cp := *sc
			if cp.Messages == nil {
				cp.Messages = []core.Message{}
			}
			if cp.OwnerUserID == "" && s.defaultOwner != nil {
				cp.OwnerUserID = s.defaultOwner()
			}
			s.conversations = append(s.conversations, &cp)
			continue
		}
		if sc.Name != "" {
			local.Name = sc.Name
		}
		if sc.ProfilePic != "" {
			local.ProfilePic = sc.ProfilePic
		}
		if len(sc.Messages) > len(local.Messages) {
			local.Messages = sc.Messages
			local.LastMessage = sc.LastMessage
			local.Timestamp = sc.Timestamp
		}
	}
	return s.save()
}

func (s *ConversationStore) update(id string, fn func(*core.Conversation)) (*core.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return nil, core.ErrConversationNotFound
	}
	fn(c)
	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}
