package core

import (
	"time"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderAgent    Sender = "agent"
	SenderCustomer Sender = "customer"
)

// Channel identifies a messaging platform
type Channel string

const (
	ChannelMessenger Channel = "messenger"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelInstagram Channel = "instagram"
)

// Direction of a counted message
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// Persona describes how the AI should present itself for a campaign.
// All fields are optional free text; rendering skips empty ones.
type Persona struct {
	CampaignType string `json:"campaignType,omitempty"`
	Name         string `json:"name,omitempty"`
	Position     string `json:"position,omitempty"`
	Tone         string `json:"tone,omitempty"`
	Voice        string `json:"voice,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Target describes who a campaign is aimed at
type Target struct {
	TargetAudience string   `json:"targetAudience,omitempty"`
	Segment        string   `json:"segment,omitempty"`
	LeadSource     string   `json:"leadSource,omitempty"`
	Segments       []string `json:"segments,omitempty"`
	Pains          string   `json:"pains,omitempty"`
}

// ChatFlow describes the conversational strategy for a campaign
type ChatFlow struct {
	Objective  string   `json:"objective,omitempty"`
	Opening    string   `json:"opening,omitempty"`
	Probing    string   `json:"probing,omitempty"`
	Objections string   `json:"objections,omitempty"`
	CTA        string   `json:"cta,omitempty"`
	Steps      []string `json:"steps,omitempty"`
}

// OutreachMessage holds campaign outreach templates
type OutreachMessage struct {
	InitialMessage  string `json:"initialMessage,omitempty"`
	FollowUpMessage string `json:"followUpMessage,omitempty"`
}

// Brief is the free-text core of a campaign
type Brief struct {
	Description string   `json:"description"`
	Channels    []string `json:"channels,omitempty"`
}

// Campaign is a durable, owner-scoped record describing a product or offer,
// its specs, price, persona and conversational strategy.
type Campaign struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	OwnerUserID string          `json:"ownerUserId,omitempty"`
	Brief       Brief           `json:"brief"`
	Specs       []string        `json:"specs,omitempty"`
	Price       string          `json:"price,omitempty"`
	Persona     Persona         `json:"persona,omitempty"`
	Target      Target          `json:"target,omitempty"`
	ChatFlow    ChatFlow        `json:"chatFlow,omitempty"`
	Outreach    string          `json:"outreach,omitempty"`
	Message     OutreachMessage `json:"message,omitempty"`
	Active      bool            `json:"active"`
	Status      string          `json:"status,omitempty"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	StoppedAt   *time.Time      `json:"stoppedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Description returns the campaign brief description
func (c *Campaign) Description() string {
	return c.Brief.Description
}

// Message is a single chat message. Immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"isRead"`
}

// Pending holds auto-start settings for a conversation
type Pending struct {
	AutoStartIfFirstMessage bool   `json:"autoStartIfFirstMessage"`
	InitialMessage          string `json:"initialMessage,omitempty"`
	ProfileID               string `json:"profileId,omitempty"`
}

// Conversation is one thread per counterparty identifier (PSID, phone number).
// Messages is append-only; LastMessage/Timestamp mirror the final element.
type Conversation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username,omitempty"`
	ProfilePic  string    `json:"profilePic,omitempty"`
	OwnerUserID string    `json:"ownerUserId,omitempty"`
	AIMode      bool      `json:"aiMode"`
	LastMessage string    `json:"lastMessage"`
	Timestamp   time.Time `json:"timestamp"`
	Pending     Pending   `json:"pending"`
	Messages    []Message `json:"messages"`
}

// Memory is an append-only per-user log entry
type Memory struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// User is a demo-grade account. Password is stored plaintext on purpose:
// this mirrors the persisted users.json contract and is not production-safe.
type User struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Password            string     `json:"password"`
	Role                string     `json:"role"`
	Name                string     `json:"name,omitempty"`
	IsActive            bool       `json:"isActive"`
	CreatedAt           time.Time  `json:"createdAt"`
	LastLogin           *time.Time `json:"lastLogin,omitempty"`
	OnboardingCompleted bool       `json:"onboardingCompleted"`
}

// Onboarding is the business questionnaire captured per user
type Onboarding struct {
	BusinessName  string   `json:"businessName,omitempty"`
	BusinessAbout string   `json:"businessAbout,omitempty"`
	Tone          string   `json:"tone,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	Goals         []string `json:"goals,omitempty"`
	Challenges    []string `json:"challenges,omitempty"`
}

// BusinessProfile is the shared business identity fed to the AI
type BusinessProfile struct {
	Name  string `json:"name,omitempty"`
	About string `json:"about,omitempty"`
	Tone  string `json:"tone,omitempty"`
}

// DefaultTone is used when no business tone has been configured
const DefaultTone = "Friendly, helpful, concise"

// Counter tracks sent/received totals for one channel
type Counter struct {
	Sent     int `json:"sent"`
	Received int `json:"received"`
}

// Analytics holds simple message counters per channel
type Analytics struct {
	Counters map[string]*Counter `json:"counters"`
}

// NewAnalytics returns zeroed counters for all known channels
func NewAnalytics() *Analytics {
	return &Analytics{
		Counters: map[string]*Counter{
			string(ChannelMessenger): {},
			string(ChannelWhatsApp):  {},
			string(ChannelInstagram): {},
			"total":                  {},
		},
	}
}

// MotherAIElement links a campaign into a Mother AI config
type MotherAIElement struct {
	CampaignID string   `json:"campaignId"`
	Label      string   `json:"label,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// MotherAI is a flow-builder config that augments campaign keywords
type MotherAI struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Elements []MotherAIElement `json:"elements,omitempty"`
}

// KnowledgeItem is a denormalized, score-searchable view of a campaign or
// onboarding record. It is rebuilt on demand and never persisted; mutating one
// has no effect except through the owning campaign.
type KnowledgeItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Specs       []string        `json:"specs,omitempty"`
	Price       string          `json:"price,omitempty"`
	OwnerUserID string          `json:"ownerUserId,omitempty"`
	Keywords    []string        `json:"keywords,omitempty"`
	Persona     Persona         `json:"persona,omitempty"`
	Target      Target          `json:"target,omitempty"`
	ChatFlow    ChatFlow        `json:"chatFlow,omitempty"`
	Outreach    string          `json:"outreach,omitempty"`
	Message     OutreachMessage `json:"message,omitempty"`
	Channels    []string        `json:"channels,omitempty"`
	Sources     []string        `json:"sources,omitempty"`
}
