// Package config handles Work-Flow-zen configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir"`

	// Server
	Server ServerConfig `json:"server"`

	// Channels
	Facebook  FacebookConfig  `json:"facebook"`
	WhatsApp  WhatsAppConfig  `json:"whatsapp"`
	Instagram InstagramConfig `json:"instagram"`
	Webhook   WebhookConfig   `json:"webhook"`

	// AI
	AI AIConfig `json:"ai"`
}

// ServerConfig for the HTTP server
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// FacebookConfig for Messenger page integration
type FacebookConfig struct {
	AppID       string `json:"app_id"`
	AppSecret   string `json:"-"`
	CallbackURL string `json:"callback_url"`
	PageID      string `json:"page_id"`
	PageToken   string `json:"-"`
	Provider    string `json:"provider"`    // "local" | "facebook"
	MessageTag  string `json:"message_tag"` // e.g. HUMAN_AGENT, used after the 24h window
}

// WhatsAppConfig for the WhatsApp Cloud API
type WhatsAppConfig struct {
	PhoneNumberID     string `json:"phone_number_id"`
	TestPhoneNumberID string `json:"test_phone_number_id"`
	VerifyToken       string `json:"verify_token"`
	Token             string `json:"-"`
	TestToken         string `json:"-"`
	Mode              string `json:"mode"` // "test" | "production"
}

// InstagramConfig for Instagram business OAuth
type InstagramConfig struct {
	AppID               string `json:"app_id"`
	AppSecret           string `json:"-"`
	RedirectURI         string `json:"redirect_uri"`
	BusinessRedirectURI string `json:"business_redirect_uri"`
}

// WebhookConfig for platform webhook verification
type WebhookConfig struct {
	VerifyToken string `json:"verify_token"`
}

// AIConfig for the Groq-backed responder
type AIConfig struct {
	GroqAPIKey       string `json:"-"`
	GroqModel        string `json:"groq_model"`
	AutoReplyWebhook bool   `json:"auto_reply_webhook"`
	GlobalAIEnabled  bool   `json:"global_ai_enabled"`
	GlobalAIMode     string `json:"global_ai_mode"` // "replace" | "hybrid"
	MemoryEnabled    bool   `json:"memory_enabled"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(home, ".workflow"),
		Server: ServerConfig{
			Port: 10000,
			Host: "localhost",
		},
		Facebook: FacebookConfig{
			CallbackURL: "http://localhost:10000/auth/facebook/callback",
			Provider:    "local",
		},
		WhatsApp: WhatsAppConfig{
			VerifyToken: "verify-me",
			Mode:        "production",
		},
		Instagram: InstagramConfig{
			RedirectURI: "http://localhost:10000/auth/instagram/callback",
		},
		Webhook: WebhookConfig{
			VerifyToken: "WORKFLOW_VERIFY_TOKEN",
		},
		AI: AIConfig{
			GroqModel:       "compound",
			GlobalAIMode:    "replace",
			MemoryEnabled:   true,
			GlobalAIEnabled: envBool("GLOBAL_AI_ENABLED"),
		},
	}
}

// Load loads config from file, falling back to defaults, with env overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the config. Secrets only ever
// come from the environment or from the integrations store, never config.json.
func (c *Config) applyEnv() {
	setenv(&c.Facebook.AppID, "FACEBOOK_APP_ID")
	setenv(&c.Facebook.AppSecret, "FACEBOOK_APP_SECRET")
	setenv(&c.Facebook.CallbackURL, "FACEBOOK_CALLBACK")
	setenv(&c.Facebook.PageID, "FB_PAGE_ID")
	setenv(&c.Facebook.PageToken, "FB_PAGE_TOKEN")
	setenv(&c.Facebook.Provider, "MESSENGER_PROVIDER")
	setenv(&c.Facebook.MessageTag, "FB_MESSAGE_TAG")

	setenv(&c.WhatsApp.PhoneNumberID, "WHATSAPP_PHONE_NUMBER_ID")
	setenv(&c.WhatsApp.TestPhoneNumberID, "WHATSAPP_TEST_PHONE_NUMBER_ID")
	setenv(&c.WhatsApp.VerifyToken, "WHATSAPP_VERIFY_TOKEN")
	setenv(&c.WhatsApp.Token, "WHATSAPP_TOKEN")
	setenv(&c.WhatsApp.TestToken, "WHATSAPP_TEST_TOKEN")
	if c.WhatsApp.Token == "" {
		c.WhatsApp.Token = os.Getenv("FB_PAGE_TOKEN")
	}
	if mode := strings.ToLower(os.Getenv("WHATSAPP_MODE")); mode == "test" {
		c.WhatsApp.Mode = "test"
	}

	setenv(&c.Instagram.AppID, "INSTAGRAM_APP_ID")
	setenv(&c.Instagram.AppSecret, "INSTAGRAM_APP_SECRET")
	setenv(&c.Instagram.RedirectURI, "INSTAGRAM_REDIRECT_URI")
	setenv(&c.Instagram.BusinessRedirectURI, "INSTAGRAM_BUSINESS_REDIRECT_URI")

	setenv(&c.Webhook.VerifyToken, "WEBHOOK_VERIFY_TOKEN")

	setenv(&c.AI.GroqAPIKey, "GROQ_API_KEY")
	setenv(&c.AI.GroqModel, "GROQ_MODEL")
	if envBool("AI_AUTO_REPLY_WEBHOOK") {
		c.AI.AutoReplyWebhook = true
	}
	if envBool("GLOBAL_AI_ENABLED") || envBool("AI_GLOBAL_AI_ENABLED") {
		c.AI.GlobalAIEnabled = true
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
}

// Save saves config to file. Secret fields carry `json:"-"` and are never written.
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// WhatsAppCreds resolves the token/phone-number pair for a send, honoring test mode
func (c *Config) WhatsAppCreds(preferredMode string) (mode, token, phoneNumberID string) {
	mode = c.WhatsApp.Mode
	if preferredMode == "test" || preferredMode == "production" {
		mode = preferredMode
	}
	if mode != "test" {
		mode = "production"
	}

	token = c.WhatsApp.Token
	phoneNumberID = c.WhatsApp.PhoneNumberID
	if mode == "test" {
		if c.WhatsApp.TestToken != "" {
			token = c.WhatsApp.TestToken
		}
		if c.WhatsApp.TestPhoneNumberID != "" {
			phoneNumberID = c.WhatsApp.TestPhoneNumberID
		}
	}
	return mode, token, phoneNumberID
}

func setenv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string) bool {
	return strings.ToLower(os.Getenv(key)) == "true"
}
