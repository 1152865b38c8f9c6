// Package core defines the fundamental types and errors for Work-Flow-zen.
package core

import "errors"

// Core errors that can occur across the system
var (
	// Auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")

	// Store errors
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMotherAINotFound     = errors.New("mother ai config not found")

	// Channel errors
	ErrNotConfigured        = errors.New("channel not configured")
	ErrMessageWindowExpired = errors.New("message window expired")

	// AI errors
	ErrLLMNotConfigured = errors.New("llm not configured")

	// Validation errors
	ErrMissingRequired = errors.New("missing required field")
)

// IsMessageWindowExpired reports whether err wraps ErrMessageWindowExpired
func IsMessageWindowExpired(err error) bool {
	return errors.Is(err, ErrMessageWindowExpired)
}
