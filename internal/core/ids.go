package core

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewCampaignID returns a time-derived opaque campaign ID
func NewCampaignID() string { return "c_" + strings.ToLower(newULID()) }

// NewMessageID returns a time-derived opaque message ID
func NewMessageID() string { return "m_" + strings.ToLower(newULID()) }

// NewMemoryID returns a time-derived opaque memory ID
func NewMemoryID() string { return "mem_" + strings.ToLower(newULID()) }

// NewMotherAIID returns a time-derived opaque Mother AI config ID
func NewMotherAIID() string { return "mai_" + strings.ToLower(newULID()) }

// NewConversationID returns a time-derived opaque conversation ID
func NewConversationID() string { return "conv_" + strings.ToLower(newULID()) }
