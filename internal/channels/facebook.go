// Package channels holds the outbound senders and sync helpers for the
// messaging platforms. Outbound failures are logged and never fail the
// inbound request that triggered them.
package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/surya9634/Work-Flow-zen/internal/core"
	"github.com/surya9634/Work-Flow-zen/internal/logging"
)

const (
	graphBase = "https://graph.facebook.com"

	// Outbound text is capped before hitting the platform APIs
	maxOutboundChars = 900

	// Graph error identifying a send outside the 24h messaging window
	fbWindowErrorCode    = 10
	fbWindowErrorSubcode = 2018278
)

// Messenger sends messages and syncs conversations through the Facebook
// Graph API on behalf of one page.
type Messenger struct {
	pageToken  string
	pageID     string
	messageTag string
	httpClient *http.Client
}

// NewMessenger creates a Messenger sender. messageTag, when set, enables a
// one-shot tag retry after a 24h-window rejection.
func NewMessenger(pageToken, pageID, messageTag string) *Messenger {
	return &Messenger{
		pageToken:  pageToken,
		pageID:     pageID,
		messageTag: messageTag,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured reports whether a page token is available
func (m *Messenger) IsConfigured() bool {
	return m != nil && m.pageToken != ""
}

type fbSendRequest struct {
	Recipient     fbRecipient `json:"recipient"`
	MessagingType string      `json:"messaging_type"`
	Tag           string      `json:"tag,omitempty"`
	Message       fbText      `json:"message"`
}

type fbRecipient struct {
	ID string `json:"id"`
}

type fbText struct {
	Text string `json:"text"`
}

type fbErrorEnvelope struct {
	Error struct {
		Message      string `json:"message"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
	} `json:"error"`
}

// Send delivers text to a PSID, truncated to 900 characters. On a 24h-window
// rejection with a configured message tag it retries once with the tag.
func (m *Messenger) Send(ctx context.Context, psid, text string) error {
	if !m.IsConfigured() {
		return core.ErrNotConfigured
	}
	text = TruncateOutbound(text)

	err := m.post(ctx, fbSendRequest{
		Recipient:     fbRecipient{ID: psid},
		MessagingType: "RESPONSE",
		Message:       fbText{Text: text},
	})
	if err == nil {
		return nil
	}
	if core.IsMessageWindowExpired(err) && m.messageTag != "" {
		return m.post(ctx, fbSendRequest{
			Recipient:     fbRecipient{ID: psid},
			MessagingType: "MESSAGE_TAG",
			Tag:           m.messageTag,
			Message:       fbText{Text: text},
		})
	}
	return err
}

func (m *Messenger) post(ctx context.Context, payload fbSendRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v17.0/me/messages?access_token=%s", graphBase, url.QueryEscape(m.pageToken))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(resp.Body)
	var envelope fbErrorEnvelope
	_ = json.Unmarshal(data, &envelope)
	if envelope.Error.Code == fbWindowErrorCode && envelope.Error.ErrorSubcode == fbWindowErrorSubcode {
		return fmt.Errorf("messenger send: %s: %w", envelope.Error.Message, core.ErrMessageWindowExpired)
	}
	return fmt.Errorf("messenger send: status %d: %s", resp.StatusCode, envelope.Error.Message)
}

// ProfilePic fetches the large profile picture URL for a PSID, or ""
func (m *Messenger) ProfilePic(ctx context.Context, psid string) string {
	if !m.IsConfigured() {
		return ""
	}
	endpoint := fmt.Sprintf("%s/v18.0/%s/picture?redirect=false&type=large&access_token=%s",
		graphBase, url.PathEscape(psid), url.QueryEscape(m.pageToken))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return ""
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	var parsed struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ""
	}
	return parsed.Data.URL
}

type fbConversationsResponse struct {
	Data []struct {
		ID           string `json:"id"`
		Participants struct {
			Data []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"data"`
		} `json:"participants"`
		Messages struct {
			Data []struct {
				ID          string `json:"id"`
				Message     string `json:"message"`
				CreatedTime string `json:"created_time"`
				From        struct {
					ID string `json:"id"`
				} `json:"from"`
			} `json:"data"`
		} `json:"messages"`
	} `json:"data"`
}

// SyncConversations pulls the page's recent conversations from the Graph API
// and normalizes them to local threads. The customer PSID becomes the
// canonical conversation ID so webhook sender IDs and outbound sends line up.
func (m *Messenger) SyncConversations(ctx context.Context) ([]*core.Conversation, error) {
	if !m.IsConfigured() || m.pageID == "" {
		return nil, core.ErrNotConfigured
	}
	q := url.Values{}
	q.Set("access_token", m.pageToken)
	q.Set("fields", "id,participants,messages.limit(10){message,from,to,created_time,id}")
	q.Set("limit", "50")
	endpoint := fmt.Sprintf("%s/v18.0/%s/conversations?%s", graphBase, url.PathEscape(m.pageID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversation sync failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("conversation sync: status %d", resp.StatusCode)
	}
	var parsed fbConversationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse conversations: %w", err)
	}

	var out []*core.Conversation
	for _, conv := range parsed.Data {
		var customerID, customerName string
		for _, p := range conv.Participants.Data {
			if p.ID != m.pageID {
				customerID = p.ID
				customerName = p.Name
				break
			}
		}
		if customerID == "" {
			continue
		}
		if customerName == "" {
			customerName = customerID
		}

		local := &core.Conversation{
			ID:         customerID,
			Name:       customerName,
			Username:   customerID,
			ProfilePic: m.ProfilePic(ctx, customerID),
			Pending:    core.Pending{ProfileID: "default"},
			Timestamp:  time.Now().UTC(),
		}
		// Graph returns newest first
		for i := len(conv.Messages.Data) - 1; i >= 0; i-- {
			raw := conv.Messages.Data[i]
			sender := core.SenderCustomer
			if raw.From.ID == m.pageID {
				sender = core.SenderAgent
			}
			ts, err := time.Parse(time.RFC3339, raw.CreatedTime)
			if err != nil {
				ts = time.Now().UTC()
			}
			local.Messages = append(local.Messages, core.Message{
				ID:        raw.ID,
				Sender:    sender,
				Text:      raw.Message,
				Timestamp: ts,
				IsRead:    true,
			})
		}
		if n := len(local.Messages); n > 0 {
			local.LastMessage = local.Messages[n-1].Text
			local.Timestamp = local.Messages[n-1].Timestamp
		}
		out = append(out, local)
	}
	logging.Info("synced %d messenger conversations", len(out))
	return out, nil
}

// TruncateOutbound caps outbound text at the platform limit, never splitting
// a multi-byte character.
func TruncateOutbound(text string) string {
	return core.TruncateBytes(text, maxOutboundChars)
}
