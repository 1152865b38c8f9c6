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
)

// WhatsApp sends text messages through the WhatsApp Cloud API
type WhatsApp struct {
	token         string
	phoneNumberID string
	mode          string
	httpClient    *http.Client
}

// NewWhatsApp creates a WhatsApp sender for one credential set
func NewWhatsApp(token, phoneNumberID, mode string) *WhatsApp {
	return &WhatsApp{
		token:         token,
		phoneNumberID: phoneNumberID,
		mode:          mode,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured reports whether both token and phone number ID are set
func (w *WhatsApp) IsConfigured() bool {
	return w != nil && w.token != "" && w.phoneNumberID != ""
}

// Mode returns the credential mode ("test" or "production")
func (w *WhatsApp) Mode() string { return w.mode }

type waSendRequest struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             waText `json:"text"`
}

type waText struct {
	Body string `json:"body"`
}

// SendError carries the platform error detail for a failed send
type SendError struct {
	Status  int
	Message string
	Code    int
	Subcode int
}

func (e *SendError) Error() string {
	return fmt.Sprintf("whatsapp send: status %d code %d: %s", e.Status, e.Code, e.Message)
}

// Send delivers text to a phone number, truncated to 900 characters
func (w *WhatsApp) Send(ctx context.Context, phoneNumber, text string) error {
	if !w.IsConfigured() {
		return core.ErrNotConfigured
	}
	payload := waSendRequest{
		MessagingProduct: "whatsapp",
		To:               phoneNumber,
		Type:             "text",
		Text:             waText{Body: TruncateOutbound(text)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v23.0/%s/messages", graphBase, url.PathEscape(w.phoneNumberID))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("X-WA-Mode", w.mode)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(resp.Body)
	var envelope fbErrorEnvelope
	_ = json.Unmarshal(data, &envelope)
	return &SendError{
		Status:  resp.StatusCode,
		Message: envelope.Error.Message,
		Code:    envelope.Error.Code,
		Subcode: envelope.Error.ErrorSubcode,
	}
}
