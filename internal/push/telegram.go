// Package push bridges stored notifications to the external Telegram
// channel. Delivery is fail-soft: the portal's system of record is the
// notifications table, and nothing here may surface an error into the
// workflow that triggered the message.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TelegramClient sends messages through the Telegram bot API.
type TelegramClient struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewTelegramClient creates a TelegramClient. timeout bounds each send
// so an unreachable API can never hang a caller.
func NewTelegramClient(token string, timeout time.Duration) *TelegramClient {
	return &TelegramClient{
		token:   token,
		baseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send delivers one text message to the given chat.
func (c *TelegramClient) Send(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}
