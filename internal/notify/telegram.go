package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

const defaultBaseURL = "https://api.telegram.org"

// TelegramConfig holds Bot API client settings.
type TelegramConfig struct {
	Token string

	// BaseURL overrides the API host, used by tests.
	BaseURL string

	// Timeout bounds a single API call. Long polls extend it by the poll
	// duration. Zero means 10s.
	Timeout time.Duration
}

// TelegramClient talks to the Telegram Bot API over plain HTTPS.
// sendMessage and getUpdates are the only methods this system needs.
type TelegramClient struct {
	token   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewTelegramClient builds a Bot API client.
func NewTelegramClient(cfg TelegramConfig) *TelegramClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	// Deadlines are applied per call via context so long polls can extend
	// past the base timeout.
	return &TelegramClient{
		token:   cfg.Token,
		baseURL: base,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Update is a single incoming event from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// User is the sender of a message.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Send delivers a text message to one chat.
func (c *TelegramClient) Send(ctx context.Context, chat domain.ChatID, text string) error {
	payload := map[string]any{
		"chat_id": int64(chat),
		"text":    text,
	}
	_, err := c.call(ctx, "sendMessage", payload, 0)
	if err != nil {
		return fmt.Errorf("%w: chat %d: %v", ErrDelivery, chat, err)
	}
	return nil
}

// GetUpdates long-polls for incoming updates after the given offset.
func (c *TelegramClient) GetUpdates(ctx context.Context, offset int64, pollSeconds int) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": pollSeconds,
	}
	result, err := c.call(ctx, "getUpdates", payload, time.Duration(pollSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to decode updates: %w", err)
	}
	return updates, nil
}

func (c *TelegramClient) call(ctx context.Context, method string, payload any, extraTimeout time.Duration) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout+extraTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response (http %d): %w", method, resp.StatusCode, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("%s rejected (http %d): %s", method, resp.StatusCode, apiResp.Description)
	}
	return apiResp.Result, nil
}
