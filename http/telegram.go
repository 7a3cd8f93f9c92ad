package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/pricewatch"
)

// DefaultTelegramBaseURL is the Telegram Bot API endpoint.
const DefaultTelegramBaseURL = "https://api.telegram.org"

// Ensure TelegramNotifier implements pricewatch.Notifier at compile time.
var _ pricewatch.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier sends reports to a Telegram chat through the Bot API.
type TelegramNotifier struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
// If client is nil, a client with a 10s timeout is used.
func NewTelegramNotifier(client *http.Client, token, chatID string) *TelegramNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TelegramNotifier{
		client:  client,
		baseURL: DefaultTelegramBaseURL,
		token:   token,
		chatID:  chatID,
	}
}

// SetBaseURL points the notifier at a different Bot API host.
func (n *TelegramNotifier) SetBaseURL(u string) {
	n.baseURL = u
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Notify posts text to the chat using Markdown formatting.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal message: %w", err)
	}

	u := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return pricewatch.Errorf(pricewatch.EUPSTREAM, "telegram: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return pricewatch.Errorf(pricewatch.EUPSTREAM, "telegram: HTTP %d", resp.StatusCode)
	}
	return nil
}
