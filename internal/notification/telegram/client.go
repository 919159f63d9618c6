// Package telegram is a minimal Bot API client used for alert delivery.
// Send failures are logged and swallowed; notification delivery never
// fails a domain operation.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
)

const defaultBaseURL = "https://api.telegram.org"

// Client talks to the Telegram Bot API
type Client struct {
	// BaseURL is overridable for tests
	BaseURL string

	token         string
	channelChatID string
	httpClient    *http.Client
}

// NewClient creates a telegram client. Empty token means unconfigured;
// every send becomes a no-op.
func NewClient(token, channelChatID string) *Client {
	return &Client{
		BaseURL:       defaultBaseURL,
		token:         token,
		channelChatID: channelChatID,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether the client has a bot token
func (c *Client) Configured() bool {
	return c.token != ""
}

// ChannelChatID returns the shared pharmacy channel chat id
func (c *Client) ChannelChatID() string {
	return c.channelChatID
}

// SendMessage sends an HTML-formatted message to the given chat
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if !c.Configured() {
		return nil
	}
	if chatID == "" {
		return fmt.Errorf("telegram: empty chat id")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("telegram: sendMessage returned %d: %s", resp.StatusCode, apiErr.Description)
	}
	return nil
}

// SendAlert formats and sends one alert to the given chat
func (c *Client) SendAlert(ctx context.Context, chatID string, alert *alertdomain.AlertLog) error {
	return c.SendMessage(ctx, chatID, FormatAlert(alert))
}

// SeverityEmoji maps a severity to its message prefix
func SeverityEmoji(severity string) string {
	switch severity {
	case alertdomain.SeverityCritical:
		return "🚨"
	case alertdomain.SeverityHigh:
		return "⚠️"
	case alertdomain.SeverityMedium:
		return "🔔"
	default:
		return "ℹ️"
	}
}

// FormatAlert renders one alert as a Telegram HTML message
func FormatAlert(alert *alertdomain.AlertLog) string {
	return fmt.Sprintf("%s <b>%s</b>\n\n%s\n\n<i>Severity: %s | Type: %s</i>",
		SeverityEmoji(alert.Severity), alert.Title, alert.Message, alert.Severity, alert.AlertType)
}
