package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	telegramLimit  = 4000
	telegramHeader = "📝 *Blog Topic Analysis*\n\n"
)

var telegramAPIBaseURL = "https://api.telegram.org"

// Telegram posts to a chat through the Bot API.
type Telegram struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewTelegram returns nil unless both token and chat ID are set.
func NewTelegram(botToken, chatID string) *Telegram {
	botToken, chatID = strings.TrimSpace(botToken), strings.TrimSpace(chatID)
	if botToken == "" || chatID == "" {
		return nil
	}
	return &Telegram{
		baseURL:    strings.TrimRight(telegramAPIBaseURL, "/"),
		botToken:   botToken,
		chatID:     chatID,
		httpClient: newHTTPClient(),
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Send prefixes the report header and cuts the text to Telegram's limit.
func (t *Telegram) Send(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       truncate(telegramHeader+message, telegramLimit),
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("notify: telegram marshal: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: telegram send: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &out) == nil && out.Description != "" {
			return fmt.Errorf("%w: telegram %d: %s", errStatus, resp.StatusCode, out.Description)
		}
		return fmt.Errorf("%w: telegram %d", errStatus, resp.StatusCode)
	}
	return nil
}
