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
	discordLimit  = 2000
	discordHeader = "📝 **Blog Topic Analysis**\n\n"
)

// Discord posts to a channel webhook.
type Discord struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscord returns nil when the webhook URL is empty.
func NewDiscord(webhookURL string) *Discord {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return nil
	}
	return &Discord{webhookURL: webhookURL, httpClient: newHTTPClient()}
}

func (d *Discord) Name() string { return "discord" }

// Send prefixes the report header and cuts the text to Discord's limit.
func (d *Discord) Send(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{
		"content": truncate(discordHeader+message, discordLimit),
	})
	if err != nil {
		return fmt.Errorf("notify: discord marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: discord send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Webhooks answer 204 unless ?wait=true is set.
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: discord %d", errStatus, resp.StatusCode)
	}
	return nil
}
