package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starford/topicscout/internal/apperr"
	"github.com/starford/topicscout/internal/cluster"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1500
	DefaultTimeout   = 60 * time.Second

	anthropicVersion = "2023-06-01"
)

// ClaudeConfig holds Anthropic Messages API settings.
type ClaudeConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Claude summarizes clusters with the Anthropic Messages API.
type Claude struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClaude returns apperr.ErrNotConfigured when no API key is set.
func NewClaude(cfg ClaudeConfig) (*Claude, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("report: claude api key: %w", apperr.ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Claude{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Summarize asks the model which clusters are ready to publish. An empty
// cluster list short-circuits to NoClustersMessage.
func (c *Claude) Summarize(ctx context.Context, clusters []cluster.TopicCluster) (string, error) {
	if len(clusters) == 0 {
		return NoClustersMessage, nil
	}

	payload, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: BuildPrompt(clusters)}},
	})
	if err != nil {
		return "", fmt.Errorf("report: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("report: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("report: claude request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("report: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
			return "", fmt.Errorf("report: claude api error (%d): %s", resp.StatusCode, e.Error.Message)
		}
		return "", fmt.Errorf("report: claude api error (%d): %s", resp.StatusCode, string(body))
	}

	var out messagesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("report: decode response: %w", err)
	}
	for _, block := range out.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("report: empty response from claude")
}
