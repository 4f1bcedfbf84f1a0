package internal

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/topicscout/internal/report"
	"github.com/starford/topicscout/internal/topics"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Vault      VaultConfig       `yaml:"vault"`
	Analysis   AnalysisConfig    `yaml:"analysis"`
	SQLite     SQLiteConfig      `yaml:"sqlite"`
	Auth       AuthConfig        `yaml:"auth"`
	Summarizer SummarizerConfig  `yaml:"summarizer"`
	Notify     NotifyConfig      `yaml:"notify"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Vault, &c.Analysis, &c.SQLite, &c.Auth, &c.Summarizer,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig points at the Markdown vault. Folders limits analysis to
// those vault-relative directories; empty means the whole vault.
type VaultConfig struct {
	Path    string   `yaml:"path"`
	Folders []string `yaml:"folders"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AnalysisConfig holds cluster filter thresholds.
type AnalysisConfig struct {
	MinNotes   int `yaml:"min_notes"`
	MinWords   int `yaml:"min_words"`
	RecentDays int `yaml:"recent_days"`
}

// Validate validates the analysis configuration.
func (c *AnalysisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MinNotes, validation.Required, validation.Min(1)),
		validation.Field(&c.MinWords, validation.Min(0)),
		validation.Field(&c.RecentDays, validation.Required, validation.Min(1)),
	)
}

// RecentWindow converts RecentDays to a duration.
func (c *AnalysisConfig) RecentWindow() time.Duration {
	return time.Duration(c.RecentDays) * 24 * time.Hour
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// SummarizerConfig holds Anthropic API settings. An empty APIKey leaves
// only dry runs available.
type SummarizerConfig struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Validate validates the summarizer configuration.
func (c *SummarizerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxTokens, validation.Min(1)),
		validation.Field(&c.Timeout, validation.Min(time.Second)),
	)
}

// Claude converts the section into client settings.
func (c *SummarizerConfig) Claude() report.ClaudeConfig {
	return report.ClaudeConfig{
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Timeout:   c.Timeout,
	}
}

// NotifyConfig holds chat sink settings. A sink with missing fields is off.
type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Discord  DiscordConfig  `yaml:"discord"`
}

// TelegramConfig holds Telegram Bot API settings.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// DiscordConfig holds the Discord webhook.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// NewDefaultConfig returns a new Config with sensible default values.
// Secrets default to their conventional environment variables so the
// one-shot CLI works without a config file.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		Analysis: AnalysisConfig{
			MinNotes:   topics.DefaultMinNotes,
			MinWords:   topics.DefaultMinWords,
			RecentDays: 30,
		},
		SQLite: SQLiteConfig{
			Path: "./topicscout.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Summarizer: SummarizerConfig{
			APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL:   report.DefaultBaseURL,
			Model:     report.DefaultModel,
			MaxTokens: report.DefaultMaxTokens,
			Timeout:   report.DefaultTimeout,
		},
		Notify: NotifyConfig{
			Telegram: TelegramConfig{
				BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
				ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
			},
			Discord: DiscordConfig{
				WebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
			},
		},
	}
}
