package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/topicscout/internal"
	pkgconfig "github.com/starford/topicscout/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	loaded, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func analyze(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("vault") {
		cfg.Vault.Path = cmd.String("vault")
	}
	if cmd.IsSet("folders") {
		cfg.Vault.Folders = cmd.StringSlice("folders")
	}
	req := internal.AnalyzeOptions{
		DryRun:       cmd.Bool("dry-run"),
		Notify:       cmd.Bool("notify"),
		GitHubOutput: cmd.String("github-output"),
	}
	if cmd.IsSet("min-notes") {
		v := int(cmd.Int("min-notes"))
		req.MinNotes = &v
	}
	if cmd.IsSet("min-words") {
		v := int(cmd.Int("min-words"))
		req.MinWords = &v
	}
	return internal.RunAnalyze(ctx, req, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:    "topicscout",
		Usage:   "Find blog-ready topic clusters in a Markdown vault",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Cluster the vault once and report blog-ready topics",
				Action: analyze,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "vault",
						Usage:   "Path to the vault (overrides vault.path)",
						Sources: cli.EnvVars("VAULT_PATH"),
					},
					&cli.StringSliceFlag{
						Name:  "folders",
						Usage: "Vault folders to analyze, e.g. --folders thoughts,ideas",
					},
					&cli.IntFlag{
						Name:  "min-notes",
						Usage: "Minimum notes for a cluster (overrides analysis.min_notes)",
					},
					&cli.IntFlag{
						Name:  "min-words",
						Usage: "Minimum words for a cluster (overrides analysis.min_words)",
					},
					&cli.BoolFlag{
						Name:  "notify",
						Usage: "Send the report to configured Telegram/Discord sinks",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "List clusters without calling the model",
					},
					&cli.StringFlag{
						Name:    "github-output",
						Usage:   "Append the report to this GitHub Actions output file",
						Sources: cli.EnvVars("GITHUB_OUTPUT"),
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API over a live index of the vault",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
