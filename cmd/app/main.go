package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/postview/internal"
	"github.com/starford/postview/internal/feed"
	"github.com/starford/postview/internal/mcpserver"
	"github.com/starford/postview/internal/render"
	"github.com/starford/postview/internal/session"
	pkgconfig "github.com/starford/postview/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.App.LogLevel)

	backend, err := internal.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	srv := mcpserver.New(backend.Service, mcpserver.WithSite(cfg.Site.Title, cfg.Site.Labels()))
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

func renderFile(_ context.Context, cmd *cli.Command) error {
	data, err := os.ReadFile(cmd.String("input"))
	if err != nil {
		return err
	}
	payload, err := feed.Decode(data, cmd.String("format"))
	if err != nil {
		return err
	}

	labels := render.DefaultLabels()
	if msg := cmd.String("empty-message"); msg != "" {
		labels.Empty = msg
	}
	v, err := session.NewManager(session.WithLabels(labels)).Render(cmd.String("url"), payload)
	if err != nil {
		return err
	}
	out, err := render.RenderPage(session.Document(v, cmd.String("title"), ""))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "postview",
		Usage:  "Blog viewer with feed ingest, preview cards and a URL-synced reader",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve postview tools over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:   "render",
				Usage:  "Render a feed file to HTML on stdout",
				Action: renderFile,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Feed file (JSON, JSONP or RSS)", Required: true},
					&cli.StringFlag{Name: "format", Usage: "auto, json, jsonp or rss", Value: feed.FormatAuto},
					&cli.StringFlag{Name: "url", Usage: "Page URL, e.g. /#post/<slug>", Value: "/"},
					&cli.StringFlag{Name: "title", Usage: "Site title", Value: "postview"},
					&cli.StringFlag{Name: "empty-message", Usage: "Message shown when the feed has no posts"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
