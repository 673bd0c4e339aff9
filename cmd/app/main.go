package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/abdulrhmanalqassas/guidekit/internal"
	"github.com/abdulrhmanalqassas/guidekit/internal/guideservice"
	"github.com/abdulrhmanalqassas/guidekit/internal/index"
	"github.com/abdulrhmanalqassas/guidekit/internal/mcpserver"
	"github.com/abdulrhmanalqassas/guidekit/internal/storage"
	pkgconfig "github.com/abdulrhmanalqassas/guidekit/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return cfg, nil
}

// newService builds the storage, index, and service stack for one-shot
// commands. The returned func closes the index.
func newService(cmd *cli.Command) (*guideservice.Service, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewFS(cfg.Library.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	return guideservice.NewService(store, db), func() { db.Close() }, nil
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

// check re-indexes the library and prints every finding. Exits non-zero
// when any guide has findings, so it can gate CI.
func check(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(cfg.Library.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if err := index.Sync(db, store, logger); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	findings, err := db.AllFindings()
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		fmt.Fprintln(os.Stdout, "no findings")
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	for _, f := range findings {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return cli.Exit(fmt.Sprintf("%d finding(s)", len(findings)), 1)
}

func render(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("usage: render <path>", 2)
	}
	svc, closeFn, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := svc.RenderGuide(ctx, path, cmd.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(os.Stdout, out)
	return nil
}

func format(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("usage: fmt <path> [path...]", 2)
	}
	svc, closeFn, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	for _, p := range paths {
		if err := svc.FormatGuide(ctx, p); err != nil {
			return cli.Exit(fmt.Sprintf("%s: %v", p, err), 1)
		}
		fmt.Fprintf(os.Stdout, "formatted: %s\n", p)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	svc, closeFn, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	return mcpserver.New(svc).ServeStdio()
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
		Name:   "guidekit",
		Usage:  "Style guide library with validation, canonical formatting, full-text search, and a REST API",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server and library watcher",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "check",
				Usage:  "Validate every guide in the library; non-zero exit on findings",
				Action: check,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "render",
				Usage:     "Render a guide to stdout",
				ArgsUsage: "<path>",
				Action:    render,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: markdown or html",
						Value: guideservice.FormatMarkdown,
					},
				},
			},
			{
				Name:      "fmt",
				Usage:     "Rewrite guides in canonical form in place",
				ArgsUsage: "<path> [path...]",
				Action:    format,
				Flags:     []cli.Flag{configFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Serve guidekit tools over the Model Context Protocol on stdio",
				Action: mcp,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
