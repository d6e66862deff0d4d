package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/docxreader/internal"
	"github.com/starford/docxreader/internal/document"
	pkgconfig "github.com/starford/docxreader/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func inspect(_ context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return errors.New("inspect: a .docx file is required")
	}
	doc, err := document.Load(file)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, doc, cmd.Bool("paragraphs"))
	return nil
}

func printSummary(w io.Writer, doc *document.Document, paragraphs bool) {
	fmt.Fprintf(w, "title:      %s\n", doc.Title())
	fmt.Fprintf(w, "checksum:   %s\n", doc.Checksum)
	fmt.Fprintf(w, "styles:     %d\n", doc.Styles.Len())
	fmt.Fprintf(w, "paragraphs: %d\n", len(doc.Paragraphs))
	fmt.Fprintf(w, "outline:    %d\n", len(doc.Outline))
	for _, e := range doc.Outline {
		fmt.Fprintf(w, "%s%s [%d]\n", strings.Repeat("  ", int(e.Level)), e.Text(), e.Link)
	}
	if !paragraphs {
		return
	}
	fmt.Fprintln(w)
	for _, p := range doc.Paragraphs {
		fmt.Fprintf(w, "%5d  %s\n", p.Index, p.Text())
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "docxreader",
		Usage:  "Read, outline and search .docx documents over HTTP and MCP",
		Action: serve,
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
				Name:   "serve",
				Usage:  "Start the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:      "inspect",
				Usage:     "Print the outline and counts of a .docx file",
				ArgsUsage: "FILE",
				Action:    inspect,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "paragraphs",
						Usage: "Also print every paragraph",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
