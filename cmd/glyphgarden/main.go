// Command glyphgarden grows a garden of glyphs from a text.
//
// Headless (default): grow for -ticks generations and print the JSON system
// report. With -serve the garden grows in the background and is exposed over
// HTTP. With -mcp it is exposed as MCP tools over stdio.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/glyphgarden/internal/config"
	gmcp "github.com/sanonone/glyphgarden/internal/mcp"
	"github.com/sanonone/glyphgarden/internal/server"
	"github.com/sanonone/glyphgarden/internal/source"
	"github.com/sanonone/glyphgarden/pkg/growth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "glyphgarden:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("glyphgarden", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	sourcePath := fs.String("source", "", "Text to grow from (.txt, .md or .pdf); overrides source.path")
	ticks := fs.Int("ticks", -1, "Generations to grow in headless mode; overrides run.ticks")
	httpAddr := fs.String("http-addr", "", "HTTP listen address; overrides http.addr")
	serve := fs.Bool("serve", false, "Serve the garden over HTTP with a background runner")
	useMCP := fs.Bool("mcp", false, "Serve the garden as MCP tools over stdio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *sourcePath != "" {
		cfg.Source.Path = *sourcePath
	}
	if *ticks >= 0 {
		cfg.Run.Ticks = *ticks
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}

	// stdout belongs to the report or the MCP stream.
	logger := cfg.Log.NewLogger(stderr)
	slog.SetDefault(logger)

	text, err := source.Load(cfg.Source.Path, logger)
	if err != nil {
		return err
	}
	logger.Info("source loaded", "path", cfg.Source.Path, "bytes", len(text))

	engine := growth.New(text, cfg.EngineOptions(logger))
	session := server.NewSession(engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *useMCP:
		logger.Info("serving MCP over stdio")
		return gmcp.NewMCPServer(session).Run(ctx, &mcp.StdioTransport{})
	case *serve:
		return serveHTTP(ctx, cfg, session, logger)
	default:
		return headless(cfg.Run.Ticks, session, stdout)
	}
}

func headless(ticks int, session *server.Session, stdout io.Writer) error {
	session.Start()
	for i := 0; i < ticks; i++ {
		session.Tick()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(session.Report()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func serveHTTP(ctx context.Context, cfg config.Config, session *server.Session, logger *slog.Logger) error {
	srv := server.NewServer(session, cfg.HTTP.Addr, logger)
	runner := server.NewRunner(session, cfg.Run.TickInterval, logger)

	session.Start()
	go runner.Run(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	srv.Shutdown()
	return nil
}
