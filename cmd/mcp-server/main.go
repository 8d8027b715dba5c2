package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xeitosa/socialai/internal/app"
	"github.com/xeitosa/socialai/internal/config"
	"github.com/xeitosa/socialai/internal/mcpserver"
	"github.com/xeitosa/socialai/internal/observability"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "YAML config file")
	stdio := flag.Bool("stdio", false, "Serve over stdin/stdout instead of HTTP")
	port := flag.Int("port", 8000, "HTTP port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel)
	logger.Info("Social AI MCP Server starting...")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := observability.InitTracer(ctx, "socialai-mcp", version)
	if err != nil {
		logger.Warn("Failed to init tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("Tracer shutdown error", "error", err)
			}
		}()
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}
	defer a.Close()
	if a.ProviderErr != nil {
		logger.Warn("generate_copy and analyze_style are disabled", "error", a.ProviderErr)
	}

	srv := mcpserver.New(a, version)
	if *stdio {
		err = srv.ServeStdio()
	} else {
		err = srv.Start(ctx, fmt.Sprintf(":%d", *port))
	}
	if err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
