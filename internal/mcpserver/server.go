// Package mcpserver exposes copy generation and persona lookup as Model
// Context Protocol tools.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/xeitosa/socialai/internal/app"
)

const shutdownTimeout = 10 * time.Second

// Server is the MCP server for copy generation.
type Server struct {
	mcp      *server.MCPServer
	handlers *Handlers
	log      *slog.Logger
}

// New creates the MCP server and registers its tools.
func New(a *app.App, version string) *Server {
	handlers := NewHandlers(a)

	mcpServer := server.NewMCPServer(
		"socialai",
		version,
		server.WithToolCapabilities(true),
	)

	tools := ToolDefs()
	mcpServer.AddTool(tools[0], handlers.HandleGenerateCopy)
	mcpServer.AddTool(tools[1], handlers.HandleListArtists)
	mcpServer.AddTool(tools[2], handlers.HandleGetArtist)
	mcpServer.AddTool(tools[3], handlers.HandleAnalyzeStyle)

	return &Server{
		mcp:      mcpServer,
		handlers: handlers,
		log:      a.Log,
	}
}

// Start serves streamable HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp,
		server.WithStateLess(true),
	)

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting MCP server", "addr", addr)
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("Shutdown complete")
	return nil
}

// ServeStdio serves the tools over stdin/stdout for local MCP clients.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
