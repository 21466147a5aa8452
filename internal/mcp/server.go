// Package mcp exposes brief extraction and the documentation tree as Model
// Context Protocol tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/doctree/internal/doctree"
)

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Name    string
	Version string
	Logger  *slog.Logger
}

// DefaultServerConfig returns the default server identity.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Name:    "doctree-mcp",
		Version: "1.0.0",
	}
}

// Server manages the MCP server lifecycle.
type Server struct {
	config *ServerConfig
	logger *slog.Logger
	mcp    *server.MCPServer
}

// NewServer creates an MCP server serving the tree built by builder and
// single-file briefs from source.
func NewServer(builder *doctree.Builder, source doctree.Source, config *ServerConfig) (*Server, error) {
	if builder == nil {
		return nil, fmt.Errorf("builder is required")
	}
	if source == nil {
		return nil, fmt.Errorf("brief source is required")
	}
	if config == nil {
		config = DefaultServerConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	AddBriefTool(mcpServer, builder.RootDir(), source, builder.SearchDepth())
	AddTreeTool(mcpServer, builder)

	return &Server{
		config: config,
		logger: logger,
		mcp:    mcpServer,
	}, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio", "name", s.config.Name)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
