package cli

import (
	"fmt"

	"github.com/mvp-joe/doctree/internal/brief"
	"github.com/mvp-joe/doctree/internal/cache"
	"github.com/mvp-joe/doctree/internal/config"
	"github.com/mvp-joe/doctree/internal/doctree"
	"github.com/mvp-joe/doctree/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Start the MCP server exposing briefs and the documentation tree",
	Long: `Start a Model Context Protocol (MCP) server on stdio so coding assistants can
look up file summaries.

Tools:
- doctree_brief: the @brief of one file
- doctree_tree:  the rendered documentation tree (markdown, json or yaml)

Logs go to stderr; stdout carries the protocol.

Example:
  doctree mcp ./src`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	var source doctree.Source = brief.New(brief.WithLogger(logger))
	if cfg.Cache.Enabled {
		cached, err := cache.New(source, cfg.Cache.Capacity)
		if err != nil {
			return err
		}
		defer cached.Close()
		source = cached
	}

	builder, err := doctree.NewBuilder(cfg.BuildOptions(root), source, nil, logger)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(builder, source, &mcp.ServerConfig{
		Name:    "doctree",
		Version: Version,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	return server.Serve(cmd.Context())
}
