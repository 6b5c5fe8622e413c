package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/mcp"
	"github.com/dgallion1/docchunk/internal/pipeline"
)

var mcpCmdFlags chunkFlags

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server for LLM agents",
		Long: `Start an MCP (Model Context Protocol) server on stdio.

LLM agents can chunk Markdown, inspect a document's heading outline and
ingest local files into the configured store (pathstore, SQLite or the
output directory). Logs go to stderr; stdout carries the protocol.`,
		Example: `  # Start the server (normally launched by the MCP client)
  docchunk mcp

  # Client configuration:
  # {
  #   "mcpServers": {
  #     "docchunk": {
  #       "command": "docchunk",
  #       "args": ["mcp"],
  #       "env": {"SQLITE_PATH": "/var/lib/docchunk/chunks.db"}
  #     }
  #   }
  # }`,
		Args: cobra.NoArgs,
		RunE: runMCP,
	}

	mcpCmdFlags.register(cmd)

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &mcpCmdFlags)
	if err != nil {
		return err
	}
	log := newLogger(cmd)

	est := chunker.NewEstimator(cfg.TokenizerModel, log)
	adv, err := pipeline.NewAdvisor(cfg, nil, log)
	if err != nil {
		return fmt.Errorf("initializing llm advisor: %w", err)
	}
	sink, closeSink, err := pipeline.OpenSink(cfg, est, log)
	if err != nil {
		return err
	}
	defer closeSink()

	handlers := mcp.NewHandlers(
		pipeline.NewChunker(adv, log),
		pipeline.Converter{PDFFallback: cfg.PDFFallbackPdftotext},
		sink,
		pipeline.OptionsFromConfig(cfg, est),
		cfg.MaxUploadBytes,
		log,
	)
	server := mcp.NewServer(handlers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("mcp server starting on stdio")
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
	}
	return nil
}
