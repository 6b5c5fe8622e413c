// Package mcp exposes chunking and ingestion as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	// ServerName is reported to MCP clients.
	ServerName = "docchunk"
	// ServerVersion is reported to MCP clients.
	ServerVersion = "0.1.0"
)

// NewServer returns an MCP server with every tool registered.
func NewServer(h *Handlers) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(ServerName, ServerVersion, mcpserver.WithToolCapabilities(false))
	RegisterTools(s, h)
	return s
}

// RegisterTools adds the docchunk tools to server.
func RegisterTools(server *mcpserver.MCPServer, h *Handlers) {
	server.AddTool(mcp.NewTool("chunk_document",
		mcp.WithDescription("Split Markdown text into retrieval chunks along its headings. Returns the chunk records and the strategy used."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Markdown text to chunk")),
		mcp.WithNumber("min_tokens", mcp.Description("Chunks below this size are merged forward (default from server config)")),
		mcp.WithNumber("max_tokens", mcp.Description("Chunks above this size are split (default from server config)")),
		mcp.WithBoolean("llm_strategy", mcp.Description("Ask the configured LLM to choose the chunking strategy")),
		mcp.WithBoolean("llm_validate", mcp.Description("Ask the configured LLM to review chunk boundaries")),
		mcp.WithBoolean("include_content", mcp.Description("Include chunk text in the result"), mcp.DefaultBool(true)),
	), h.ChunkDocument)

	server.AddTool(mcp.NewTool("document_structure",
		mcp.WithDescription("Return the heading outline of Markdown text with per-section token estimates."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Markdown text to analyze")),
	), h.DocumentStructure)

	server.AddTool(mcp.NewTool("ingest_file",
		mcp.WithDescription("Convert a local file (PDF, DOCX, HTML, CSV, Markdown or text) to Markdown, chunk it and store the chunks. Documents with identical content are skipped unless force is set."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to ingest")),
		mcp.WithBoolean("force", mcp.Description("Store even when a document with the same content exists"), mcp.DefaultBool(false)),
	), h.IngestFile)

	server.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List stored documents with their chunk counts and content hashes."),
	), h.ListDocuments)

	server.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("Delete a stored document and its chunks."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Document name as shown by list_documents")),
	), h.DeleteDocument)
}
