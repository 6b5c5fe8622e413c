package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/pipeline"
)

// Handlers implements the MCP tools on top of the chunking pipeline.
type Handlers struct {
	chunker  *pipeline.Chunker
	worker   *pipeline.Worker
	sink     pipeline.Sink
	opts     pipeline.Options
	maxBytes int64
}

// NewHandlers wires the tools to a chunker and a sink. Ingestion runs the
// same worker the HTTP service uses, synchronously.
func NewHandlers(ch *pipeline.Chunker, conv pipeline.Converter, sink pipeline.Sink, opts pipeline.Options, maxBytes int64, log *slog.Logger) *Handlers {
	return &Handlers{
		chunker:  ch,
		worker:   pipeline.NewWorker(ch, conv, sink, opts, log),
		sink:     sink,
		opts:     opts,
		maxBytes: maxBytes,
	}
}

type chunkResponse struct {
	Strategy  string           `json:"strategy"`
	Reasoning string           `json:"reasoning,omitempty"`
	Validated bool             `json:"validated"`
	Chunks    []doctree.Record `json:"chunks"`
}

// ChunkDocument handles the chunk_document tool.
func (h *Handlers) ChunkDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	opts := h.opts
	opts.Config.MinTokens = request.GetInt("min_tokens", opts.Config.MinTokens)
	opts.Config.MaxTokens = request.GetInt("max_tokens", opts.Config.MaxTokens)
	opts.Strategy = request.GetBool("llm_strategy", opts.Strategy)
	opts.Validate = request.GetBool("llm_validate", opts.Validate)

	res, err := h.chunker.ChunkDocument(ctx, text, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chunking failed: %v", err)), nil
	}

	records := res.Records(opts.Config.Estimator)
	if !request.GetBool("include_content", true) {
		for i := range records {
			records[i].Content = ""
		}
	}
	return jsonResult(chunkResponse{
		Strategy:  res.Strategy,
		Reasoning: res.Reasoning,
		Validated: res.Validated,
		Chunks:    records,
	})
}

type headingInfo struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Line   int    `json:"line"`
	Tokens int    `json:"tokens"`
}

type structureResponse struct {
	TotalTokens  int           `json:"total_tokens"`
	TotalLines   int           `json:"total_lines"`
	MinLevel     int           `json:"min_level"`
	MaxLevel     int           `json:"max_level"`
	HasStructure bool          `json:"has_structure"`
	Headings     []headingInfo `json:"headings"`
	Hierarchy    string        `json:"hierarchy"`
}

// DocumentStructure handles the document_structure tool.
func (h *Handlers) DocumentStructure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	st := chunker.ExtractStructure(text, h.opts.Config.Estimator)
	resp := structureResponse{
		TotalTokens:  st.TotalTokens,
		TotalLines:   st.TotalLines,
		MinLevel:     st.MinLevel,
		MaxLevel:     st.MaxLevel,
		HasStructure: st.HasStructure,
		Headings:     make([]headingInfo, len(st.Headings)),
		Hierarchy:    chunker.Hierarchy(st),
	}
	for i, hd := range st.Headings {
		resp.Headings[i] = headingInfo{Level: hd.Level, Title: hd.Title, Line: hd.Line, Tokens: hd.Tokens}
	}
	return jsonResult(resp)
}

// IngestFile handles the ingest_file tool.
func (h *Handlers) IngestFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil || path == "" {
		return mcp.NewToolResultError("path argument is required and must be a string"), nil
	}
	if !parser.IsSupportedExtension(path) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file type: %s", filepath.Ext(path))), nil
	}

	data, err := h.readFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	job := pipeline.NewJob(filepath.Base(path), data)
	job.Force = request.GetBool("force", false)
	h.worker.Process(ctx, job)

	snap := job.Snapshot()
	if snap.Status == pipeline.StatusFailed {
		return mcp.NewToolResultError(fmt.Sprintf("ingest failed in %s: %v", snap.Phase, snap.Progress.Errors)), nil
	}
	return jsonResult(snap)
}

func (h *Handlers) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", h.maxBytes)
	}
	return data, nil
}

// ListDocuments handles the list_documents tool.
func (h *Handlers) ListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := h.sink.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list documents: %v", err)), nil
	}
	if docs == nil {
		docs = []doctree.DocumentInfo{}
	}
	return jsonResult(map[string]any{"documents": docs, "count": len(docs)})
}

// DeleteDocument handles the delete_document tool.
func (h *Handlers) DeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil || name == "" {
		return mcp.NewToolResultError("name argument is required and must be a string"), nil
	}
	if err := h.sink.Delete(ctx, name); err != nil {
		if errors.Is(err, doctree.ErrDocumentNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("document not found: %s", name)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete document: %v", err)), nil
	}
	return jsonResult(map[string]string{"deleted": name})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
