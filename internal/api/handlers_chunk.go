package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/pipeline"
)

// planRequest is an explicit chunking plan supplied by the caller, in the
// same shape the advisor returns.
type planRequest struct {
	Type       string `json:"type"`
	Level      *int   `json:"level"`
	Boundaries []int  `json:"boundaries"`
	Reasoning  string `json:"reasoning"`
}

func (p *planRequest) strategy() (chunker.Strategy, error) {
	switch p.Type {
	case "by_level":
		if p.Level == nil {
			return nil, fmt.Errorf("%w: by_level requires a level", chunker.ErrUnsupportedStrategy)
		}
		return chunker.ByLevel{Level: *p.Level, Reasoning: p.Reasoning}, nil
	case "custom_boundaries":
		return chunker.CustomBoundaries{Boundaries: p.Boundaries, Reasoning: p.Reasoning}, nil
	}
	return nil, fmt.Errorf("%w: %q", chunker.ErrUnsupportedStrategy, p.Type)
}

type chunkRequest struct {
	Text        string       `json:"text"`
	Filename    string       `json:"filename"`
	MinTokens   *int         `json:"min_tokens"`
	MaxTokens   *int         `json:"max_tokens"`
	Strategy    *planRequest `json:"strategy"`
	LLMStrategy *bool        `json:"llm_strategy"`
	LLMValidate *bool        `json:"llm_validate"`
	Language    string       `json:"language"`
}

// readDocument accepts either a JSON body or a multipart upload with a
// "file" part, converting uploads to Markdown.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (chunkRequest, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	var req chunkRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, http.StatusBadRequest, fmt.Errorf("invalid json body: %w", err)
		}
		if req.Text == "" {
			return req, http.StatusBadRequest, errors.New("text is required")
		}
		return req, 0, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return req, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	req.Filename = sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(req.Filename) {
		return req, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(req.Filename))
	}
	if req.MinTokens, req.MaxTokens, err = formBounds(r); err != nil {
		return req, http.StatusBadRequest, err
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return req, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return req, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}

	conv := pipeline.Converter{PDFFallback: s.cfg.PDFFallbackPdftotext}
	if req.Text, err = conv.Convert(req.Filename, data); err != nil {
		return req, http.StatusUnprocessableEntity, err
	}
	req.LLMStrategy = formBool(r, "llm_strategy")
	req.LLMValidate = formBool(r, "llm_validate")
	req.Language = r.FormValue("language")
	return req, 0, nil
}

// options overlays request overrides on the server defaults. Bounds that
// are present are applied as given and checked by the chunker.
func (s *Server) options(req chunkRequest) (pipeline.Options, error) {
	opts := s.orchestrator.Options()
	if req.MinTokens != nil {
		opts.Config.MinTokens = *req.MinTokens
	}
	if req.MaxTokens != nil {
		opts.Config.MaxTokens = *req.MaxTokens
	}
	if req.LLMStrategy != nil {
		opts.Strategy = *req.LLMStrategy
	}
	if req.LLMValidate != nil {
		opts.Validate = *req.LLMValidate
	}
	if req.Language != "" {
		opts.Language = req.Language
	}
	if req.Strategy != nil {
		plan, err := req.Strategy.strategy()
		if err != nil {
			return opts, err
		}
		opts.Plan = plan
	}
	return opts, nil
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	req, code, err := s.readDocument(w, r)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}
	opts, err := s.options(req)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.chunker.ChunkDocument(r.Context(), req.Text, opts)
	if err != nil {
		if errors.Is(err, chunker.ErrInvalidConfig) || errors.Is(err, chunker.ErrInvalidLevel) || errors.Is(err, chunker.ErrUnsupportedStrategy) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error("chunking failed", "filename", req.Filename, "error", err)
		jsonError(w, "chunking failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"strategy":  res.Strategy,
		"validated": res.Validated,
		"structure": structureSummary(res.Structure),
		"chunks":    res.Records(opts.Config.Estimator),
	}
	if res.Reasoning != "" {
		resp["reasoning"] = res.Reasoning
	}
	if req.Filename != "" {
		resp["doc_name"] = pipeline.DocName(req.Filename)
	}
	writeJSON(w, http.StatusOK, resp)
}

type headingResponse struct {
	Level        int    `json:"level"`
	Title        string `json:"title"`
	Line         int    `json:"line"`
	SectionStart int    `json:"section_start"`
	SectionEnd   int    `json:"section_end"`
	Tokens       int    `json:"tokens"`
}

func structureSummary(st doctree.Structure) map[string]any {
	return map[string]any{
		"total_tokens":  st.TotalTokens,
		"total_lines":   st.TotalLines,
		"min_level":     st.MinLevel,
		"max_level":     st.MaxLevel,
		"has_structure": st.HasStructure,
		"headings":      len(st.Headings),
	}
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	req, code, err := s.readDocument(w, r)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	st := chunker.ExtractStructure(req.Text, s.orchestrator.Options().Config.Estimator)
	headings := make([]headingResponse, len(st.Headings))
	for i, h := range st.Headings {
		headings[i] = headingResponse{
			Level:        h.Level,
			Title:        h.Title,
			Line:         h.Line,
			SectionStart: h.SectionStart,
			SectionEnd:   h.SectionEnd,
			Tokens:       h.Tokens,
		}
	}
	resp := structureSummary(st)
	resp["headings"] = headings
	resp["hierarchy"] = chunker.Hierarchy(st)
	writeJSON(w, http.StatusOK, resp)
}

// formBounds reads the optional min_tokens and max_tokens form fields.
func formBounds(r *http.Request) (minTokens, maxTokens *int, err error) {
	if minTokens, err = formInt(r, "min_tokens"); err != nil {
		return nil, nil, err
	}
	if maxTokens, err = formInt(r, "max_tokens"); err != nil {
		return nil, nil, err
	}
	return minTokens, maxTokens, nil
}

// formInt returns nil when key is absent.
func formInt(r *http.Request, key string) (*int, error) {
	v := r.FormValue(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer: %q", key, v)
	}
	return &n, nil
}

func formBool(r *http.Request, key string) *bool {
	v := r.FormValue(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
