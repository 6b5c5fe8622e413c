package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// handleListDocuments lists every stored document.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.orchestrator.Sink().List(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []doctree.DocumentInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleDeleteDocument removes a document and its chunks.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "docID")
	err := s.orchestrator.Sink().Delete(r.Context(), name)
	switch {
	case errors.Is(err, doctree.ErrDocumentNotFound):
		jsonError(w, "document not found", http.StatusNotFound)
		return
	case err != nil:
		s.log.Error("delete document failed", "doc_name", name, "error", err)
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": name})
}
