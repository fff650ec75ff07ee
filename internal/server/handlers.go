package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/internal/search"
	"github.com/hyperjump/bunseki/internal/storage"
)

// documentsResponse is the search response without scores.
type documentsResponse struct {
	Documents  []*models.Document `json:"documents"`
	Total      int                `json:"total"`
	CorpusSize int                `json:"corpus_size"`
	QueryTime  int64              `json:"query_time_ms"`
	Query      string             `json:"query"`
	Fallback   bool               `json:"fallback,omitempty"`
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	principal := principalFrom(r)
	s.logger.Debug("search request", zap.String("principal", principal), zap.String("query", req.Query))
	resp, err := s.engine.SearchFor(r.Context(), principal, &req)
	if err != nil {
		s.respondFailure(w, "search failed", err)
		return
	}
	if req.WithScores {
		s.respondJSON(w, http.StatusOK, resp)
		return
	}
	s.respondJSON(w, http.StatusOK, &documentsResponse{
		Documents:  resp.Documents(),
		Total:      resp.Total,
		CorpusSize: resp.CorpusSize,
		QueryTime:  resp.QueryTime,
		Query:      resp.Query,
		Fallback:   resp.Fallback,
	})
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req models.ClusterRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	principal := principalFrom(r)
	s.logger.Debug("cluster request", zap.String("principal", principal))
	resp, err := s.engine.ClusterFor(r.Context(), principal, &req)
	if err != nil {
		s.respondFailure(w, "clustering failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	principal := principalFrom(r)
	doc := &models.Document{
		ID:       input.ID,
		OwnerID:  principal,
		Title:    input.Title,
		Content:  input.Content,
		Metadata: input.Metadata,
	}
	err := s.storage.CreateDocument(r.Context(), doc)
	if errors.Is(err, storage.ErrAlreadyExists) {
		// A taken ID is only reported to principals who can already see the document.
		if _, getErr := s.storage.GetAccessibleDocument(r.Context(), principal, doc.ID); getErr == nil {
			s.respondError(w, http.StatusConflict, "document already exists")
		} else {
			s.respondError(w, http.StatusNotFound, "document not found")
		}
		return
	}
	if err != nil {
		s.respondFailure(w, "create document failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": doc.ID, "status": "created"})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.storage.ListAccessibleDocuments(r.Context(), principalFrom(r))
	if err != nil {
		s.respondFailure(w, "list documents failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "total": len(docs)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.storage.GetAccessibleDocument(r.Context(), principalFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, "get document failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	doc := &models.Document{
		ID:       chi.URLParam(r, "id"),
		Title:    input.Title,
		Content:  input.Content,
		Metadata: input.Metadata,
	}
	if err := s.storage.UpdateDocument(r.Context(), principalFrom(r), doc); err != nil {
		s.respondFailure(w, "update document failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": doc.ID, "status": "updated"})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.storage.DeleteDocument(r.Context(), principalFrom(r), id); err != nil {
		s.respondFailure(w, "delete document failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListCollaborators(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetAccessibleDocument(r.Context(), principalFrom(r), id); err != nil {
		s.respondFailure(w, "list collaborators failed", err)
		return
	}
	collaborators, err := s.storage.ListCollaborators(r.Context(), id)
	if err != nil {
		s.respondFailure(w, "list collaborators failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"collaborators": collaborators})
}

func (s *Server) handleAddCollaborator(w http.ResponseWriter, r *http.Request) {
	var input models.CollaboratorInput
	if err := decodeBody(r, &input); err != nil || input.PrincipalID == "" {
		s.respondError(w, http.StatusBadRequest, "principal_id is required")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.storage.AddCollaborator(r.Context(), principalFrom(r), id, input.PrincipalID); err != nil {
		s.respondFailure(w, "add collaborator failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id, "principal_id": input.PrincipalID, "status": "shared"})
}

func (s *Server) handleRemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.storage.RemoveCollaborator(r.Context(), principalFrom(r), id, chi.URLParam(r, "principal")); err != nil {
		s.respondFailure(w, "remove collaborator failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "unshared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports what the calling principal can see. Store-wide figures
// and server paths stay with the local status command.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	docs, err := s.storage.ListAccessibleDocuments(r.Context(), principalFrom(r))
	if err != nil {
		s.respondFailure(w, "status: list documents failed", err)
		return
	}
	resp := map[string]interface{}{
		"documents": len(docs),
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"segmenter":        s.config.Text.Segmenter,
			"result_limit":     s.config.Search.ResultLimit,
			"vocabulary_scope": s.config.Search.VocabularyScope,
			"default_k":        s.config.Cluster.DefaultK,
			"max_iterations":   s.config.Cluster.MaxIterations,
			"content_prefix":   s.config.Cluster.ContentPrefix,
		}
	}
	if s.watch != nil {
		resp["watching"] = len(s.watch.Directories())
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFor maps engine and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondFailure(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
