package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/jonathan/contactlens/internal/graph"
)

// maxUploadBytes caps business-card image uploads (10 MB).
const maxUploadBytes = 10 << 20

// EditRequest carries user-edited field values for improve and confirm.
// Edits use the draft's JSON field names (full_name, company, ...).
type EditRequest struct {
	Edits  map[string]string `json:"edits,omitempty"`
	Skills []string          `json:"skills,omitempty"`
}

// StatsResponse summarizes the contact list.
type StatsResponse struct {
	Total      int `json:"total"`
	Duplicates int `json:"duplicates"`
}

// handleExtract accepts a multipart image upload and runs vision extraction.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart request: "+err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "An 'image' file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	// Read one byte past the cap so oversized uploads are rejected rather
	// than truncated.
	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read image: "+err.Error())
		return
	}
	if len(image) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "Uploaded image is empty")
		return
	}
	if len(image) > maxUploadBytes {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "Image exceeds the 10 MB upload limit")
		return
	}

	format := imageFormat(header.Filename)
	if format == "" {
		s.errorResponse(w, http.StatusBadRequest, "Unsupported image type; use jpg or png")
		return
	}

	draft, err := s.pipeline.Extract(r.Context(), header.Filename, image, format)
	if err != nil {
		log.Printf("Extraction failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), "Extraction error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, draft)
}

// handleImprove merges edits into the current draft and re-runs normalization.
func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	draft, err := s.pipeline.Improve(r.Context(), req.Edits)
	if err != nil {
		log.Printf("Improve failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), "Improve error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, draft)
}

// handleConfirm finalizes the draft into a confirmed contact.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	contact, err := s.pipeline.Confirm(r.Context(), req.Edits, req.Skills)
	if err != nil {
		log.Printf("Confirm failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), "Confirm error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, contact)
}

// handleDraft returns the current in-progress draft.
func (s *Server) handleDraft(w http.ResponseWriter, _ *http.Request) {
	draft := s.pipeline.Draft()
	if draft == nil {
		s.errorResponse(w, http.StatusNotFound, "No extraction in progress")
		return
	}
	s.jsonResponse(w, http.StatusOK, draft)
}

// handleListContacts returns the contact list projection. PII masking is
// display-only and controlled by the mask_pii query parameter.
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	maskPII := r.URL.Query().Get("mask_pii") == "true"
	s.jsonResponse(w, http.StatusOK, s.pipeline.Store().Projection(maskPII))
}

// handleStats returns contact list totals.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	contacts := s.pipeline.Store()
	s.jsonResponse(w, http.StatusOK, StatsResponse{
		Total:      contacts.Len(),
		Duplicates: contacts.DuplicateCount(),
	})
}

// handleGraph returns the relationship graph over confirmed contacts.
func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, graph.Build(s.pipeline.Store().All()))
}

// decodeBody decodes a JSON request body. An empty body is allowed and
// leaves the target zero-valued.
func decodeBody(r *http.Request, target any) error {
	err := json.NewDecoder(r.Body).Decode(target)
	if err == io.EOF {
		return nil
	}
	return err
}

// imageFormat maps an uploaded filename to the image subtype sent to the
// model, or "" when the extension is unsupported.
func imageFormat(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	default:
		return ""
	}
}
