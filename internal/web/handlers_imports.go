package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/ingest"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead allows for form boundaries and headers around the file.
const multipartOverhead = 1 << 20

type previewRequest struct {
	Mapping map[string]string `json:"mapping"`
}

type commitRequest struct {
	Mode      string            `json:"mode"`
	DatasetID int64             `json:"datasetId"`
	NewName   string            `json:"newName"`
	Mapping   map[string]string `json:"mapping"`
	Confirm   bool              `json:"confirm"`
}

// beginImport reads the multipart "file" field, plus an optional "sheet"
// naming the worksheet, and starts an import session.
func (s *Server) beginImport(w http.ResponseWriter, r *http.Request) (*core.ImportSession, error) {
	maxBytes := s.service.Options().MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ingest.ErrFileTooLarge
		}
		return nil, invalidRequest("invalid upload: %v", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, core.ErrNoFile
		}
		return nil, invalidRequest("invalid upload: %v", err)
	}
	defer file.Close()

	return s.service.BeginImportSheet(withRequestMetadata(r), header.Filename, r.FormValue("sheet"), file, header.Size)
}

// importOverride resolves user mapping choices against the session's columns.
func (s *Server) importOverride(r *http.Request, choices map[string]string) (mapping.Mapping, error) {
	if len(choices) == 0 {
		return nil, nil
	}
	sess, err := s.service.GetImport(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		return nil, err
	}
	return mapping.ParseOverride(choices, sess.Columns)
}

// handleBeginImport uploads a spreadsheet and returns the detected columns
// and inferred mapping.
func (s *Server) handleBeginImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.beginImport(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// handleGetImport returns a live import session.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.GetImport(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handlePreviewImport standardizes the upload under an optional mapping
// override. An empty body previews the inferred mapping.
func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
	}
	override, err := s.importOverride(r, req.Mapping)
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := s.service.PreviewImport(r.Context(), chi.URLParam(r, "importID"), override)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleCommitImport saves the standardized records to a dataset.
func (s *Server) handleCommitImport(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	override, err := s.importOverride(r, req.Mapping)
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.service.CommitImport(withRequestMetadata(r), chi.URLParam(r, "importID"), core.CommitRequest{
		Mode:      core.ImportMode(req.Mode),
		DatasetID: req.DatasetID,
		NewName:   req.NewName,
		Override:  override,
		Confirm:   req.Confirm,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDiscardImport drops an import session.
func (s *Server) handleDiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardImport(withRequestMetadata(r), chi.URLParam(r, "importID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadForm starts an import from the dashboard and opens its page.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	sess, err := s.beginImport(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	redirect(w, r, "/imports/"+sess.ID)
}

// handleCommitForm saves an import from its page and opens the target dataset.
func (s *Server) handleCommitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, invalidRequest("invalid form: %v", err))
		return
	}
	form := r.PostForm

	override, err := s.importOverride(r, mappingChoices(form))
	if err != nil {
		respondError(w, r, err)
		return
	}
	req := core.CommitRequest{
		Mode:     core.ImportMode(form.Get("mode")),
		NewName:  form.Get("new_name"),
		Override: override,
		Confirm:  isTrue(form.Get("confirm")),
	}
	if req.Mode == core.ModeOverwrite {
		req.DatasetID, err = strconv.ParseInt(form.Get("dataset"), 10, 64)
		if err != nil {
			respondError(w, r, invalidRequest("dataset %q is not a valid id", form.Get("dataset")))
			return
		}
	}

	res, err := s.service.CommitImport(withRequestMetadata(r), chi.URLParam(r, "importID"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	notice := "Saved " + strconv.FormatInt(res.Written, 10) + " records to " + res.Dataset.Name
	if res.DroppedRows > 0 {
		notice += " (" + strconv.Itoa(res.DroppedRows) + " rows without Supplier or Product skipped)"
	}
	redirect(w, r, dashboardURL(res.Dataset.ID, notice))
}

// handleDiscardForm drops an import from its page.
func (s *Server) handleDiscardForm(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardImport(withRequestMetadata(r), chi.URLParam(r, "importID")); err != nil {
		respondError(w, r, err)
		return
	}
	redirect(w, r, "/")
}
