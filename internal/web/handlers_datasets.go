package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/supplierdb/internal/store"
)

type datasetRequest struct {
	Name string `json:"name"`
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		respondStatus(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.service.ImportStatus(),
	})
}

// handleSchema describes the canonical fields for API clients.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Schema())
}

// handleListDatasets lists datasets by name.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.service.ListDatasets(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, datasets)
}

// handleCreateDataset creates an empty dataset.
func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req datasetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	ds, err := s.service.CreateDataset(withRequestMetadata(r), req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ds)
}

// handleGetDataset returns one dataset.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	ds, err := s.service.GetDataset(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// handleRenameDataset changes a dataset's name.
func (s *Server) handleRenameDataset(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req datasetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	ds, err := s.service.RenameDataset(withRequestMetadata(r), id, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// handleDeleteDataset removes a dataset and its records. Requires ?confirm=true.
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	confirm := isTrue(r.URL.Query().Get("confirm"))
	if err := s.service.DeleteDataset(withRequestMetadata(r), id, confirm); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCreateDatasetForm creates a dataset from the sidebar form and opens it.
func (s *Server) handleCreateDatasetForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, invalidRequest("invalid form: %v", err))
		return
	}
	ds, err := s.service.CreateDataset(withRequestMetadata(r), r.PostForm.Get("name"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	redirect(w, r, dashboardURL(ds.ID))
}

// resolveDataset picks the dataset a page works on: the requested one, or
// the configured default when none is given.
func (s *Server) resolveDataset(r *http.Request, raw string) (store.Dataset, error) {
	if raw == "" {
		return s.service.EnsureDefaultDataset(r.Context())
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return store.Dataset{}, invalidRequest("dataset %q is not a valid id", raw)
	}
	return s.service.GetDataset(r.Context(), id)
}
