package web

import (
	"bytes"
	"mime"
	"net/http"

	"github.com/JonMunkholm/supplierdb/internal/export"
	"github.com/JonMunkholm/supplierdb/internal/logging"
	"github.com/JonMunkholm/supplierdb/internal/schema"
)

type recordsResponse struct {
	DatasetID int64           `json:"datasetId"`
	Count     int             `json:"count"`
	Records   []schema.Record `json:"records"`
}

type deleteRecordsRequest struct {
	IDs     []int64 `json:"ids"`
	Confirm bool    `json:"confirm"`
}

// handleListRecords returns a dataset's records, filtered by ?q= within ?fields=.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	fields, err := parseFields(r.URL.Query()["fields"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	recs, err := s.service.Search(r.Context(), id, r.URL.Query().Get("q"), fields)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if recs == nil {
		recs = []schema.Record{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{DatasetID: id, Count: len(recs), Records: recs})
}

// handleAddRecord appends one record.
func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var rec schema.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.service.AddRecord(withRequestMetadata(r), id, rec)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleUpdateRecord replaces the fields of one record.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	recordID, err := parseIDParam(r, "recordID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var rec schema.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		respondError(w, r, err)
		return
	}
	rec.ID = recordID
	saved, err := s.service.UpdateRecord(withRequestMetadata(r), id, rec)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleDeleteRecords removes records by id.
func (s *Server) handleDeleteRecords(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req deleteRecordsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	n, err := s.service.DeleteRecords(withRequestMetadata(r), id, req.IDs, req.Confirm)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// handleAddRecordForm adds a record from the dashboard form.
func (s *Server) handleAddRecordForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, r, invalidRequest("invalid form: %v", err))
		return
	}
	if _, err := s.service.AddRecord(withRequestMetadata(r), id, recordFromForm(r.PostForm)); err != nil {
		respondError(w, r, err)
		return
	}
	redirect(w, r, dashboardURL(id))
}

// handleDeleteRecordsForm deletes the rows ticked on the dashboard.
func (s *Server) handleDeleteRecordsForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, r, invalidRequest("invalid form: %v", err))
		return
	}
	ids, err := parseIDs(r.PostForm["ids"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	confirm := isTrue(r.PostForm.Get("confirm"))
	if _, err := s.service.DeleteRecords(withRequestMetadata(r), id, ids, confirm); err != nil {
		respondError(w, r, err)
		return
	}
	redirect(w, r, dashboardURL(id))
}

// handleExport downloads a dataset as xlsx or csv. With ?q= only matching
// records are written, with their ids, to a search results sheet.
//
// The file is rendered in memory first so a failure can still produce an
// error status.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	query := r.URL.Query()
	format, err := export.ParseFormat(query.Get("format"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	fields, err := parseFields(query["fields"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	ds, err := s.service.GetDataset(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	name := ds.Name
	if term := query.Get("q"); term != "" {
		name += "_search"
		err = s.service.ExportSearch(r.Context(), id, term, fields, format, &buf)
	} else {
		err = s.service.Export(r.Context(), id, format, &buf)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": export.FileName(name, format),
	})
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed",
			"dataset_id", id, "format", format, "error", err)
	}
}
