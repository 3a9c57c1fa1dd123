package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// dashboardURL opens dataset id, optionally with a one-line notice.
func dashboardURL(id int64, notice ...string) string {
	q := url.Values{"dataset": {strconv.FormatInt(id, 10)}}
	if len(notice) > 0 && notice[0] != "" {
		q.Set("notice", notice[0])
	}
	return "/?" + q.Encode()
}

// handleDashboard renders the main page for ?dataset= (default dataset when
// absent), filtered by ?q= within ?fields=.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	current, err := s.resolveDataset(r, query.Get("dataset"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	fields, err := parseFields(query["fields"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	datasets, err := s.service.ListDatasets(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	all, err := s.service.LoadRecords(ctx, current.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	term := query.Get("q")
	templates.Dashboard(templates.DashboardData{
		Datasets: datasets,
		Current:  current,
		Query:    term,
		Fields:   fields,
		Records:  schema.Search(all, term, fields...),
		Total:    len(all),
		Notice:   query.Get("notice"),
	}).Render(ctx, w)
}

// handleImportPage renders the mapping and preview page. map_<field> query
// values override the inferred mapping.
func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "importID")

	sess, err := s.service.GetImport(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	override, err := s.importOverride(r, mappingChoices(r.URL.Query()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	preview, err := s.service.PreviewImport(ctx, id, override)
	if err != nil {
		respondError(w, r, err)
		return
	}
	datasets, err := s.service.ListDatasets(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	current, err := s.resolveDataset(r, r.URL.Query().Get("dataset"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	templates.ImportPage(templates.ImportPageData{
		Session:  sess,
		Preview:  preview,
		Datasets: datasets,
		Current:  current.ID,
	}).Render(ctx, w)
}
