package core

import (
	"context"
	"io"

	"github.com/JonMunkholm/supplierdb/internal/export"
	"github.com/JonMunkholm/supplierdb/internal/schema"
)

// SearchSheet names the worksheet of exported search results.
const SearchSheet = "Search_Results"

// Export writes the whole dataset in format, using the dataset name as the
// sheet name.
func (s *Service) Export(ctx context.Context, datasetID int64, format export.Format, w io.Writer) error {
	ds, err := s.store.GetDataset(ctx, datasetID)
	if err != nil {
		return err
	}
	recs, err := s.store.LoadRecords(ctx, datasetID)
	if err != nil {
		return err
	}
	return export.Write(w, format, ds.Name, recs, false)
}

// ExportSearch writes the records matching term with their ids.
func (s *Service) ExportSearch(ctx context.Context, datasetID int64, term string, fields []schema.Field, format export.Format, w io.Writer) error {
	recs, err := s.Search(ctx, datasetID, term, fields)
	if err != nil {
		return err
	}
	return export.Write(w, format, SearchSheet, recs, true)
}
