package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

var (
	// ErrConfirmationRequired guards overwrites and deletions.
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrNoRecordsSelected    = errors.New("no records selected")
)

// ValidationError lists required fields left blank on a record.
type ValidationError struct {
	Missing []schema.Field
}

func (e *ValidationError) Error() string {
	labels := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		labels[i] = schema.DisplayName(f)
	}
	verb := "is"
	if len(labels) > 1 {
		verb = "are"
	}
	return fmt.Sprintf("%s %s required", strings.Join(labels, " and "), verb)
}

// validate trims rec and checks the required fields.
func validate(rec schema.Record) (schema.Record, error) {
	rec = rec.Trimmed()
	if missing := rec.MissingRequired(); len(missing) > 0 {
		return rec, &ValidationError{Missing: missing}
	}
	return rec, nil
}

// LoadRecords returns every record in the dataset ordered by id.
func (s *Service) LoadRecords(ctx context.Context, datasetID int64) ([]schema.Record, error) {
	return s.store.LoadRecords(ctx, datasetID)
}

// Search filters the dataset by a case-insensitive substring over fields,
// or over all fields when none are given.
func (s *Service) Search(ctx context.Context, datasetID int64, term string, fields []schema.Field) ([]schema.Record, error) {
	recs, err := s.store.LoadRecords(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return schema.Search(recs, term, fields...), nil
}

// AddRecord validates and appends a record.
func (s *Service) AddRecord(ctx context.Context, datasetID int64, rec schema.Record) (schema.Record, error) {
	rec, err := validate(rec)
	if err != nil {
		return schema.Record{}, err
	}
	rec.ID = 0
	saved, err := s.store.InsertRecord(ctx, datasetID, rec)
	if err != nil {
		return schema.Record{}, err
	}
	opLogger(ctx).Info("record added", "dataset_id", datasetID, "record_id", saved.ID)
	return saved, nil
}

// UpdateRecord validates and overwrites the record with rec.ID.
func (s *Service) UpdateRecord(ctx context.Context, datasetID int64, rec schema.Record) (schema.Record, error) {
	rec, err := validate(rec)
	if err != nil {
		return schema.Record{}, err
	}
	saved, err := s.store.UpdateRecord(ctx, datasetID, rec)
	if err != nil {
		return schema.Record{}, err
	}
	opLogger(ctx).Info("record updated", "dataset_id", datasetID, "record_id", saved.ID)
	return saved, nil
}

// DeleteRecords removes ids from the dataset and returns how many went.
// At least one id and an explicit confirmation are required.
func (s *Service) DeleteRecords(ctx context.Context, datasetID int64, ids []int64, confirm bool) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoRecordsSelected
	}
	if !confirm {
		return 0, ErrConfirmationRequired
	}
	n, err := s.store.DeleteRecords(ctx, datasetID, ids)
	if err != nil {
		return 0, err
	}
	opLogger(ctx).Info("records deleted", "dataset_id", datasetID, "requested", len(ids), "deleted", n)
	return n, nil
}
