// Package store persists datasets and their supplier records.
//
// Two implementations are provided: Postgres, backed by pgx, and Memory,
// used by tests and by servers started without a database.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrRecordNotFound  = errors.New("record not found")
	ErrDuplicateName   = errors.New("dataset name already exists")
)

// Dataset is a named collection of records.
type Dataset struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the persistence boundary used by the service layer.
// Record operations fail with ErrDatasetNotFound when the dataset is absent.
type Store interface {
	// EnsureDataset returns the dataset called name, creating it if needed.
	EnsureDataset(ctx context.Context, name string) (Dataset, error)
	// CreateDataset fails with ErrDuplicateName if name is taken.
	CreateDataset(ctx context.Context, name string) (Dataset, error)
	// ListDatasets returns all datasets ordered by name.
	ListDatasets(ctx context.Context) ([]Dataset, error)
	GetDataset(ctx context.Context, id int64) (Dataset, error)
	RenameDataset(ctx context.Context, id int64, name string) (Dataset, error)
	// DeleteDataset removes the dataset and all of its records.
	DeleteDataset(ctx context.Context, id int64) error

	// ReplaceRecords atomically swaps the dataset's records for recs and
	// returns the number written.
	ReplaceRecords(ctx context.Context, datasetID int64, recs []schema.Record) (int64, error)
	InsertRecord(ctx context.Context, datasetID int64, rec schema.Record) (schema.Record, error)
	// UpdateRecord overwrites the record with rec.ID.
	UpdateRecord(ctx context.Context, datasetID int64, rec schema.Record) (schema.Record, error)
	// DeleteRecords removes the listed ids that belong to the dataset.
	DeleteRecords(ctx context.Context, datasetID int64, ids []int64) (int64, error)
	// LoadRecords returns the dataset's records ordered by id.
	LoadRecords(ctx context.Context, datasetID int64) ([]schema.Record, error)
	CountRecords(ctx context.Context, datasetID int64) (int64, error)

	Ping(ctx context.Context) error
	Close()
}
