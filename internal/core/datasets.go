package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/store"
)

// ErrDatasetNameRequired is returned for blank dataset names.
var ErrDatasetNameRequired = errors.New("dataset name required")

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrDatasetNameRequired
	}
	return name, nil
}

// EnsureDefaultDataset returns the dataset named by Options.DefaultDatasetName,
// creating it on first start.
func (s *Service) EnsureDefaultDataset(ctx context.Context) (store.Dataset, error) {
	ds, err := s.store.EnsureDataset(ctx, s.opts.DefaultDatasetName)
	if err != nil {
		return store.Dataset{}, fmt.Errorf("ensure default dataset: %w", err)
	}
	return ds, nil
}

// CreateDataset adds an empty dataset. Names are trimmed and must be unique.
func (s *Service) CreateDataset(ctx context.Context, name string) (store.Dataset, error) {
	name, err := cleanName(name)
	if err != nil {
		return store.Dataset{}, err
	}
	ds, err := s.store.CreateDataset(ctx, name)
	if err != nil {
		return store.Dataset{}, err
	}
	opLogger(ctx).Info("dataset created", "dataset_id", ds.ID, "name", ds.Name)
	return ds, nil
}

// ListDatasets returns every dataset ordered by name.
func (s *Service) ListDatasets(ctx context.Context) ([]store.Dataset, error) {
	return s.store.ListDatasets(ctx)
}

func (s *Service) GetDataset(ctx context.Context, id int64) (store.Dataset, error) {
	return s.store.GetDataset(ctx, id)
}

func (s *Service) RenameDataset(ctx context.Context, id int64, name string) (store.Dataset, error) {
	name, err := cleanName(name)
	if err != nil {
		return store.Dataset{}, err
	}
	ds, err := s.store.RenameDataset(ctx, id, name)
	if err != nil {
		return store.Dataset{}, err
	}
	opLogger(ctx).Info("dataset renamed", "dataset_id", id, "name", name)
	return ds, nil
}

// DeleteDataset removes a dataset and its records. confirm must be set.
func (s *Service) DeleteDataset(ctx context.Context, id int64, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if err := s.store.DeleteDataset(ctx, id); err != nil {
		return err
	}
	opLogger(ctx).Warn("dataset deleted", "dataset_id", id)
	return nil
}
