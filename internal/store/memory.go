package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

// Memory is an in-process Store. Values are copied on the way in and out.
type Memory struct {
	mu        sync.RWMutex
	datasets  map[int64]*memDataset
	nextDSID  int64
	nextRecID int64
	now       func() time.Time
}

type memDataset struct {
	Dataset
	records []schema.Record
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		datasets: make(map[int64]*memDataset),
		now:      time.Now,
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) byName(name string) *memDataset {
	for _, ds := range m.datasets {
		if ds.Name == name {
			return ds
		}
	}
	return nil
}

func (m *Memory) create(name string) Dataset {
	m.nextDSID++
	ds := &memDataset{Dataset: Dataset{ID: m.nextDSID, Name: name, CreatedAt: m.now()}}
	m.datasets[ds.ID] = ds
	return ds.Dataset
}

func (m *Memory) EnsureDataset(_ context.Context, name string) (Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ds := m.byName(name); ds != nil {
		return ds.Dataset, nil
	}
	return m.create(name), nil
}

func (m *Memory) CreateDataset(_ context.Context, name string) (Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byName(name) != nil {
		return Dataset{}, ErrDuplicateName
	}
	return m.create(name), nil
}

func (m *Memory) ListDatasets(_ context.Context) ([]Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Dataset, 0, len(m.datasets))
	for _, ds := range m.datasets {
		out = append(out, ds.Dataset)
	}
	slices.SortFunc(out, func(a, b Dataset) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) GetDataset(_ context.Context, id int64) (Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.datasets[id]
	if !ok {
		return Dataset{}, ErrDatasetNotFound
	}
	return ds.Dataset, nil
}

func (m *Memory) RenameDataset(_ context.Context, id int64, name string) (Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[id]
	if !ok {
		return Dataset{}, ErrDatasetNotFound
	}
	if other := m.byName(name); other != nil && other.ID != id {
		return Dataset{}, ErrDuplicateName
	}
	ds.Name = name
	return ds.Dataset, nil
}

func (m *Memory) DeleteDataset(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[id]; !ok {
		return ErrDatasetNotFound
	}
	delete(m.datasets, id)
	return nil
}

func (m *Memory) ReplaceRecords(_ context.Context, datasetID int64, recs []schema.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[datasetID]
	if !ok {
		return 0, ErrDatasetNotFound
	}
	ds.records = make([]schema.Record, len(recs))
	for i, rec := range recs {
		m.nextRecID++
		rec.ID = m.nextRecID
		ds.records[i] = rec
	}
	return int64(len(recs)), nil
}

func (m *Memory) InsertRecord(_ context.Context, datasetID int64, rec schema.Record) (schema.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[datasetID]
	if !ok {
		return schema.Record{}, ErrDatasetNotFound
	}
	m.nextRecID++
	rec.ID = m.nextRecID
	ds.records = append(ds.records, rec)
	return rec, nil
}

func (m *Memory) UpdateRecord(_ context.Context, datasetID int64, rec schema.Record) (schema.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[datasetID]
	if !ok {
		return schema.Record{}, ErrDatasetNotFound
	}
	for i := range ds.records {
		if ds.records[i].ID == rec.ID {
			ds.records[i] = rec
			return rec, nil
		}
	}
	return schema.Record{}, ErrRecordNotFound
}

func (m *Memory) DeleteRecords(_ context.Context, datasetID int64, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[datasetID]
	if !ok {
		return 0, ErrDatasetNotFound
	}
	before := len(ds.records)
	ds.records = slices.DeleteFunc(ds.records, func(r schema.Record) bool {
		return slices.Contains(ids, r.ID)
	})
	return int64(before - len(ds.records)), nil
}

func (m *Memory) LoadRecords(_ context.Context, datasetID int64) ([]schema.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.datasets[datasetID]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	// ids are assigned monotonically and records are only appended.
	return slices.Clone(ds.records), nil
}

func (m *Memory) CountRecords(_ context.Context, datasetID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.datasets[datasetID]
	if !ok {
		return 0, ErrDatasetNotFound
	}
	return int64(len(ds.records)), nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}
