package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

// testStore runs the behaviour every Store must share.
func testStore(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("ensure is idempotent", func(t *testing.T) {
		s := newStore(t)
		a, err := s.EnsureDataset(ctx, "Main")
		require.NoError(t, err)
		b, err := s.EnsureDataset(ctx, "Main")
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("create rejects duplicates", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreateDataset(ctx, "Vendors")
		require.NoError(t, err)
		_, err = s.CreateDataset(ctx, "Vendors")
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		s := newStore(t)
		for _, name := range []string{"zeta", "Alpha", "beta"} {
			_, err := s.EnsureDataset(ctx, name)
			require.NoError(t, err)
		}
		list, err := s.ListDatasets(ctx)
		require.NoError(t, err)
		names := make([]string, len(list))
		for i, ds := range list {
			names[i] = ds.Name
		}
		assert.Equal(t, []string{"Alpha", "beta", "zeta"}, names)
	})

	t.Run("rename and delete", func(t *testing.T) {
		s := newStore(t)
		a, err := s.EnsureDataset(ctx, "A")
		require.NoError(t, err)
		_, err = s.EnsureDataset(ctx, "B")
		require.NoError(t, err)

		_, err = s.RenameDataset(ctx, a.ID, "B")
		assert.ErrorIs(t, err, ErrDuplicateName)

		renamed, err := s.RenameDataset(ctx, a.ID, "C")
		require.NoError(t, err)
		assert.Equal(t, "C", renamed.Name)

		_, err = s.InsertRecord(ctx, a.ID, schema.Record{Supplier: "Acme", Product: "Bolts"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteDataset(ctx, a.ID))
		_, err = s.GetDataset(ctx, a.ID)
		assert.ErrorIs(t, err, ErrDatasetNotFound)
		assert.ErrorIs(t, s.DeleteDataset(ctx, a.ID), ErrDatasetNotFound)
		_, err = s.LoadRecords(ctx, a.ID)
		assert.ErrorIs(t, err, ErrDatasetNotFound)
	})

	t.Run("replace records", func(t *testing.T) {
		s := newStore(t)
		ds, err := s.EnsureDataset(ctx, "Main")
		require.NoError(t, err)

		_, err = s.InsertRecord(ctx, ds.ID, schema.Record{Supplier: "Old", Product: "Thing"})
		require.NoError(t, err)

		n, err := s.ReplaceRecords(ctx, ds.ID, []schema.Record{
			{Supplier: "Acme", Product: "Bolts", Details: "d"},
			{Supplier: "Beta", Product: "Nuts", LoginInfo: "user: x"},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		recs, err := s.LoadRecords(ctx, ds.ID)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "Acme", recs[0].Supplier)
		assert.Equal(t, "user: x", recs[1].LoginInfo)
		assert.Less(t, recs[0].ID, recs[1].ID)

		n, err = s.ReplaceRecords(ctx, ds.ID, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		count, err := s.CountRecords(ctx, ds.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("records are scoped to their dataset", func(t *testing.T) {
		s := newStore(t)
		a, err := s.EnsureDataset(ctx, "A")
		require.NoError(t, err)
		b, err := s.EnsureDataset(ctx, "B")
		require.NoError(t, err)

		ra, err := s.InsertRecord(ctx, a.ID, schema.Record{Supplier: "Acme", Product: "Bolts"})
		require.NoError(t, err)
		rb, err := s.InsertRecord(ctx, b.ID, schema.Record{Supplier: "Beta", Product: "Nuts"})
		require.NoError(t, err)

		n, err := s.DeleteRecords(ctx, a.ID, []int64{ra.ID, rb.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		left, err := s.LoadRecords(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, rb.ID, left[0].ID)

		rb.Supplier = "Moved"
		_, err = s.UpdateRecord(ctx, a.ID, rb)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("update record", func(t *testing.T) {
		s := newStore(t)
		ds, err := s.EnsureDataset(ctx, "Main")
		require.NoError(t, err)
		rec, err := s.InsertRecord(ctx, ds.ID, schema.Record{Supplier: "Acme", Product: "Bolts"})
		require.NoError(t, err)

		rec.Phone = "555"
		_, err = s.UpdateRecord(ctx, ds.ID, rec)
		require.NoError(t, err)

		recs, err := s.LoadRecords(ctx, ds.ID)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "555", recs[0].Phone)
	})

	t.Run("missing dataset", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertRecord(ctx, 999, schema.Record{Supplier: "a", Product: "b"})
		assert.ErrorIs(t, err, ErrDatasetNotFound)
		_, err = s.ReplaceRecords(ctx, 999, nil)
		assert.ErrorIs(t, err, ErrDatasetNotFound)
		_, err = s.CountRecords(ctx, 999)
		assert.ErrorIs(t, err, ErrDatasetNotFound)
		_, err = s.RenameDataset(ctx, 999, "x")
		assert.ErrorIs(t, err, ErrDatasetNotFound)
	})
}

func TestMemory(t *testing.T) {
	testStore(t, func(t *testing.T) Store { return NewMemory() })
}

func TestMemoryCopiesRecords(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	ds, err := m.EnsureDataset(ctx, "Main")
	require.NoError(t, err)
	_, err = m.InsertRecord(ctx, ds.ID, schema.Record{Supplier: "Acme", Product: "Bolts"})
	require.NoError(t, err)

	recs, err := m.LoadRecords(ctx, ds.ID)
	require.NoError(t, err)
	recs[0].Supplier = "Mutated"

	again, err := m.LoadRecords(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", again[0].Supplier)
}

// TestPostgres runs against a disposable database named by
// SUPPLIERDB_TEST_DATABASE_URL. Tables are dropped before each subtest.
func TestPostgres(t *testing.T) {
	url := os.Getenv("SUPPLIERDB_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SUPPLIERDB_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	testStore(t, func(t *testing.T) Store {
		p, err := Open(ctx, url, PoolOptions{MaxConns: 4})
		require.NoError(t, err)
		t.Cleanup(p.Close)

		for _, stmt := range []string{`DROP TABLE IF EXISTS records`, `DROP TABLE IF EXISTS datasets`} {
			_, err = p.pool.Exec(ctx, stmt)
			require.NoError(t, err)
		}
		require.NoError(t, p.Migrate(ctx))
		return p
	})
}
