package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

// Postgres error codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// PoolOptions tunes the connection pool. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Open connects to url and verifies the connection.
func Open(ctx context.Context, url string, opts PoolOptions) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		cfg.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return NewPostgres(pool), nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS datasets (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS records (
		id SERIAL PRIMARY KEY,
		dataset_id INTEGER NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		supplier TEXT NOT NULL,
		product TEXT NOT NULL,
		details TEXT,
		website TEXT,
		phone TEXT,
		login_info TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_dataset ON records(dataset_id)`,
}

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range migrations {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Postgres) Close() { p.pool.Close() }

// mapPgError translates constraint violations into store errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateName
		case pgForeignKeyViolation:
			return ErrDatasetNotFound
		}
	}
	return err
}

const datasetCols = `id, name, COALESCE(created_at, NOW())`

func scanDataset(row pgx.Row) (Dataset, error) {
	var ds Dataset
	err := row.Scan(&ds.ID, &ds.Name, &ds.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dataset{}, ErrDatasetNotFound
	}
	return ds, err
}

func (p *Postgres) EnsureDataset(ctx context.Context, name string) (Dataset, error) {
	ds, err := scanDataset(p.pool.QueryRow(ctx,
		`SELECT `+datasetCols+` FROM datasets WHERE name = $1`, name))
	if err == nil || !errors.Is(err, ErrDatasetNotFound) {
		return ds, err
	}

	// Concurrent creators converge on the same row.
	return scanDataset(p.pool.QueryRow(ctx, `
		INSERT INTO datasets (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+datasetCols, name))
}

func (p *Postgres) CreateDataset(ctx context.Context, name string) (Dataset, error) {
	ds, err := scanDataset(p.pool.QueryRow(ctx,
		`INSERT INTO datasets (name) VALUES ($1) RETURNING `+datasetCols, name))
	if err != nil {
		return Dataset{}, mapPgError(err)
	}
	return ds, nil
}

func (p *Postgres) ListDatasets(ctx context.Context) ([]Dataset, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+datasetCols+` FROM datasets ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Dataset, error) {
		return scanDataset(row)
	})
}

func (p *Postgres) GetDataset(ctx context.Context, id int64) (Dataset, error) {
	return scanDataset(p.pool.QueryRow(ctx,
		`SELECT `+datasetCols+` FROM datasets WHERE id = $1`, id))
}

func (p *Postgres) RenameDataset(ctx context.Context, id int64, name string) (Dataset, error) {
	ds, err := scanDataset(p.pool.QueryRow(ctx,
		`UPDATE datasets SET name = $2 WHERE id = $1 RETURNING `+datasetCols, id, name))
	if err != nil {
		return Dataset{}, mapPgError(err)
	}
	return ds, nil
}

func (p *Postgres) DeleteDataset(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDatasetNotFound
	}
	return nil
}

// lockDataset verifies the dataset exists, locking its row inside tx.
func lockDataset(ctx context.Context, db DBTX, id int64) error {
	var one int
	err := db.QueryRow(ctx, `SELECT 1 FROM datasets WHERE id = $1 FOR UPDATE`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDatasetNotFound
	}
	return err
}

func datasetExists(ctx context.Context, db DBTX, id int64) error {
	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM datasets WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrDatasetNotFound
	}
	return nil
}

var recordCopyColumns = []string{"dataset_id", "supplier", "product", "details", "website", "phone", "login_info"}

func (p *Postgres) ReplaceRecords(ctx context.Context, datasetID int64, recs []schema.Record) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockDataset(ctx, tx, datasetID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM records WHERE dataset_id = $1`, datasetID); err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"records"},
		recordCopyColumns,
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			r := recs[i]
			return []any{datasetID, r.Supplier, r.Product, r.Details, r.Website, r.Phone, r.LoginInfo}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (p *Postgres) InsertRecord(ctx context.Context, datasetID int64, rec schema.Record) (schema.Record, error) {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO records (dataset_id, supplier, product, details, website, phone, login_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		datasetID, rec.Supplier, rec.Product, rec.Details, rec.Website, rec.Phone, rec.LoginInfo,
	).Scan(&rec.ID)
	if err != nil {
		return schema.Record{}, mapPgError(err)
	}
	return rec, nil
}

func (p *Postgres) UpdateRecord(ctx context.Context, datasetID int64, rec schema.Record) (schema.Record, error) {
	tag, err := p.pool.Exec(ctx, `
		UPDATE records
		SET supplier = $3, product = $4, details = $5, website = $6, phone = $7, login_info = $8
		WHERE dataset_id = $1 AND id = $2`,
		datasetID, rec.ID, rec.Supplier, rec.Product, rec.Details, rec.Website, rec.Phone, rec.LoginInfo,
	)
	if err != nil {
		return schema.Record{}, fmt.Errorf("update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if err := datasetExists(ctx, p.pool, datasetID); err != nil {
			return schema.Record{}, err
		}
		return schema.Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (p *Postgres) DeleteRecords(ctx context.Context, datasetID int64, ids []int64) (int64, error) {
	if err := datasetExists(ctx, p.pool, datasetID); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM records WHERE dataset_id = $1 AND id = ANY($2)`, datasetID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) LoadRecords(ctx context.Context, datasetID int64) ([]schema.Record, error) {
	if err := datasetExists(ctx, p.pool, datasetID); err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, `
		SELECT id, supplier, product,
		       COALESCE(details, ''), COALESCE(website, ''), COALESCE(phone, ''), COALESCE(login_info, '')
		FROM records
		WHERE dataset_id = $1
		ORDER BY id`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (schema.Record, error) {
		var r schema.Record
		err := row.Scan(&r.ID, &r.Supplier, &r.Product, &r.Details, &r.Website, &r.Phone, &r.LoginInfo)
		return r, err
	})
}

func (p *Postgres) CountRecords(ctx context.Context, datasetID int64) (int64, error) {
	if err := datasetExists(ctx, p.pool, datasetID); err != nil {
		return 0, err
	}
	var n int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM records WHERE dataset_id = $1`, datasetID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
