package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/supplierdb/internal/ingest"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/store"
)

var (
	ErrSessionNotFound = errors.New("import session not found")
	ErrInvalidMode     = errors.New("invalid import mode")
	ErrNoFile          = errors.New("no file provided")
)

// ImportMode selects where a commit writes.
type ImportMode string

const (
	// ModeOverwrite replaces the records of an existing dataset.
	ModeOverwrite ImportMode = "overwrite"
	// ModeNew writes into a dataset named by the request.
	ModeNew ImportMode = "new"
)

// ParseImportMode accepts "overwrite" or "new".
func ParseImportMode(s string) (ImportMode, error) {
	switch m := ImportMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOverwrite, ModeNew:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ImportSession is an uploaded file waiting for its mapping to be confirmed.
type ImportSession struct {
	ID         string          `json:"id"`
	FileName   string          `json:"fileName"`
	Columns    []string        `json:"columns"`
	Options    []string        `json:"options"`
	Collisions []string        `json:"collisions,omitempty"`
	Inferred   mapping.Mapping `json:"inferred"`
	Rows       int             `json:"rows"`
	CreatedAt  time.Time       `json:"createdAt"`
	ExpiresAt  time.Time       `json:"expiresAt"`

	inference *mapping.Inference
}

// Preview is the standardized view of a session under a mapping.
type Preview struct {
	ImportID string          `json:"importId"`
	Mapping  mapping.Mapping `json:"mapping"`
	Ready    bool            `json:"ready"`
	Missing  []schema.Field  `json:"missing,omitempty"`
	Message  string          `json:"message,omitempty"`
	Records  []schema.Record `json:"records"`
	Warnings []string        `json:"warnings,omitempty"`

	InputRows   int `json:"inputRows"`
	ValidRows   int `json:"validRows"`
	DroppedRows int `json:"droppedRows"`
}

// CommitRequest describes where and how to save an import.
type CommitRequest struct {
	Mode      ImportMode      `json:"mode"`
	DatasetID int64           `json:"datasetId,omitempty"`
	NewName   string          `json:"newName,omitempty"`
	Override  mapping.Mapping `json:"mapping,omitempty"`
	Confirm   bool            `json:"confirm"`
}

// CommitResult reports a successful import.
type CommitResult struct {
	Dataset     store.Dataset `json:"dataset"`
	Mode        ImportMode    `json:"mode"`
	Created     bool          `json:"created"`
	Written     int64         `json:"written"`
	DroppedRows int           `json:"droppedRows"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// BeginImport parses an upload and infers its mapping. size is the declared
// length, or -1 when unknown. The session lives until committed, discarded
// or idle for the session TTL.
func (s *Service) BeginImport(ctx context.Context, fileName string, r io.Reader, size int64) (*ImportSession, error) {
	return s.BeginImportSheet(ctx, fileName, "", r, size)
}

// BeginImportSheet is BeginImport reading the named worksheet of a workbook.
// An empty sheet means the first one; delimited files ignore it.
func (s *Service) BeginImportSheet(ctx context.Context, fileName, sheet string, r io.Reader, size int64) (*ImportSession, error) {
	if r == nil || strings.TrimSpace(fileName) == "" {
		return nil, ErrNoFile
	}
	if size > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ingest.ErrFileTooLarge, size)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	raw, err := ingest.Parse(fileName, r, ingest.Options{Sheet: sheet, MaxBytes: s.opts.MaxUploadBytes})
	if err != nil {
		return nil, err
	}
	inf := s.engine.Infer(raw)

	now := s.now()
	sess := &ImportSession{
		ID:         uuid.NewString(),
		FileName:   fileName,
		Columns:    inf.Table.Columns,
		Options:    inf.Options(),
		Collisions: inf.Collisions,
		Inferred:   inf.Inferred,
		Rows:       inf.Table.Len(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.opts.SessionTTL),
		inference:  inf,
	}
	s.sessions.put(sess)

	opLogger(ctx, "import_id", sess.ID, "file", fileName).Info("import started",
		"columns", len(sess.Columns),
		"rows", sess.Rows,
		"collisions", len(sess.Collisions),
	)
	return sess, nil
}

// GetImport returns a live session.
func (s *Service) GetImport(_ context.Context, id string) (*ImportSession, error) {
	sess, ok := s.sessions.get(id, s.now(), s.opts.SessionTTL)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// DiscardImport drops a session.
func (s *Service) DiscardImport(ctx context.Context, id string) error {
	if !s.sessions.remove(id) {
		return ErrSessionNotFound
	}
	opLogger(ctx, "import_id", id).Info("import discarded")
	return nil
}

// Warnings describes data the mapping silently loses or reuses.
func Warnings(res *mapping.Result) []string {
	var out []string
	for _, c := range res.Collisions {
		out = append(out, fmt.Sprintf("duplicate column %q ignored; the first occurrence is used", c))
	}
	for _, c := range res.Shared {
		out = append(out, fmt.Sprintf("column %q is mapped to more than one field", c))
	}
	if d := res.Dropped(); d > 0 && res.Records != nil {
		out = append(out, fmt.Sprintf("%d row(s) without Supplier or Product will be skipped", d))
	}
	return out
}

// PreviewImport standardizes the session under the inferred mapping with
// override applied on top. An incomplete mapping is not an error: the
// preview comes back with Ready unset and Missing listing the fields.
func (s *Service) PreviewImport(ctx context.Context, id string, override mapping.Mapping) (*Preview, error) {
	sess, err := s.GetImport(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Apply(sess.inference, override)
	p := &Preview{
		ImportID:  sess.ID,
		Mapping:   res.Mapping,
		InputRows: res.InputRows,
		Records:   []schema.Record{},
	}

	var mapErr *mapping.MappingError
	switch {
	case errors.As(err, &mapErr):
		p.Missing = mapErr.Missing
		p.Message = MapError(err).Message
		p.Warnings = Warnings(res)
		return p, nil
	case err != nil:
		return nil, err
	}

	p.Ready = true
	p.ValidRows = len(res.Records)
	p.DroppedRows = res.Dropped()
	p.Warnings = Warnings(res)
	n := min(s.opts.PreviewRows, len(res.Records))
	p.Records = res.Records[:n]
	return p, nil
}

// CommitImport writes the session's records into a dataset and ends the
// session.
//
// ModeOverwrite replaces req.DatasetID and needs req.Confirm. ModeNew
// creates req.NewName; if that name is taken the existing dataset is
// replaced, which also needs req.Confirm.
func (s *Service) CommitImport(ctx context.Context, id string, req CommitRequest) (*CommitResult, error) {
	sess, err := s.GetImport(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ParseImportMode(string(req.Mode)); err != nil {
		return nil, err
	}

	res, err := s.engine.Apply(sess.inference, req.Override)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ds, created, err := s.commitTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	n, err := s.store.ReplaceRecords(ctx, ds.ID, res.Records)
	if err != nil {
		return nil, fmt.Errorf("save import: %w", err)
	}
	s.sessions.remove(sess.ID)

	opLogger(ctx, "import_id", sess.ID, "dataset_id", ds.ID).Info("import committed",
		"mode", req.Mode,
		"created", created,
		"written", n,
		"dropped", res.Dropped(),
	)
	return &CommitResult{
		Dataset:     ds,
		Mode:        req.Mode,
		Created:     created,
		Written:     n,
		DroppedRows: res.Dropped(),
		Warnings:    Warnings(res),
	}, nil
}

// commitTarget resolves the destination dataset for req.
func (s *Service) commitTarget(ctx context.Context, req CommitRequest) (store.Dataset, bool, error) {
	if req.Mode == ModeOverwrite {
		ds, err := s.store.GetDataset(ctx, req.DatasetID)
		if err != nil {
			return store.Dataset{}, false, err
		}
		if !req.Confirm {
			return store.Dataset{}, false, fmt.Errorf("%w: overwriting %q is permanent", ErrConfirmationRequired, ds.Name)
		}
		return ds, false, nil
	}

	name, err := cleanName(req.NewName)
	if err != nil {
		return store.Dataset{}, false, err
	}
	ds, err := s.store.CreateDataset(ctx, name)
	if err == nil {
		return ds, true, nil
	}
	if !errors.Is(err, store.ErrDuplicateName) {
		return store.Dataset{}, false, err
	}
	if !req.Confirm {
		return store.Dataset{}, false, fmt.Errorf("%w: %q already exists and will be replaced", ErrConfirmationRequired, name)
	}
	ds, err = s.store.EnsureDataset(ctx, name)
	return ds, false, err
}
