package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/supplierdb/internal/ingest"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/store"
)

const (
	DefaultPreviewRows   = 50
	DefaultSessionTTL    = 30 * time.Minute
	DefaultDatasetName   = "Main"
	DefaultSweepInterval = time.Minute
)

// Options configures a Service. Zero values fall back to the defaults above.
type Options struct {
	MaxUploadBytes       int64
	PreviewRows          int
	SessionTTL           time.Duration
	MaxConcurrentImports int
	ImportWait           time.Duration
	DefaultDatasetName   string
}

func (o Options) withDefaults() Options {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = ingest.DefaultMaxBytes
	}
	if o.PreviewRows <= 0 {
		o.PreviewRows = DefaultPreviewRows
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.DefaultDatasetName == "" {
		o.DefaultDatasetName = DefaultDatasetName
	}
	return o
}

// Service holds the supplier database operations used by the web and CLI
// front ends.
type Service struct {
	store    store.Store
	engine   *mapping.Engine
	limiter  *ImportLimiter
	sessions *sessionStore
	opts     Options
	now      func() time.Time
}

// NewService wires a Service over st.
func NewService(st store.Store, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		store:    st,
		engine:   mapping.NewEngine(),
		limiter:  NewImportLimiter(opts.MaxConcurrentImports, opts.ImportWait),
		sessions: newSessionStore(),
		opts:     opts,
		now:      time.Now,
	}
}

// Options returns the effective options.
func (s *Service) Options() Options { return s.opts }

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ImportStatus reports limiter usage.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until no import holds a slot. Used on shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// FieldInfo describes one canonical field for clients building a mapping UI.
type FieldInfo struct {
	Key      schema.Field `json:"key"`
	Label    string       `json:"label"`
	Required bool         `json:"required"`
	Aliases  []string     `json:"aliases"`
}

// SchemaInfo is the canonical layout plus the alias table.
type SchemaInfo struct {
	Fields        []FieldInfo `json:"fields"`
	RecordIDLabel string      `json:"recordIdLabel"`
	NotMapped     string      `json:"notMapped"`
}

// Schema returns the canonical fields in order.
func (s *Service) Schema() SchemaInfo {
	info := SchemaInfo{RecordIDLabel: schema.RecordIDLabel, NotMapped: mapping.NotMapped}
	for _, spec := range schema.SupplierFieldSpecs {
		info.Fields = append(info.Fields, FieldInfo{
			Key:      spec.Field,
			Label:    spec.Label,
			Required: spec.Required,
			Aliases:  s.engine.Aliases.For(spec.Field),
		})
	}
	return info
}
