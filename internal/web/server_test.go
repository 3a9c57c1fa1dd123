package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JonMunkholm/supplierdb/internal/config"
	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const supplierCSV = "Vendor,Item,Web Site,Notes\n" +
	"Acme,Anvils,acme.example,fragile\n" +
	"Globex,,globex.example,\n" +
	"Initech,Staplers,,red ones\n"

type testEnv map[string]string

func newTestServer(t *testing.T, env testEnv, opts core.Options) (*Server, *core.Service) {
	t.Helper()
	vars := map[string]string{"STORE_BACKEND": "memory"}
	for k, v := range env {
		vars[k] = v
	}
	cfg, err := config.LoadFrom(func(k string) string { return vars[k] })
	require.NoError(t, err)

	svc := core.NewService(store.NewMemory(), opts)
	srv := NewServer(svc, cfg)
	t.Cleanup(func() { srv.Shutdown(t.Context()) })
	return srv, svc
}

func do(t *testing.T, srv *Server, method, target string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, srv *Server, method, target string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return do(t, srv, method, target, body, "Content-Type", "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, rec).Code
}

func multipartBody(t *testing.T, field, name, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("other", "value"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, srv *Server, target, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, "file", name, content)
	return do(t, srv, http.MethodPost, target, body, "Content-Type", ct)
}

func TestHealthAndSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, nil, core.Options{})

	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestSecurityHeaders_CSPDisabled(t *testing.T) {
	srv, _ := newTestServer(t, testEnv{"SECURITY_ENABLE_CSP": "false"}, core.Options{})
	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestSchema(t *testing.T) {
	srv, _ := newTestServer(t, nil, core.Options{})

	rec := do(t, srv, http.MethodGet, "/api/schema", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[core.SchemaInfo](t, rec)
	require.Len(t, info.Fields, len(schema.CanonicalOrder))
	assert.Equal(t, schema.FieldSupplier, info.Fields[0].Key)
	assert.True(t, info.Fields[0].Required)
	assert.Equal(t, "Login Info", info.Fields[5].Label)
	assert.Equal(t, schema.RecordIDLabel, info.RecordIDLabel)
}

func TestDatasets_API(t *testing.T) {
	srv, _ := newTestServer(t, nil, core.Options{})

	rec := doJSON(t, srv, http.MethodPost, "/api/datasets", map[string]string{"name": "  Vendors  "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ds := decode[store.Dataset](t, rec)
	assert.Equal(t, "Vendors", ds.Name)
	base := fmt.Sprintf("/api/datasets/%d", ds.ID)

	rec = doJSON(t, srv, http.MethodPost, "/api/datasets", map[string]string{"name": "Vendors"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DS002", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPost, "/api/datasets", map[string]string{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DS003", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPatch, base, map[string]string{"name": "Suppliers"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Suppliers", decode[store.Dataset](t, rec).Name)

	rec = do(t, srv, http.MethodGet, "/api/datasets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]store.Dataset](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Suppliers", list[0].Name)

	rec = do(t, srv, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REC003", errorCode(t, rec))

	rec = do(t, srv, http.MethodDelete, base+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DS001", errorCode(t, rec))
}

func TestDatasets_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil, core.Options{})

	rec := do(t, srv, http.MethodGet, "/api/datasets/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ001", errorCode(t, rec))

	rec = do(t, srv, http.MethodPost, "/api/datasets", strings.NewReader("{not json"), "Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ001", errorCode(t, rec))
}

func TestRecords_API(t *testing.T) {
	srv, svc := newTestServer(t, nil, core.Options{})
	ds, err := svc.CreateDataset(t.Context(), "Vendors")
	require.NoError(t, err)
	base := fmt.Sprintf("/api/datasets/%d/records", ds.ID)

	rec := doJSON(t, srv, http.MethodPost, base, schema.Record{Supplier: "Acme", Product: "Anvils", Phone: "555"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	acme := decode[schema.Record](t, rec)
	assert.NotZero(t, acme.ID)

	rec = doJSON(t, srv, http.MethodPost, base, schema.Record{Supplier: "Globex"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "REC002", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPost, base, schema.Record{Supplier: "Initech", Product: "Staplers"})
	require.Equal(t, http.StatusCreated, rec.Code)
	initech := decode[schema.Record](t, rec)

	rec = do(t, srv, http.MethodGet, base+"?q=anv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[recordsResponse](t, rec)
	require.Equal(t, 1, found.Count)
	assert.Equal(t, "Acme", found.Records[0].Supplier)

	rec = do(t, srv, http.MethodGet, base+"?q=anv&fields=supplier,phone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[recordsResponse](t, rec).Count)

	rec = do(t, srv, http.MethodGet, base+"?fields=colour", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MAP003", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPut, fmt.Sprintf("%s/%d", base, acme.ID), schema.Record{Supplier: "Acme Corp", Product: "Anvils"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Acme Corp", decode[schema.Record](t, rec).Supplier)

	rec = doJSON(t, srv, http.MethodPut, base+"/9999", schema.Record{Supplier: "X", Product: "Y"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "REC001", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPost, base+"/delete", deleteRecordsRequest{IDs: []int64{initech.ID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REC003", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPost, base+"/delete", deleteRecordsRequest{Confirm: true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REC004", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPost, base+"/delete", deleteRecordsRequest{IDs: []int64{initech.ID}, Confirm: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, base, nil)
	assert.Equal(t, 1, decode[recordsResponse](t, rec).Count)
}

func TestImport_APIFlow(t *testing.T) {
	srv, svc := newTestServer(t, nil, core.Options{})
	target, err := svc.CreateDataset(t.Context(), "Main")
	require.NoError(t, err)

	rec := upload(t, srv, "/api/imports", "suppliers.csv", supplierCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[core.ImportSession](t, rec)
	assert.Equal(t, "suppliers.csv", sess.FileName)
	assert.Equal(t, 3, sess.Rows)
	assert.Equal(t, "vendor", sess.Inferred.Get(schema.FieldSupplier))
	assert.Equal(t, "item", sess.Inferred.Get(schema.FieldProduct))
	base := "/api/imports/" + sess.ID

	rec = do(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[core.Preview](t, rec)
	assert.True(t, p.Ready)
	assert.Equal(t, 2, p.ValidRows)
	assert.Equal(t, 1, p.DroppedRows)

	rec = doJSON(t, srv, http.MethodPost, base+"/preview", previewRequest{Mapping: map[string]string{"supplier": "(not mapped)"}})
	require.Equal(t, http.StatusOK, rec.Code)
	p = decode[core.Preview](t, rec)
	assert.False(t, p.Ready)
	assert.Equal(t, []schema.Field{schema.FieldSupplier}, p.Missing)

	rec = doJSON(t, srv, http.MethodPost, base+"/preview", previewRequest{Mapping: map[string]string{"supplier": "missing column"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MAP002", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPost, base+"/commit", commitRequest{Mode: "overwrite", DatasetID: target.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REC003", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPost, base+"/commit", commitRequest{Mode: "append"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "IMP002", errorCode(t, rec))

	rec = doJSON(t, srv, http.MethodPost, base+"/commit", commitRequest{Mode: "new", NewName: "Q3 Vendors"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[core.CommitResult](t, rec)
	assert.True(t, res.Created)
	assert.EqualValues(t, 2, res.Written)
	assert.Equal(t, "Q3 Vendors", res.Dataset.Name)

	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/api/datasets/%d/records", res.Dataset.ID), nil)
	got := decode[recordsResponse](t, rec)
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "fragile", got.Records[0].Details)

	rec = do(t, srv, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "IMP001", errorCode(t, rec))
}

func TestImport_Discard(t *testing.T) {
	srv, _ := newTestServer(t, nil, core.Options{})

	rec := upload(t, srv, "/api/imports", "s.csv", supplierCSV)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[core.ImportSession](t, rec).ID

	rec = do(t, srv, http.MethodDelete, "/api/imports/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/imports/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImport_UploadErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil, core.Options{MaxUploadBytes: 64})

	body, ct := multipartBody(t, "", "", "")
	rec := do(t, srv, http.MethodPost, "/api/imports", body, "Content-Type", ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE004", errorCode(t, rec))

	rec = upload(t, srv, "/api/imports", "big.csv", supplierCSV+strings.Repeat("x,y,z,w\n", 20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", errorCode(t, rec))

	rec = upload(t, srv, "/api/imports", "notes.pdf", "a,b\n1,2\n")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "FILE006", errorCode(t, rec))

	rec = upload(t, srv, "/api/imports", "empty.csv", "  \n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE005", errorCode(t, rec))
}

func TestExport(t *testing.T) {
	srv, svc := newTestServer(t, nil, core.Options{})
	ds, err := svc.CreateDataset(t.Context(), "Vendors")
	require.NoError(t, err)
	_, err = svc.AddRecord(t.Context(), ds.ID, schema.Record{Supplier: "Acme", Product: "Anvils"})
	require.NoError(t, err)
	_, err = svc.AddRecord(t.Context(), ds.ID, schema.Record{Supplier: "Globex", Product: "Gadgets"})
	require.NoError(t, err)
	base := fmt.Sprintf("/api/datasets/%d/export", ds.ID)

	rec := do(t, srv, http.MethodGet, base+"?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename=Vendors.csv`)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Supplier,Product,Details,Website,Phone,Login Info", strings.TrimSpace(lines[0]))

	rec = do(t, srv, http.MethodGet, base+"?format=csv&q=glob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Vendors_search.csv")
	lines = strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], schema.RecordIDLabel))

	rec = do(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = do(t, srv, http.MethodGet, base+"?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "IMP003", errorCode(t, rec))

	rec = do(t, srv, http.MethodGet, "/api/datasets/999/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// brokenConn is a response writer whose client has gone away.
type brokenConn struct {
	header http.Header
	status int
}

func (b *brokenConn) Header() http.Header       { return b.header }
func (b *brokenConn) WriteHeader(status int)    { b.status = status }
func (b *brokenConn) Write([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

func TestExport_LogsWriteFailure(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv, svc := newTestServer(t, nil, core.Options{})
	ds, err := svc.CreateDataset(t.Context(), "Vendors")
	require.NoError(t, err)
	_, err = svc.AddRecord(t.Context(), ds.ID, schema.Record{Supplier: "Acme", Product: "Anvils"})
	require.NoError(t, err)

	w := &brokenConn{header: http.Header{}}
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/datasets/%d/export?format=csv", ds.ID), nil)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.status)
	assert.Contains(t, logs.String(), "export write failed")
	assert.Contains(t, logs.String(), "connection reset by peer")
}
func TestAPIKeyRequired(t *testing.T) {
	srv, _ := newTestServer(t, testEnv{"REQUIRE_API_KEY": "true", "API_KEYS": "secret"}, core.Options{})

	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/datasets", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodGet, "/api/datasets", nil, "X-API-Key", "wrong").Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/datasets", nil, "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", nil).Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, testEnv{"RATE_LIMIT_REQUESTS_PER_MINUTE": "2"}, core.Options{})

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", nil).Code)

	rec := do(t, srv, http.MethodGet, "/api/schema", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", errorCode(t, rec))
}

func TestRateLimit_Disabled(t *testing.T) {
	srv, _ := newTestServer(t, testEnv{"RATE_LIMIT_ENABLED": "false"}, core.Options{})
	for range 5 {
		assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", nil).Code)
	}
}

func TestDashboard_DefaultDataset(t *testing.T) {
	srv, svc := newTestServer(t, nil, core.Options{DefaultDatasetName: "Main"})

	rec := do(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2>Main</h2>")

	list, err := svc.ListDatasets(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Main", list[0].Name)
}

func TestDashboard_SearchAndEscaping(t *testing.T) {
	srv, svc := newTestServer(t, nil, core.Options{})
	ds, err := svc.CreateDataset(t.Context(), "<b>Vendors</b>")
	require.NoError(t, err)
	_, err = svc.AddRecord(t.Context(), ds.ID, schema.Record{Supplier: "Acme", Product: "<script>alert(1)</script>"})
	require.NoError(t, err)
	_, err = svc.AddRecord(t.Context(), ds.ID, schema.Record{Supplier: "Globex", Product: "Gadgets"})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodGet, fmt.Sprintf("/?dataset=%d&q=globex", ds.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "&lt;b&gt;Vendors&lt;/b&gt;")
	assert.Contains(t, body, "1 of 2 records")
	assert.Contains(t, body, "Globex")
	assert.NotContains(t, body, "Acme")

	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/?dataset=%d", ds.ID), nil)
	assert.NotContains(t, rec.Body.String(), "<script>alert")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestDashboard_UnknownDatasetRendersErrorPage(t *testing.T) {
	srv, _ := newTestServer(t, nil, core.Options{})

	rec := do(t, srv, http.MethodGet, "/?dataset=42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "DS001")
}

func TestForms_ImportFlow(t *testing.T) {
	srv, svc := newTestServer(t, nil, core.Options{})
	mainDS, err := svc.EnsureDefaultDataset(t.Context())
	require.NoError(t, err)
	_, err = svc.AddRecord(t.Context(), mainDS.ID, schema.Record{Supplier: "Old", Product: "Stock"})
	require.NoError(t, err)

	rec := upload(t, srv, "/imports", "suppliers.csv", supplierCSV)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	page := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(page, "/imports/"))

	rec = do(t, srv, http.MethodGet, page, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Column mapping")
	assert.Contains(t, rec.Body.String(), "2 of 3 rows will be saved")

	rec = do(t, srv, http.MethodGet, page+"?map_product="+url.QueryEscape("(not mapped)"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "MAP001")
	assert.NotContains(t, rec.Body.String(), "Save records")

	form := url.Values{
		"mode":        {"overwrite"},
		"dataset":     {fmt.Sprint(mainDS.ID)},
		"confirm":     {"on"},
		"map_details": {"(not mapped)"},
	}
	rec = do(t, srv, http.MethodPost, page+"/commit", strings.NewReader(form.Encode()),
		"Content-Type", "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Location"), "notice=Saved+2+records+to+Main")

	recs, err := svc.LoadRecords(t.Context(), mainDS.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Acme", recs[0].Supplier)
	assert.Equal(t, "web site: acme.example | notes: fragile", recs[0].Details)

	rec = do(t, srv, http.MethodGet, rec.Header().Get("Location"), nil)
	assert.Contains(t, rec.Body.String(), "rows without Supplier or Product skipped")
}

func TestForms_DatasetsAndRecords(t *testing.T) {
	srv, svc := newTestServer(t, nil, core.Options{})
	formPost := func(target string, form url.Values) *httptest.ResponseRecorder {
		return do(t, srv, http.MethodPost, target, strings.NewReader(form.Encode()),
			"Content-Type", "application/x-www-form-urlencoded")
	}

	rec := formPost("/datasets", url.Values{"name": {"Vendors"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	list, err := svc.ListDatasets(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)
	ds := list[0]
	assert.Equal(t, dashboardURL(ds.ID), rec.Header().Get("Location"))
	base := fmt.Sprintf("/datasets/%d", ds.ID)

	rec = formPost(base+"/records", url.Values{"supplier": {"Acme"}, "product": {"Anvils"}, "details": {"heavy\nfragile"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = formPost(base+"/records", url.Values{"supplier": {"Acme"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "REC002")

	recs, err := svc.LoadRecords(t.Context(), ds.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "heavy\nfragile", recs[0].Details)

	rec = formPost(base+"/records/delete", url.Values{"ids": {fmt.Sprint(recs[0].ID)}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = formPost(base+"/records/delete", url.Values{"ids": {fmt.Sprint(recs[0].ID)}, "confirm": {"true"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	recs, err = svc.LoadRecords(t.Context(), ds.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{store.ErrDatasetNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", store.ErrDuplicateName), http.StatusConflict},
		{core.ErrTooManyUploads, http.StatusServiceUnavailable},
		{&core.ValidationError{Missing: []schema.Field{schema.FieldSupplier}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("invalid csv: %w", io.ErrUnexpectedEOF), http.StatusBadRequest},
		{io.ErrClosedPipe, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
