package templates

import (
	"bytes"
	"testing"

	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/store"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(t.Context(), &buf))
	return buf.String()
}

func TestErrorPage(t *testing.T) {
	out := render(t, ErrorPage(`Dataset "<x>" not found`, "Pick another dataset.", "DS001"))

	assert.Contains(t, out, "<title>Error | Supplier Database</title>")
	assert.Contains(t, out, `<main><div class="content"><div class="alert" role="alert">`)
	assert.Contains(t, out, "Dataset &#34;&lt;x&gt;&#34; not found")
	assert.Contains(t, out, "<div>Pick another dataset.</div>")
	assert.Contains(t, out, "Reference: DS001")
	assert.Contains(t, out, "</main></body></html>")
}

func TestErrorAlert_OmitsEmptyParts(t *testing.T) {
	out := render(t, ErrorAlert("Something failed", "", ""))
	assert.Equal(t, `<div class="alert" role="alert"><strong>Something failed</strong></div>`, out)
}

func TestDashboard(t *testing.T) {
	d := DashboardData{
		Datasets: []store.Dataset{{ID: 1, Name: "Main"}, {ID: 3, Name: "Q3 <draft>"}},
		Current:  store.Dataset{ID: 3, Name: "Q3 <draft>"},
		Query:    "glob",
		Fields:   []schema.Field{schema.FieldProduct},
		Records:  []schema.Record{{ID: 7, Supplier: "Globex", Product: "Gadgets"}},
		Total:    4,
		Notice:   "Saved 1 records",
	}
	out := render(t, Dashboard(d))

	assert.Contains(t, out, "<h2>Q3 &lt;draft&gt;</h2>")
	assert.Contains(t, out, `<a href="/?dataset=3" class="current">Q3 &lt;draft&gt;</a>`)
	assert.Contains(t, out, `<a href="/?dataset=1">Main</a>`)
	assert.Contains(t, out, `<div class="alert warn">Saved 1 records</div>`)
	assert.Contains(t, out, `value="product" checked>`)
	assert.Contains(t, out, `value="supplier">`)
	assert.Contains(t, out, `href="/datasets/3/export?fields=product&amp;format=csv&amp;q=glob"`)
	assert.Contains(t, out, "1 of 4 records")
	assert.Contains(t, out, `<input type="checkbox" name="ids" value="7">`)
	assert.Contains(t, out, `action="/datasets/3/records/delete"`)
	assert.Contains(t, out, `<input name="supplier" required>`)
	assert.Contains(t, out, `<textarea rows="3" name="details"></textarea>`)
}

func TestDashboard_Empty(t *testing.T) {
	out := render(t, Dashboard(DashboardData{Current: store.Dataset{ID: 1, Name: "Main"}}))

	assert.Contains(t, out, "<p>No records.</p>")
	assert.NotContains(t, out, "Delete selected")
	assert.NotContains(t, out, `class="alert warn"`)
	assert.Contains(t, out, `href="/datasets/1/export?format=xlsx"`)
}

func importPage(ready bool) ImportPageData {
	m := mapping.Mapping{schema.FieldSupplier: "vendor"}
	if ready {
		m[schema.FieldProduct] = "item"
	}
	return ImportPageData{
		Session: &core.ImportSession{
			ID:       "abc",
			FileName: "vendors.csv",
			Columns:  []string{"vendor", "item"},
			Options:  []string{mapping.NotMapped, "vendor", "item"},
			Rows:     3,
		},
		Preview: &core.Preview{
			Mapping:   m,
			Ready:     ready,
			Message:   "required mapping missing: Product must be mapped",
			Records:   []schema.Record{{Supplier: "Acme", Product: "Anvils"}},
			Warnings:  []string{"1 row(s) without Supplier or Product will be skipped"},
			InputRows: 3,
			ValidRows: 2,
		},
		Datasets: []store.Dataset{{ID: 1, Name: "Main"}, {ID: 2, Name: "Q3"}},
		Current:  2,
	}
}

func TestImportPage_Ready(t *testing.T) {
	out := render(t, ImportPage(importPage(true)))

	assert.Contains(t, out, "<title>Import vendors.csv | Supplier Database</title>")
	assert.Contains(t, out, "3 rows, 2 columns")
	assert.Contains(t, out, `<select name="map_supplier"><option value="(not mapped)">(not mapped)</option><option value="vendor" selected>`)
	assert.Contains(t, out, `<select name="map_details"><option value="(not mapped)" selected>`)
	assert.Contains(t, out, "2 of 3 rows will be saved")
	assert.Contains(t, out, `<div class="alert warn">1 row(s) without Supplier or Product will be skipped</div>`)
	assert.Contains(t, out, `<input type="hidden" name="map_product" value="item">`)
	assert.Contains(t, out, `<input type="hidden" name="map_phone" value="(not mapped)">`)
	assert.Contains(t, out, `<option value="2" selected>Q3</option>`)
	assert.Contains(t, out, `action="/imports/abc/commit"`)
	assert.Contains(t, out, `action="/imports/abc/discard"`)
	assert.NotContains(t, out, "MAP001")
}

func TestImportPage_NotReady(t *testing.T) {
	out := render(t, ImportPage(importPage(false)))

	assert.Contains(t, out, "MAP001")
	assert.Contains(t, out, "Product must be mapped")
	assert.NotContains(t, out, "Save records")
	assert.NotContains(t, out, "rows will be saved")
	assert.Contains(t, out, "<td>Acme</td>")
}
