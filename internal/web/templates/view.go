// Package templates renders the HTML pages of the supplier database UI.
//
// Pages are written as templ components in the .templ files; the matching
// _templ.go files are generated with `templ generate`. This file holds the
// view models and the small helpers the templates call.
package templates

import (
	"net/url"
	"slices"
	"strconv"

	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/store"
)

// MapParamPrefix prefixes the form keys that carry a mapping choice
// ("map_supplier").
const MapParamPrefix = "map_"

// DashboardData is everything the dashboard shows for one dataset.
type DashboardData struct {
	Datasets []store.Dataset
	Current  store.Dataset
	Query    string
	Fields   []schema.Field // search scope; empty means all fields
	Records  []schema.Record
	Total    int // records in the dataset before filtering
	Notice   string
}

func datasetURL(id int64) string {
	return "/?dataset=" + strconv.FormatInt(id, 10)
}

func (d DashboardData) base() string {
	return "/datasets/" + strconv.FormatInt(d.Current.ID, 10)
}

// exportURL keeps the active search so the download matches the table.
func (d DashboardData) exportURL(format string) string {
	q := url.Values{"format": {format}}
	if d.Query != "" {
		q.Set("q", d.Query)
		for _, f := range d.Fields {
			q.Add("fields", string(f))
		}
	}
	return d.base() + "/export?" + q.Encode()
}

func (d DashboardData) searches(f schema.Field) bool {
	return slices.Contains(d.Fields, f)
}

// ImportPageData drives the mapping and preview page of one import.
type ImportPageData struct {
	Session  *core.ImportSession
	Preview  *core.Preview
	Datasets []store.Dataset
	Current  int64 // dataset preselected for overwrite
}

func (d ImportPageData) base() string {
	return "/imports/" + d.Session.ID
}

func (d ImportPageData) shape() string {
	return strconv.Itoa(d.Session.Rows) + " rows, " + strconv.Itoa(len(d.Session.Columns)) + " columns"
}

// choice is the option selected for f: its mapped column or NotMapped.
func (d ImportPageData) choice(f schema.Field) string {
	if v := d.Preview.Mapping.Get(f); v != "" {
		return v
	}
	return mapping.NotMapped
}

// fieldLabel marks required fields with an asterisk.
func fieldLabel(spec schema.FieldSpec) string {
	if spec.Required {
		return spec.Label + " *"
	}
	return spec.Label
}

// countOf formats "n of total <noun>".
func countOf(n, total int, noun string) string {
	return strconv.Itoa(n) + " of " + strconv.Itoa(total) + " " + noun
}
