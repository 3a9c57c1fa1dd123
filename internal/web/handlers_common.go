package web

// This file contains shared request parsing helpers used across handlers.

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody caps JSON request bodies; uploads have their own limit.
const maxJSONBody = 1 << 20

// parseIDParam parses a positive integer URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, invalidRequest("%s %q is not a valid id", name, raw)
	}
	return id, nil
}

// parseFields reads the search scope from repeated or comma-separated
// "fields" values. Empty means every field.
func parseFields(values []string) ([]schema.Field, error) {
	var out []schema.Field
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			f, err := schema.ParseField(part)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// parseIDs converts form values to record ids.
func parseIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, invalidRequest("record id %q is not a number", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// isTrue accepts the usual checkbox and query spellings.
func isTrue(s string) bool {
	s = strings.TrimSpace(s)
	if s == "on" {
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalidRequest("request body is empty")
		}
		return invalidRequest("invalid request body: %v", err)
	}
	return nil
}

// mappingChoices collects "map_<field>" form values into the shape
// mapping.ParseOverride expects.
func mappingChoices(form url.Values) map[string]string {
	choices := make(map[string]string)
	for key, values := range form {
		if field, ok := strings.CutPrefix(key, templates.MapParamPrefix); ok && len(values) > 0 {
			choices[field] = values[0]
		}
	}
	return choices
}

// recordFromForm reads the add-record form.
func recordFromForm(form url.Values) schema.Record {
	var rec schema.Record
	for _, f := range schema.CanonicalOrder {
		rec.Set(f, form.Get(string(f)))
	}
	return rec
}

// redirect sends the browser to target after a form post.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
