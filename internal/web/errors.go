package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err); the status comes from statusFor
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for API clients, HTML otherwise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/export"
	"github.com/JonMunkholm/supplierdb/internal/ingest"
	"github.com/JonMunkholm/supplierdb/internal/logging"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/store"
	"github.com/JonMunkholm/supplierdb/internal/web/templates"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// invalidRequest wraps a parse failure so it maps to 400.
func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	var (
		mapErr *mapping.MappingError
		valErr *core.ValidationError
	)
	switch {
	case errors.As(err, &mapErr), errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrDatasetNotFound),
		errors.Is(err, store.ErrRecordNotFound),
		errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrInvalidRequest),
		errors.Is(err, core.ErrConfirmationRequired),
		errors.Is(err, core.ErrNoRecordsSelected),
		errors.Is(err, core.ErrDatasetNameRequired),
		errors.Is(err, core.ErrInvalidMode),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, mapping.ErrColumnNotFound),
		errors.Is(err, schema.ErrUnknownField),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, ingest.ErrEmptyFile),
		errors.Is(err, ingest.ErrNoHeader),
		errors.Is(err, ingest.ErrSheetNotFound):
		return http.StatusBadRequest
	}
	if core.IsUserFacing(err) && !errors.Is(err, context.Canceled) {
		// Remaining catalogued messages describe bad file contents.
		if code := core.MapError(err).Code; strings.HasPrefix(code, "FILE") {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondStatus(w, r, err, statusFor(err))
}

// respondStatus logs the technical error server-side and writes the user
// message as JSON or HTML depending on the request.
func respondStatus(w http.ResponseWriter, r *http.Request, err error, status int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
		return
	}
	respondErrorHTML(w, r, userMsg, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
