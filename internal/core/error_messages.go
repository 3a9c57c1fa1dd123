package core

// error_messages.go maps technical errors to messages shown to users.
//
// Each message carries a code that users can quote to support. Codes are
// grouped by category:
//
//	MAP001  Supplier and/or Product are not mapped to a column
//	MAP002  A mapping names a column the file does not have
//	MAP003  A mapping names an unknown field
//
//	FILE001 File exceeds the upload size limit
//	FILE002 File is not valid delimited text
//	FILE003 File contains undecodable characters
//	FILE004 No file was attached to the request
//	FILE005 File has no data
//	FILE006 File type is not supported
//	FILE007 No header row was found
//	FILE008 Requested worksheet does not exist
//	FILE009 Workbook could not be opened
//
//	DS001   Dataset not found
//	DS002   Dataset name already exists
//	DS003   Dataset name is empty
//
//	REC001  Record not found in the dataset
//	REC002  Supplier or Product is empty
//	REC003  Destructive action was not confirmed
//	REC004  No records selected
//
//	IMP001  Import session expired or unknown
//	IMP002  Unknown import mode
//	IMP003  Unknown export format
//
//	REQ001  Malformed request parameters or body
//
//	UPL002  Too many uploads in progress
//	UPL004  Request cancelled
//	UPL005  Request timed out
//
//	DB004-DB007 Database connectivity
//	RATE001     Too many requests
//	ERR000      Anything else; check the server log
//
// Typed errors are matched with errors.Is/As first. Messages from outside
// this module (driver errors, wrapped strings) fall back to case-insensitive
// substring patterns, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/export"
	"github.com/JonMunkholm/supplierdb/internal/ingest"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/store"
)

// ErrInvalidRequest marks malformed input from a transport layer: bad ids,
// undecodable bodies.
var ErrInvalidRequest = errors.New("invalid request")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

var (
	msgMappingMissing = UserMessage{
		Message: "You must map Supplier and Product",
		Action:  "Choose a column for each required field",
		Code:    "MAP001",
	}
	msgColumnNotFound = UserMessage{
		Message: "A mapped column does not exist in the file",
		Action:  "Pick one of the detected columns or (not mapped)",
		Code:    "MAP002",
	}
	msgUnknownField = UserMessage{
		Message: "Unknown field in column mapping",
		Action:  "Use supplier, product, details, website, phone or login_info",
		Code:    "MAP003",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma, semicolon or tab separated",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select an Excel or CSV file to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a file with a header row and data rows",
		Code:    "FILE005",
	}
	msgUnsupported = UserMessage{
		Message: "File type is not supported",
		Action:  "Upload an .xlsx, .csv or .tsv file",
		Code:    "FILE006",
	}
	msgNoHeader = UserMessage{
		Message: "No header row found",
		Action:  "Make sure the first non-empty row holds column names",
		Code:    "FILE007",
	}
	msgSheetNotFound = UserMessage{
		Message: "Worksheet not found",
		Action:  "Check the sheet name or leave it empty to use the first sheet",
		Code:    "FILE008",
	}
	msgBadWorkbook = UserMessage{
		Message: "The workbook could not be opened",
		Action:  "Re-save the file as .xlsx and try again",
		Code:    "FILE009",
	}
	msgDatasetNotFound = UserMessage{
		Message: "Server file not found",
		Action:  "Pick another server file from the list",
		Code:    "DS001",
	}
	msgDuplicateName = UserMessage{
		Message: "A server file with this name already exists",
		Action:  "Choose a different name",
		Code:    "DS002",
	}
	msgNameRequired = UserMessage{
		Message: "Enter a name",
		Action:  "Give the server file a non-empty name",
		Code:    "DS003",
	}
	msgRecordNotFound = UserMessage{
		Message: "Record not found",
		Action:  "Refresh the list and try again",
		Code:    "REC001",
	}
	msgValidation = UserMessage{
		Message: "Supplier and Product are required",
		Action:  "Fill in both fields before saving",
		Code:    "REC002",
	}
	msgConfirm = UserMessage{
		Message: "Confirmation required",
		Action:  "Tick the confirmation checkbox first",
		Code:    "REC003",
	}
	msgNoneSelected = UserMessage{
		Message: "No records selected",
		Action:  "Select at least one Record ID",
		Code:    "REC004",
	}
	msgSessionNotFound = UserMessage{
		Message: "Import session not found",
		Action:  "The import may have expired. Please upload the file again",
		Code:    "IMP001",
	}
	msgInvalidMode = UserMessage{
		Message: "Unknown import mode",
		Action:  "Use overwrite or new",
		Code:    "IMP002",
	}
	msgExportFormat = UserMessage{
		Message: "Unknown export format",
		Action:  "Use xlsx or csv",
		Code:    "IMP003",
	}
	msgInvalidRequest = UserMessage{
		Message: "The request could not be understood",
		Action:  "Check the request parameters and try again",
		Code:    "REQ001",
	}
	msgTooManyUploads = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}
)

// typedErrors are checked with errors.Is, in order.
var typedErrors = []struct {
	target error
	msg    UserMessage
}{
	{mapping.ErrColumnNotFound, msgColumnNotFound},
	{schema.ErrUnknownField, msgUnknownField},
	{ingest.ErrFileTooLarge, msgFileTooLarge},
	{ingest.ErrEmptyFile, msgEmptyFile},
	{ingest.ErrUnsupportedFormat, msgUnsupported},
	{ingest.ErrNoHeader, msgNoHeader},
	{ingest.ErrSheetNotFound, msgSheetNotFound},
	{ErrNoFile, msgNoFile},
	{store.ErrDatasetNotFound, msgDatasetNotFound},
	{store.ErrDuplicateName, msgDuplicateName},
	{store.ErrRecordNotFound, msgRecordNotFound},
	{ErrDatasetNameRequired, msgNameRequired},
	{ErrConfirmationRequired, msgConfirm},
	{ErrNoRecordsSelected, msgNoneSelected},
	{ErrSessionNotFound, msgSessionNotFound},
	{ErrInvalidMode, msgInvalidMode},
	{export.ErrUnknownFormat, msgExportFormat},
	{ErrTooManyUploads, msgTooManyUploads},
	{ErrInvalidRequest, msgInvalidRequest},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern maps a lowercase substring to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"invalid csv", msgInvalidCSV},
	{"encoding error", msgEncoding},
	{"open workbook", msgBadWorkbook},
	{"no file provided", msgNoFile},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is the ERR000 fallback. Support should read the server log.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a UserMessage. A nil error yields the zero value.
//
// Mapping and validation errors keep their own wording so the user sees
// which fields are missing.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var mapErr *mapping.MappingError
	if errors.As(err, &mapErr) {
		msg := msgMappingMissing
		msg.Message = capitalize(mapErr.Error())
		return msg
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		msg := msgValidation
		msg.Message = valErr.Error()
		return msg
	}

	for _, te := range typedErrors {
		if errors.Is(err, te.target) {
			return te.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
