// Package errors provides structured error handling for the document
// search service.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Document-scoped errors (recoverable, captured per document)
//   - 3XX: Connectivity errors (collaborator unreachable, fatal)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryDocument indicates errors scoped to a single document.
	CategoryDocument Category = "DOCUMENT"
	// CategoryConnectivity indicates store/index unreachability.
	CategoryConnectivity Category = "CONNECTIVITY"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort the operation.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but processing can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Document-scoped errors (200-299). These are always recovered into a
	// processing outcome and never abort a batch.
	ErrCodeDocumentNotFound  = "ERR_201_DOCUMENT_NOT_FOUND"
	ErrCodeDocumentTooLarge  = "ERR_202_DOCUMENT_TOO_LARGE"
	ErrCodeNoExtractableText = "ERR_203_NO_EXTRACTABLE_TEXT"

	// Connectivity errors (300-399). A collaborator being wholly
	// unreachable is fatal to the batch or sync that needed it.
	ErrCodeStoreUnavailable = "ERR_301_STORE_UNAVAILABLE"
	ErrCodeIndexUnavailable = "ERR_302_INDEX_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidInput       = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty         = "ERR_402_QUERY_EMPTY"
	ErrCodeInvalidConcurrency = "ERR_403_INVALID_CONCURRENCY"
	ErrCodeInvalidKey         = "ERR_404_INVALID_KEY"

	// Internal errors (500-599)
	ErrCodeIndexWriteFailed = "ERR_501_INDEX_WRITE_FAILED"
	ErrCodeInternal         = "ERR_502_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract the leading digit (e.g., "2" from "ERR_201_DOCUMENT_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryDocument
	case '3':
		return CategoryConnectivity
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryConnectivity:
		// Store or index wholly unreachable aborts the operation.
		return SeverityFatal
	case CategoryDocument:
		// Document-scoped failures are captured, the batch continues.
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode checks if an error code represents a retryable error.
// Connectivity errors are transient; index write failures are retried on
// a later full run.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeStoreUnavailable, ErrCodeIndexUnavailable, ErrCodeIndexWriteFailed:
		return true
	default:
		return false
	}
}
