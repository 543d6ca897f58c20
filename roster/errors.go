/*
errors.go - Centralized error types for the roster engine

PURPOSE:
  All engine error values in one place. Callers classify with errors.Is;
  the ingestion boundary converts everything to a boolean result so no
  parse failure ever escapes to the workflow layer.

ERROR CATEGORIES:
  1. Extraction errors - the uploaded document yielded no usable table
  2. Ingestion errors  - the table yielded no matchable entries
  3. Store errors      - persistence failures (transient, retryable)

SEE ALSO:
  - ingest.go: converts these to the boolean ingestion result
  - resolver.go: propagates store errors as transient
*/
package roster

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoTable is returned when the document contains no extractable
	// table (wrong format, empty sheet, corrupt file).
	ErrNoTable = errors.New("no extractable table in document")

	// ErrNoEntries is returned when the extracted table produced zero
	// roster entries: no row matched any alias, or every day cell was
	// empty. The existing roster is left untouched.
	ErrNoEntries = errors.New("table yielded no roster entries")

	// ErrStoreUnavailable wraps persistence failures. These are the only
	// resolver errors and are considered transient.
	ErrStoreUnavailable = errors.New("roster store unavailable")
)

// IsRetryable reports whether the error might succeed on retry.
// Only store connectivity problems qualify; bad documents do not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
