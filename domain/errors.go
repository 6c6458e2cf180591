// ABOUTME: Domain-level sentinel errors for the Ciénaga pipeline
// ABOUTME: These errors are used with errors.Is() for error type checking
package domain

import "errors"

// Input and validation errors
var (
	// ErrInvalidInput indicates malformed CSV input or a batch submission
	// that failed validation. Surfaced to the caller.
	ErrInvalidInput = errors.New("invalid input")
)

// Fetch and scrape errors
var (
	// ErrTransientFetch indicates a network error, timeout or 5xx response.
	// Retried once, then demoted to ErrItemSkipped.
	ErrTransientFetch = errors.New("transient fetch failure")

	// ErrItemSkipped indicates a per-item scrape or parse failure.
	// Logged and counted; never aborts the batch.
	ErrItemSkipped = errors.New("item skipped")
)

// Persistence errors
var (
	// ErrNotFound indicates the requested entity does not exist.
	// Returned as an explicit outcome, not thrown.
	ErrNotFound = errors.New("not found")

	// ErrIntegrityConflict indicates a duplicate unique key. Upsert logic
	// treats it as "already present" and turns it into a skip.
	ErrIntegrityConflict = errors.New("integrity conflict")
)

// Infrastructure errors
var (
	// ErrFatal indicates auth failure, unreachable database or an unhandled
	// failure at orchestrator level. Aborts the run with non-zero exit.
	ErrFatal = errors.New("fatal")
)
