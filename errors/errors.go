// Package errors defines all exported error sentinels for the mapreduce library.
//
// This is the single source of truth for error values. The top-level
// mapreduce package returns these values from Start, so callers can match
// them with errors.Is across package boundaries.
package errors

import "errors"

// Start errors
var (
	ErrNilClient     = errors.New("mapreduce: client is nil")
	ErrNilOutput     = errors.New("mapreduce: output container is nil")
	ErrNilLess       = errors.New("mapreduce: intermediate key comparator is nil")
	ErrNoWorkers     = errors.New("mapreduce: worker count must be at least 1")
	ErrTooManyInputs = errors.New("mapreduce: input batch exceeds maximum (2^31-1)")
)
