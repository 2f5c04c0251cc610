package etl

import "errors"

var (
	// ErrStoreUnavailable means a store could not be opened, read or written.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSchemaMismatch means an existing table lacks columns the pipeline needs.
	// Tables are never migrated automatically.
	ErrSchemaMismatch = errors.New("schema mismatch")
)
