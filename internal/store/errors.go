package store

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict means the record changed since the caller read it.
	ErrVersionConflict = errors.New("version conflict")
)
