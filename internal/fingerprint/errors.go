package fingerprint

import "errors"

var (
	// ErrEmptyDatabase indicates a database without any company records.
	ErrEmptyDatabase = errors.New("fingerprint database is empty")
	// ErrInvalidRecord indicates a record that fails validation.
	ErrInvalidRecord = errors.New("invalid fingerprint record")
)
