package balllog

import "errors"

// Sentinel kinds for log store errors.
var (
	ErrDataAccess = errors.New("log store failure")
	ErrNotFound   = errors.New("log not found")
	ErrImmutable  = errors.New("log is immutable")
)
