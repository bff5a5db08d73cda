package league

import "errors"

// Sentinel kinds for league store errors.
var (
	ErrDataAccess = errors.New("league store failure")
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("record already exists")
)
