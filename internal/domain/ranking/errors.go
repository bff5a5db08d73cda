package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrPlayerNotFound = errors.New("player not found")
)
