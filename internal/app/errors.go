package service

import "errors"

// ErrValidation marks request-shape failures detected before any data
// access. The HTTP layer maps it to a 400.
var ErrValidation = errors.New("validation failed")
