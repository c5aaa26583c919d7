package externalApi

import "errors"

var (
	// ErrNotFound means the upstream returned no usable data for the
	// requested ticker (unknown symbol, empty quote, no articles payload).
	ErrNotFound = errors.New("not found in external api")
)
