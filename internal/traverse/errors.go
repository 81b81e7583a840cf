package traverse

import "errors"

var (
	// ErrInvalidPattern is returned when an include or exclude filter is
	// not a valid regular expression. Patterns are compiled before the
	// first fetch so a bad filter fails the whole run up front.
	ErrInvalidPattern = errors.New("invalid filter pattern")

	// ErrInvalidDepth is returned when the requested depth is negative.
	ErrInvalidDepth = errors.New("traversal depth must be non-negative")
)
