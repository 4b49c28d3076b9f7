package dedup

import "errors"

// ErrInvalidWindow indicates a non-positive fuzzy-match window.
var ErrInvalidWindow = errors.New("window must be positive")

// ErrInvalidTolerance indicates a duration tolerance outside [0, 1).
var ErrInvalidTolerance = errors.New("duration tolerance must be in [0, 1)")
