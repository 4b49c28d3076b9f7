package resolve

import "errors"

// ErrLookupRequired indicates a nil lookup client was provided.
var ErrLookupRequired = errors.New("lookup client is required")

// ErrCacheRequired indicates a nil cache was provided.
var ErrCacheRequired = errors.New("cache is required")

// ErrInvalidInterval indicates a non-positive throttle interval.
var ErrInvalidInterval = errors.New("min interval must be positive")

// ErrNilRecord indicates a nil record was passed to Resolve.
var ErrNilRecord = errors.New("record is nil")

// ErrUnknownRecordType indicates a record type outside the closed set.
var ErrUnknownRecordType = errors.New("unknown record type")
