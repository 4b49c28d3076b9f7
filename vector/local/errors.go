package local

import "errors"

// ErrBackendRequired is returned when constructing a store without a backend.
var ErrBackendRequired = errors.New("badger backend required")
