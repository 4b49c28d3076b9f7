package pg

import "errors"

// ErrDatabaseRequired is returned when constructing a store without a
// database handle.
var ErrDatabaseRequired = errors.New("database handle required")
