package repository

import "errors"

// ErrVersionConflict signals that an optimistic-version compare-and-swap lost
// the race. Services feed it into the same retry loop as lock timeouts.
var ErrVersionConflict = errors.New("version conflict")
