package partition

import "errors"

// ErrNotFound is returned when a partition has never been written.
var ErrNotFound = errors.New("partition: not found")
