package registry

import (
	"errors"
	"fmt"
)

// ErrNoPersister is returned by Save when the service has no backing store.
var ErrNoPersister = errors.New("no persistent store configured")

// StorageError wraps a failure of the route store or the routes file.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is or wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
