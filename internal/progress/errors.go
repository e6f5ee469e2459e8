package progress

import "errors"

var (
	ErrNotFound            = errors.New("progress record not found")
	ErrDuplicateAssignment = errors.New("progress record already exists for this user and content")
	ErrStorageUnavailable  = errors.New("progress store unavailable")
)

// StorageError reports a failed read or write against the backing store.
// It matches ErrStorageUnavailable with errors.Is and unwraps to the
// driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "progress store: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

func wrapStorage(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateAssignment) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
