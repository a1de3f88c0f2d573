package records

import (
	"fmt"

	"github.com/dmitrijs2005/gymsession/internal/common"
)

// StorageError reports a failed durable read, write or remove.
// It matches common.ErrStorage with errors.Is and unwraps to the cause.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == common.ErrStorage
}
