package async

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout  = errors.New("async: operation timed out waiting for future completion")
	ErrNotReady = errors.New("async: initialization has not been started")
)

// PanicError is stored in a Once future when the initialization function panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: initialization panicked: %v", e.Value)
}
