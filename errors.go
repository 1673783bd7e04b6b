package thunder

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch reports dataset construction from key and value
	// sequences of different lengths.
	ErrLengthMismatch = errors.New("thunder: key and value sequences have different lengths")

	// ErrEmptyDataset reports a reduce over zero records.
	ErrEmptyDataset = errors.New("thunder: reduce of empty dataset")
)

// OperationError wraps a failure raised by a caller-supplied function with
// the name of the operation that invoked it. Failures are never retried; the
// engine cannot tell whether they are transient.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("thunder: operation %s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
