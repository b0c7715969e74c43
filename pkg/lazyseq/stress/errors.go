package stress

import (
	"errors"
	"fmt"
)

// ErrNoInstance indicates no worker recorded a singleton identity.
// This is a setup defect (every worker died before collecting), kept
// distinct from the subject-level failures below so diagnosis is
// unambiguous.
var ErrNoInstance = errors.New("no singleton instance observed")

// DuplicateValueError indicates two workers drew the same counter
// value: the counter's read-and-increment was not atomic.
type DuplicateValueError struct {
	// Value is the duplicated counter value.
	Value int64
}

// Error implements the error interface.
func (e *DuplicateValueError) Error() string {
	return fmt.Sprintf("duplicate value %d", e.Value)
}

// MultipleInstancesError indicates workers observed more than one
// singleton identity: the construction ran more than once.
type MultipleInstancesError struct {
	// Count is the number of distinct identities observed.
	Count int
}

// Error implements the error interface.
func (e *MultipleInstancesError) Error() string {
	return fmt.Sprintf("expected one instance, observed %d", e.Count)
}

// RendezvousError wraps a worker's failure to reach or pass the
// barrier, or to complete its access afterwards.
type RendezvousError struct {
	// Worker is the index of the failed worker.
	Worker int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RendezvousError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.Worker, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RendezvousError) Unwrap() error {
	return e.Err
}

// anomalyKind maps a run failure to a metrics label.
func anomalyKind(err error) string {
	var dup *DuplicateValueError
	var multi *MultipleInstancesError
	switch {
	case errors.As(err, &dup):
		return "duplicate_value"
	case errors.As(err, &multi):
		return "multiple_instances"
	case errors.Is(err, ErrNoInstance):
		return "no_instance"
	default:
		return "rendezvous"
	}
}
