package regalloc

import "fmt"

// AllocationError represents a register allocation failure.
type AllocationError struct {
	Message string
}

func (e *AllocationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func errorf(format string, args ...any) *AllocationError {
	return &AllocationError{Message: fmt.Sprintf(format, args...)}
}
