package animator

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig  = errors.New("animator: invalid run configuration")
	ErrNoSkeleton     = errors.New("animator: animator built no skeleton")
	ErrNoPoseFunction = errors.New("animator: animator built no pose function")
	ErrUnknownJoint   = errors.New("animator: unknown joint")
)

// RunError wraps a failure with the tick it happened on.
type RunError struct {
	Tick    int64
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
