package lvn

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedVar reports a read of a variable that has no value number yet.
	ErrUndefinedVar = errors.New("use of undefined variable")
	// ErrMalformedCopy reports an id instruction without its single argument or its destination.
	ErrMalformedCopy = errors.New("malformed copy instruction")
)

// Error locates a numbering failure within the block.
type Error struct {
	Index int
	Var   string
	Err   error
}

func (e *Error) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("instr %d: %v %q", e.Index, e.Err, e.Var)
	}
	return fmt.Sprintf("instr %d: %v", e.Index, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
