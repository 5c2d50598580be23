package diag

import "fmt"

// Location points at one instruction of one function. Index is -1 when the
// diagnostic concerns the function as a whole.
type Location struct {
	Func  string
	Index int
}

func (l Location) String() string {
	if l.Index < 0 {
		return "@" + l.Func
	}
	return fmt.Sprintf("@%s:%d", l.Func, l.Index)
}

// Diagnostic is a single finding about the input program.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Loc      Location
	// Source is the offending instruction in text form, if any.
	Source string
	Notes  []string
}
