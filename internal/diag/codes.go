package diag

import "fmt"

// Code identifies the kind of a diagnostic.
type Code uint16

const (
	UnknownCode Code = 0

	// Instruction shape
	IRInvalidInstr Code = 1001
	IREmptyFunc    Code = 1002

	// Value numbering
	LVNUndefinedVar  Code = 2001
	LVNMalformedCopy Code = 2002

	// Liveness
	DCEDeadDefinition Code = 3001
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown error",
	IRInvalidInstr:    "Instruction fields do not match its operation",
	IREmptyFunc:       "Function has no instructions",
	LVNUndefinedVar:   "Variable used before definition",
	LVNMalformedCopy:  "Copy instruction without argument or destination",
	DCEDeadDefinition: "Definition is never read",
}

// ID returns the stable identifier, e.g. "IR1001".
func (c Code) ID() string {
	switch {
	case c >= 3000:
		return fmt.Sprintf("DCE%04d", uint16(c))
	case c >= 2000:
		return fmt.Sprintf("LVN%04d", uint16(c))
	case c >= 1000:
		return fmt.Sprintf("IR%04d", uint16(c))
	}
	return "E0000"
}

func (c Code) String() string {
	return c.ID()
}

// Title returns a short description of the code.
func (c Code) Title() string {
	if d, ok := codeDescription[c]; ok {
		return d
	}
	return codeDescription[UnknownCode]
}
