package bril

import "slices"

// Var is a variable name.
type Var = string

// Instr represents a single IR instruction.
type Instr struct {
	Op       Op
	Args     []Var
	Type     Type
	Value    uint32
	HasValue bool
	// Dest is empty for instructions that do not bind a value.
	Dest Var
}

// Block is an ordered, branch-free sequence of instructions.
type Block []Instr

// HasDest reports whether the instruction binds a value.
func (in Instr) HasDest() bool {
	return in.Dest != ""
}

// HasType reports whether a type was declared.
func (in Instr) HasType() bool {
	return in.Type != TypeNone
}

// IsAssignment reports whether the instruction is a constant assignment.
func (in Instr) IsAssignment() bool {
	return in.Op == OpConst
}

// Valid checks the field contract of the instruction's operation.
// The check needs no context beyond the instruction itself.
func (in Instr) Valid() bool {
	n := len(in.Args)
	switch in.Op {
	case OpConst:
		return in.HasValue && in.HasDest() && !in.HasType() && n == 0
	case OpAdd, OpMul:
		return in.HasDest() && !in.HasValue && !in.HasType() && n == 2
	case OpID:
		return in.HasDest() && !in.HasValue && !in.HasType() && n == 1
	case OpPrint:
		return !in.HasDest() && !in.HasValue && !in.HasType() && n == 1
	case OpBr:
		return !in.HasDest() && !in.HasValue && !in.HasType() && n == 3
	case OpJmp:
		return !in.HasDest() && !in.HasValue && !in.HasType() && n == 0
	default:
		return false
	}
}

// Uses returns the arguments that name variables. The branch targets of br
// are labels and are not included.
func (in Instr) Uses() []Var {
	if in.Op == OpBr && len(in.Args) > 0 {
		return in.Args[:1]
	}
	return in.Args
}

// Equal reports whether two instructions are identical field by field.
func (in Instr) Equal(other Instr) bool {
	return in.Op == other.Op &&
		slices.Equal(in.Args, other.Args) &&
		in.Type == other.Type &&
		in.HasValue == other.HasValue &&
		in.Value == other.Value &&
		in.Dest == other.Dest
}

// Clone returns a copy that shares no memory with in.
func (in Instr) Clone() Instr {
	in.Args = slices.Clone(in.Args)
	return in
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	if b == nil {
		return nil
	}
	out := make(Block, len(b))
	for i := range b {
		out[i] = b[i].Clone()
	}
	return out
}

// Equal reports whether two blocks hold the same instructions in order.
func (b Block) Equal(other Block) bool {
	return slices.EqualFunc(b, other, Instr.Equal)
}
