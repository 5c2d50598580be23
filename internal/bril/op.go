package bril

import "fmt"

// Op enumerates the closed set of IR operations.
type Op uint8

const (
	// OpConst materializes a literal value.
	OpConst Op = iota + 1
	// OpAdd adds two values.
	OpAdd
	// OpMul multiplies two values.
	OpMul
	// OpID copies a value.
	OpID
	// OpPrint prints its argument.
	OpPrint
	// OpBr branches on a condition to one of two labels.
	OpBr
	// OpJmp jumps unconditionally.
	OpJmp
)

// String returns the wire name of the operation.
func (op Op) String() string {
	switch op {
	case OpConst:
		return "const"
	case OpAdd:
		return "add"
	case OpMul:
		return "mul"
	case OpID:
		return "id"
	case OpPrint:
		return "print"
	case OpBr:
		return "br"
	case OpJmp:
		return "jmp"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// ParseOp converts a wire name to an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "const":
		return OpConst, nil
	case "add":
		return OpAdd, nil
	case "mul":
		return OpMul, nil
	case "id":
		return OpID, nil
	case "print":
		return OpPrint, nil
	case "br":
		return OpBr, nil
	case "jmp":
		return OpJmp, nil
	default:
		return 0, fmt.Errorf("incorrect operation, got %q", s)
	}
}

// Commutative reports whether operand order is irrelevant for op.
func (op Op) Commutative() bool {
	return op == OpAdd || op == OpMul
}

// Type is the optional declared type of an instruction.
type Type uint8

const (
	// TypeNone means no type was declared.
	TypeNone Type = iota
	TypeInt
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return ""
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ParseType converts a wire name to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "bool":
		return TypeBool, nil
	default:
		return TypeNone, fmt.Errorf("incorrect type, got %q", s)
	}
}
