package bril

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Program is a collection of named functions.
type Program struct {
	Functions []Function
}

// Function is a named instruction sequence.
type Function struct {
	Name   string
	Instrs Block
}

// InstrCount returns the number of instructions across all functions.
func (p *Program) InstrCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for i := range p.Functions {
		n += len(p.Functions[i].Instrs)
	}
	return n
}

type wireProgram struct {
	Functions []wireFunction `json:"functions"`
}

type wireFunction struct {
	Name   string      `json:"name"`
	Instrs []wireInstr `json:"instrs"`
}

type wireInstr struct {
	Op    string       `json:"op"`
	Args  []string     `json:"args,omitempty"`
	Type  string       `json:"type,omitempty"`
	Value *json.Number `json:"value,omitempty"`
	Dest  string       `json:"dest,omitempty"`
	Label string       `json:"label,omitempty"`
}

// DecodeProgram reads a program in the JSON exchange format.
func DecodeProgram(r io.Reader) (*Program, error) {
	var wp wireProgram
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wp); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	p := &Program{Functions: make([]Function, 0, len(wp.Functions))}
	for _, wf := range wp.Functions {
		fn := Function{Name: wf.Name, Instrs: make(Block, 0, len(wf.Instrs))}
		for i, wi := range wf.Instrs {
			in, err := wi.instr()
			if err != nil {
				return nil, fmt.Errorf("function %s: instr %d: %w", wf.Name, i, err)
			}
			fn.Instrs = append(fn.Instrs, in)
		}
		p.Functions = append(p.Functions, fn)
	}
	return p, nil
}

func (wi wireInstr) instr() (Instr, error) {
	if wi.Op == "" {
		if wi.Label != "" {
			return Instr{}, fmt.Errorf("label %q: labels are not supported", wi.Label)
		}
		return Instr{}, errors.New("missing op")
	}
	op, err := ParseOp(wi.Op)
	if err != nil {
		return Instr{}, err
	}
	in := Instr{Op: op, Dest: normName(wi.Dest)}
	if wi.Type != "" {
		if in.Type, err = ParseType(wi.Type); err != nil {
			return Instr{}, err
		}
	}
	if wi.Value != nil {
		v, err := parseValue(string(*wi.Value))
		if err != nil {
			return Instr{}, err
		}
		in.Value, in.HasValue = v, true
	}
	if len(wi.Args) > 0 {
		in.Args = make([]Var, len(wi.Args))
		for i, a := range wi.Args {
			in.Args[i] = normName(a)
		}
	}
	return in, nil
}

func parseValue(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value %s: expected non-negative integer", s)
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, fmt.Errorf("value %s: %w", s, err)
	}
	return v, nil
}

// normName folds a variable name to NFC so that canonically equivalent
// spellings refer to the same variable.
func normName(s string) string {
	return norm.NFC.String(s)
}

// EncodeProgram writes p in the JSON exchange format.
func EncodeProgram(w io.Writer, p *Program) error {
	wp := wireProgram{Functions: make([]wireFunction, 0, len(p.Functions))}
	for _, fn := range p.Functions {
		wf := wireFunction{Name: fn.Name, Instrs: make([]wireInstr, 0, len(fn.Instrs))}
		for _, in := range fn.Instrs {
			wi := wireInstr{
				Op:   in.Op.String(),
				Args: in.Args,
				Type: in.Type.String(),
				Dest: in.Dest,
			}
			if in.HasValue {
				v := json.Number(strconv.FormatUint(uint64(in.Value), 10))
				wi.Value = &v
			}
			wf.Instrs = append(wf.Instrs, wi)
		}
		wp.Functions = append(wp.Functions, wf)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wp)
}

// InvalidInstrError reports an instruction that breaks its op's field contract.
type InvalidInstrError struct {
	Func  string
	Index int
	Instr Instr
}

func (e *InvalidInstrError) Error() string {
	return fmt.Sprintf("function %s: instr %d: invalid %s instruction: %s", e.Func, e.Index, e.Instr.Op, Format(e.Instr))
}

// Validate checks every instruction of the program.
// Returns an error joining one *InvalidInstrError per violation.
func Validate(p *Program) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, fn := range p.Functions {
		for i, in := range fn.Instrs {
			if !in.Valid() {
				errs = append(errs, &InvalidInstrError{Func: fn.Name, Index: i, Instr: in})
			}
		}
	}
	return errors.Join(errs...)
}
