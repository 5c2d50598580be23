// Package lvn implements local value numbering over a single block.
//
// Each distinct computed value gets a number. A later instruction that
// recomputes a known value is replaced by a copy of the first variable that
// held it, and copies are collapsed so that every id points at that first
// holder. The pass never removes instructions; run dce afterwards to drop
// the copies that became dead.
package lvn

import (
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"brilopt/internal/bril"
)

// exprKey identifies a computed value: the operation plus the value numbers
// (and literal) of its operands.
type exprKey struct {
	op       bril.Op
	operands string
}

// table holds the numbering state of one Run call.
type table struct {
	// var2num maps a name to the number of the value it currently holds.
	var2num map[bril.Var]int
	// num2var maps a number to the first name that held it.
	num2var []bril.Var
	// exprs is never overwritten once a key is recorded.
	exprs map[exprKey]int
}

func newTable(size int) *table {
	return &table{
		var2num: make(map[bril.Var]int, size),
		num2var: make([]bril.Var, 0, size),
		exprs:   make(map[exprKey]int, size),
	}
}

// Run numbers the block and returns the rewritten copy. The result has the
// same length as b; b itself is left untouched. Any read of a variable with
// no number aborts the pass with an *Error wrapping ErrUndefinedVar.
func Run(b bril.Block) (bril.Block, error) {
	t := newTable(len(b))
	out := make(bril.Block, 0, len(b))
	for i, in := range b {
		rewritten, err := t.visit(in)
		if err != nil {
			err.Index = i
			return nil, err
		}
		out = append(out, rewritten)
	}
	return out, nil
}

func (t *table) visit(in bril.Instr) (bril.Instr, *Error) {
	switch {
	case in.Op == bril.OpID:
		return t.visitCopy(in)
	case in.HasDest():
		return t.visitExpr(in)
	default:
		return t.visitEffect(in)
	}
}

// visitCopy binds dest to the number of its argument and points the copy at
// the canonical holder, so chains of ids collapse to one hop.
func (t *table) visitCopy(in bril.Instr) (bril.Instr, *Error) {
	if len(in.Args) != 1 || !in.HasDest() {
		return bril.Instr{}, &Error{Err: ErrMalformedCopy}
	}
	num, err := t.lookup(in.Args[0])
	if err != nil {
		return bril.Instr{}, err
	}
	t.var2num[in.Dest] = num
	out := in.Clone()
	out.Args[0] = t.num2var[num]
	return out, nil
}

func (t *table) visitExpr(in bril.Instr) (bril.Instr, *Error) {
	nums := make([]int, 0, len(in.Args)+1)
	for _, a := range in.Args {
		num, err := t.lookup(a)
		if err != nil {
			return bril.Instr{}, err
		}
		nums = append(nums, num)
	}

	operands := slices.Clone(nums)
	if in.HasValue {
		v, err := safecast.Conv[int](in.Value)
		if err != nil {
			return bril.Instr{}, &Error{Err: err}
		}
		operands = append(operands, v)
	}
	if in.Op.Commutative() {
		slices.Sort(operands)
	}
	key := exprKey{op: in.Op, operands: joinInts(operands)}

	if num, ok := t.exprs[key]; ok {
		t.var2num[in.Dest] = num
		return bril.Instr{Op: bril.OpID, Args: []bril.Var{t.num2var[num]}, Dest: in.Dest}, nil
	}

	num := len(t.num2var)
	t.exprs[key] = num
	t.var2num[in.Dest] = num
	t.num2var = append(t.num2var, in.Dest)

	out := in.Clone()
	for i, n := range nums {
		out.Args[i] = t.num2var[n]
	}
	return out, nil
}

// visitEffect canonicalizes the reads of an instruction that binds nothing.
func (t *table) visitEffect(in bril.Instr) (bril.Instr, *Error) {
	out := in.Clone()
	for i, a := range in.Uses() {
		num, err := t.lookup(a)
		if err != nil {
			return bril.Instr{}, err
		}
		out.Args[i] = t.num2var[num]
	}
	return out, nil
}

func (t *table) lookup(v bril.Var) (int, *Error) {
	num, ok := t.var2num[v]
	if !ok {
		return 0, &Error{Var: v, Err: ErrUndefinedVar}
	}
	return num, nil
}

func joinInts(nums []int) string {
	var sb strings.Builder
	for i, n := range nums {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}
