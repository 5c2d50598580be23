// Package testkit holds invariant checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"brilopt/internal/bril"
)

// CheckNumberingInvariants verifies the shape of a value numbering result:
//  1. out has the same length as in
//  2. every instruction keeps its destination
//  3. an instruction either keeps its operation or becomes an id copy
//  4. instructions without a destination keep their operation and arity
func CheckNumberingInvariants(in, out bril.Block) error {
	if len(in) != len(out) {
		return fmt.Errorf("length changed: %d -> %d", len(in), len(out))
	}
	for i := range in {
		a, b := in[i], out[i]
		if a.Dest != b.Dest {
			return fmt.Errorf("instr %d: dest changed: %q -> %q", i, a.Dest, b.Dest)
		}
		if !a.HasDest() {
			if a.Op != b.Op || len(a.Args) != len(b.Args) {
				return fmt.Errorf("instr %d: effect rewritten: %s -> %s", i, bril.Format(a), bril.Format(b))
			}
			if a.Op == bril.OpBr && len(a.Args) == 3 && (a.Args[1] != b.Args[1] || a.Args[2] != b.Args[2]) {
				return fmt.Errorf("instr %d: branch targets changed: %s -> %s", i, bril.Format(a), bril.Format(b))
			}
			continue
		}
		if a.Op != b.Op && b.Op != bril.OpID {
			return fmt.Errorf("instr %d: op changed: %s -> %s", i, a.Op, b.Op)
		}
		if b.Op == bril.OpID && len(b.Args) != 1 {
			return fmt.Errorf("instr %d: copy with %d args", i, len(b.Args))
		}
	}
	return nil
}

// CheckEliminationInvariants verifies a dead code elimination result:
//  1. out is an order-preserving subsequence of in
//  2. every instruction without a destination survives
func CheckEliminationInvariants(in, out bril.Block) error {
	j := 0
	for i := range in {
		if j < len(out) && in[i].Equal(out[j]) {
			j++
			continue
		}
		if !in[i].HasDest() {
			return fmt.Errorf("instr %d dropped without a destination: %s", i, bril.Format(in[i]))
		}
	}
	if j != len(out) {
		return fmt.Errorf("output is not a subsequence of input (matched %d of %d)", j, len(out))
	}
	return nil
}
