// Package dce removes instructions whose results are never read.
package dce

import "brilopt/internal/bril"

// Run applies SinglePass until the block stops shrinking. Dropping one
// definition can leave the definitions it read unused, so a single scan is
// not enough in general.
func Run(b bril.Block) bril.Block {
	for {
		n := len(b)
		b = SinglePass(b)
		if len(b) == n {
			return b
		}
	}
}

// SinglePass scans the block once and removes every definition that is
// either overwritten before it is read or never read before the block ends.
// Instructions without a destination are always kept. The input block is
// not modified.
func SinglePass(b bril.Block) bril.Block {
	remove := deadMask(b)
	out := make(bril.Block, 0, len(b))
	for i, in := range b {
		if !remove[i] {
			out = append(out, in.Clone())
		}
	}
	return out
}

// DeadDefs returns, in order, the indices SinglePass would remove.
func DeadDefs(b bril.Block) []int {
	var dead []int
	for i, d := range deadMask(b) {
		if d {
			dead = append(dead, i)
		}
	}
	return dead
}

func deadMask(b bril.Block) []bool {
	var (
		created = make(map[bril.Var]bool, len(b))
		// used holds names read since their latest definition.
		used    = make(map[bril.Var]bool, len(b))
		lastDef = make(map[bril.Var]int, len(b))
		remove  = make([]bool, len(b))
	)

	for i, in := range b {
		// An instruction reads its operands before it writes its destination.
		for _, arg := range in.Args {
			used[arg] = true
		}
		if !in.HasDest() {
			continue
		}
		if created[in.Dest] && !used[in.Dest] {
			remove[lastDef[in.Dest]] = true
		}
		created[in.Dest] = true
		lastDef[in.Dest] = i
		delete(used, in.Dest)
	}
	for name, i := range lastDef {
		if !used[name] {
			remove[i] = true
		}
	}
	return remove
}
