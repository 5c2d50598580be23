package testkit_test

import (
	"testing"

	"brilopt/internal/bril"
	"brilopt/internal/testkit"
)

func TestCheckNumberingInvariants(t *testing.T) {
	in := bril.MustBlock(
		"op = const, value = 1, dest = a",
		"op = add, args = [a, a], dest = b",
		"op = br, args = [b, l1, l2]",
	)
	ok := bril.MustBlock(
		"op = const, value = 1, dest = a",
		"op = id, args = [a], dest = b",
		"op = br, args = [a, l1, l2]",
	)
	if err := testkit.CheckNumberingInvariants(in, ok); err != nil {
		t.Errorf("valid rewrite rejected: %v", err)
	}

	bad := []bril.Block{
		ok[:2],
		bril.MustBlock(
			"op = const, value = 1, dest = a",
			"op = id, args = [a], dest = c",
			"op = br, args = [a, l1, l2]",
		),
		bril.MustBlock(
			"op = const, value = 1, dest = a",
			"op = mul, args = [a, a], dest = b",
			"op = br, args = [a, l1, l2]",
		),
		bril.MustBlock(
			"op = const, value = 1, dest = a",
			"op = id, args = [a], dest = b",
			"op = br, args = [a, l2, l1]",
		),
	}
	for i, out := range bad {
		if err := testkit.CheckNumberingInvariants(in, out); err == nil {
			t.Errorf("case %d: expected violation for\n%s", i, bril.FormatBlock(out))
		}
	}
}

func TestCheckEliminationInvariants(t *testing.T) {
	in := bril.MustBlock(
		"op = const, value = 1, dest = a",
		"op = const, value = 2, dest = b",
		"op = print, args = [a]",
	)
	if err := testkit.CheckEliminationInvariants(in, bril.Block{in[0], in[2]}); err != nil {
		t.Errorf("valid elimination rejected: %v", err)
	}
	if err := testkit.CheckEliminationInvariants(in, bril.Block{in[0], in[1]}); err == nil {
		t.Error("expected violation for dropped print")
	}
	if err := testkit.CheckEliminationInvariants(in, bril.Block{in[2], in[0]}); err == nil {
		t.Error("expected violation for reordered output")
	}
}
