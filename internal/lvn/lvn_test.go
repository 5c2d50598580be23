package lvn_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"brilopt/internal/bril"
	"brilopt/internal/lvn"
	"brilopt/internal/testkit"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		in   bril.Block
		want bril.Block
	}{
		{
			name: "no_reassignment",
			in: bril.MustBlock(
				"op = const, value = 1, dest = a",
				"op = const, value = 2, dest = b",
				"op = add, args = [a, b], dest = sum1",
				"op = add, args = [a, b], dest = sum2",
				"op = mul, args = [sum1, sum2], dest = prod",
				"op = print, args = [prod]",
			),
			want: bril.MustBlock(
				"op = const, value = 1, dest = a",
				"op = const, value = 2, dest = b",
				"op = add, args = [a, b], dest = sum1",
				"op = id, args = [sum1], dest = sum2",
				"op = mul, args = [sum1, sum1], dest = prod",
				"op = print, args = [prod]",
			),
		},
		{
			name: "commuted_operands",
			in: bril.MustBlock(
				"op = const, value = 1, dest = c1",
				"op = const, value = 2, dest = c2",
				"op = add, args = [c1, c2], dest = s1",
				"op = add, args = [c2, c1], dest = s2",
			),
			want: bril.MustBlock(
				"op = const, value = 1, dest = c1",
				"op = const, value = 2, dest = c2",
				"op = add, args = [c1, c2], dest = s1",
				"op = id, args = [s1], dest = s2",
			),
		},
		{
			name: "commuted_mul",
			in: bril.MustBlock(
				"op = const, value = 3, dest = x",
				"op = const, value = 5, dest = y",
				"op = mul, args = [y, x], dest = p",
				"op = mul, args = [x, y], dest = q",
				"op = print, args = [q]",
			),
			want: bril.MustBlock(
				"op = const, value = 3, dest = x",
				"op = const, value = 5, dest = y",
				"op = mul, args = [y, x], dest = p",
				"op = id, args = [p], dest = q",
				"op = print, args = [p]",
			),
		},
		{
			name: "copy_chain_collapses",
			in: bril.MustBlock(
				"op = const, value = 1, dest = x",
				"op = id, args = [x], dest = y",
				"op = id, args = [y], dest = z",
				"op = id, args = [z], dest = w",
			),
			want: bril.MustBlock(
				"op = const, value = 1, dest = x",
				"op = id, args = [x], dest = y",
				"op = id, args = [x], dest = z",
				"op = id, args = [x], dest = w",
			),
		},
		{
			name: "copy_propagates_into_operands",
			in: bril.MustBlock(
				"op = const, value = 7, dest = a",
				"op = id, args = [a], dest = b",
				"op = add, args = [b, b], dest = c",
				"op = print, args = [c]",
			),
			want: bril.MustBlock(
				"op = const, value = 7, dest = a",
				"op = id, args = [a], dest = b",
				"op = add, args = [a, a], dest = c",
				"op = print, args = [c]",
			),
		},
		{
			name: "duplicate_constant",
			in: bril.MustBlock(
				"op = const, value = 4, dest = a",
				"op = const, value = 4, dest = b",
				"op = const, value = 5, dest = c",
				"op = print, args = [b]",
			),
			want: bril.MustBlock(
				"op = const, value = 4, dest = a",
				"op = id, args = [a], dest = b",
				"op = const, value = 5, dest = c",
				"op = print, args = [a]",
			),
		},
		{
			name: "reassignment_rebinds_name",
			in: bril.MustBlock(
				"op = const, value = 1, dest = a",
				"op = const, value = 2, dest = b",
				"op = const, value = 2, dest = a",
				"op = print, args = [a]",
			),
			want: bril.MustBlock(
				"op = const, value = 1, dest = a",
				"op = const, value = 2, dest = b",
				"op = id, args = [b], dest = a",
				"op = print, args = [b]",
			),
		},
		{
			name: "branch_targets_untouched",
			in: bril.MustBlock(
				"op = const, value = 1, dest = c",
				"op = id, args = [c], dest = d",
				"op = br, args = [d, c, d]",
				"op = jmp",
			),
			want: bril.MustBlock(
				"op = const, value = 1, dest = c",
				"op = id, args = [c], dest = d",
				"op = br, args = [c, c, d]",
				"op = jmp",
			),
		},
		{
			name: "empty",
			in:   bril.Block{},
			want: bril.Block{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lvn.Run(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("block mismatch (-want +got):\n%s", diff)
			}
			if err := testkit.CheckNumberingInvariants(tt.in, got); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	in := bril.MustBlock(
		"op = const, value = 1, dest = x",
		"op = id, args = [x], dest = y",
		"op = id, args = [y], dest = z",
		"op = add, args = [z, y], dest = s",
		"op = add, args = [y, z], dest = s2",
	)
	snapshot := in.Clone()
	if _, err := lvn.Run(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(snapshot, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name      string
		in        bril.Block
		wantErr   error
		wantIndex int
		wantVar   string
	}{
		{
			name:    "print_undefined",
			in:      bril.MustBlock("op = print, args = [undefined_var]"),
			wantErr: lvn.ErrUndefinedVar,
			wantVar: "undefined_var",
		},
		{
			name: "operand_undefined",
			in: bril.MustBlock(
				"op = const, value = 1, dest = a",
				"op = add, args = [a, b], dest = c",
			),
			wantErr:   lvn.ErrUndefinedVar,
			wantIndex: 1,
			wantVar:   "b",
		},
		{
			name: "copy_of_undefined",
			in: bril.MustBlock(
				"op = const, value = 1, dest = a",
				"op = id, args = [x], dest = y",
			),
			wantErr:   lvn.ErrUndefinedVar,
			wantIndex: 1,
			wantVar:   "x",
		},
		{
			name:    "copy_without_arg",
			in:      bril.Block{{Op: bril.OpID, Dest: "y"}},
			wantErr: lvn.ErrMalformedCopy,
		},
		{
			name: "copy_without_dest",
			in: bril.Block{
				{Op: bril.OpConst, Value: 1, HasValue: true, Dest: "a"},
				{Op: bril.OpID, Args: []string{"a"}},
			},
			wantErr:   lvn.ErrMalformedCopy,
			wantIndex: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lvn.Run(tt.in)
			if got != nil {
				t.Errorf("expected no output block, got %d instrs", len(got))
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			var lerr *lvn.Error
			if !errors.As(err, &lerr) {
				t.Fatalf("expected *lvn.Error, got %T", err)
			}
			if lerr.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", lerr.Index, tt.wantIndex)
			}
			if lerr.Var != tt.wantVar {
				t.Errorf("Var = %q, want %q", lerr.Var, tt.wantVar)
			}
		})
	}
}
