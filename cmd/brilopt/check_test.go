package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"brilopt/internal/bril"
	"brilopt/internal/diag"
)

type finding struct {
	Sev  diag.Severity
	Code diag.Code
	Loc  string
}

func findings(bag *diag.Bag) []finding {
	var out []finding
	for _, d := range bag.Items() {
		out = append(out, finding{Sev: d.Severity, Code: d.Code, Loc: d.Loc.String()})
	}
	return out
}

func checkFixture() *bril.Program {
	return &bril.Program{Functions: []bril.Function{
		{
			Name: "shape",
			Instrs: bril.Block{
				{Op: bril.OpAdd, Args: []string{"a"}, Dest: "b"},
				{Op: bril.OpPrint, Args: []string{"b"}},
			},
		},
		{
			Name:   "undefined",
			Instrs: bril.MustBlock("op = const, value = 1, dest = a", "op = print, args = [z]"),
		},
		{
			Name: "dead",
			Instrs: bril.MustBlock(
				"op = const, value = 1, dest = a",
				"op = const, value = 2, dest = a",
				"op = print, args = [a]",
			),
		},
		{Name: "empty"},
	}}
}

func TestCheckProgram(t *testing.T) {
	bag := checkProgram(checkFixture(), checkOptions{warnings: true})
	want := []finding{
		{diag.SevError, diag.IRInvalidInstr, "@shape:0"},
		{diag.SevError, diag.LVNUndefinedVar, "@undefined:1"},
		{diag.SevWarning, diag.DCEDeadDefinition, "@dead:0"},
		{diag.SevWarning, diag.IREmptyFunc, "@empty"},
	}
	if diff := cmp.Diff(want, findings(bag)); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	if !bag.HasErrors() {
		t.Error("expected errors")
	}
}

func TestCheckProgramWithoutWarnings(t *testing.T) {
	bag := checkProgram(checkFixture(), checkOptions{})
	for _, f := range findings(bag) {
		if f.Sev == diag.SevWarning {
			t.Errorf("warning %+v reported with warnings disabled", f)
		}
	}
}

func TestCheckProgramLimit(t *testing.T) {
	bag := checkProgram(checkFixture(), checkOptions{maxDiagnostics: 1, warnings: true})
	if bag.Len() != 1 || bag.Dropped() != 3 {
		t.Errorf("Len=%d Dropped=%d, want 1 and 3", bag.Len(), bag.Dropped())
	}
}
