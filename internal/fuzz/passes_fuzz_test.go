package fuzztests

import (
	"bytes"
	"errors"
	"testing"

	"brilopt/internal/bril"
	"brilopt/internal/dce"
	"brilopt/internal/lvn"
	"brilopt/internal/testkit"
)

func FuzzDecodeAndOptimize(f *testing.F) {
	addProgramSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)
		prog, err := bril.DecodeProgram(bytes.NewReader(input))
		if err != nil {
			return
		}
		if err := bril.Validate(prog); err != nil {
			return
		}
		for _, fn := range prog.Functions {
			numbered, err := lvn.Run(fn.Instrs)
			if err != nil {
				var lerr *lvn.Error
				if !errors.As(err, &lerr) {
					t.Fatalf("%s: unexpected error type %T: %v", fn.Name, err, err)
				}
				continue
			}
			if err := testkit.CheckNumberingInvariants(fn.Instrs, numbered); err != nil {
				t.Fatalf("%s: lvn: %v", fn.Name, err)
			}
			cleaned := dce.Run(numbered)
			if err := testkit.CheckEliminationInvariants(numbered, cleaned); err != nil {
				t.Fatalf("%s: dce: %v", fn.Name, err)
			}
			if again := dce.Run(cleaned); !again.Equal(cleaned) {
				t.Fatalf("%s: dce is not idempotent", fn.Name)
			}
		}
	})
}

func FuzzEncodeRoundTrip(f *testing.F) {
	addProgramSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		prog, err := bril.DecodeProgram(bytes.NewReader(clampSeed(input)))
		if err != nil {
			return
		}
		var buf bytes.Buffer
		if err := bril.EncodeProgram(&buf, prog); err != nil {
			t.Fatalf("encode: %v", err)
		}
		again, err := bril.DecodeProgram(&buf)
		if err != nil {
			t.Fatalf("decode of encoded program: %v\n%s", err, buf.String())
		}
		if len(again.Functions) != len(prog.Functions) {
			t.Fatalf("function count changed: %d -> %d", len(prog.Functions), len(again.Functions))
		}
		for i := range prog.Functions {
			if !prog.Functions[i].Instrs.Equal(again.Functions[i].Instrs) {
				t.Fatalf("%s: instructions changed by round trip", prog.Functions[i].Name)
			}
		}
	})
}

func FuzzParseInstr(f *testing.F) {
	f.Add("op = add, args = [a, b], dest = sum")
	f.Add("op = const, value = 7, dest = x")
	f.Add("op = br args = [c, then, else]")
	f.Add("op = jmp")
	f.Add("op = print, args = [")
	f.Fuzz(func(t *testing.T, src string) {
		in, err := bril.ParseInstr(src)
		if err != nil {
			return
		}
		if !in.Valid() {
			t.Fatalf("ParseInstr(%q) accepted an invalid instruction: %s", src, bril.Format(in))
		}
	})
}
